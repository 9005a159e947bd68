package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/diag"
)

func TestClassifyEmptyIsSafe(t *testing.T) {
	res := Classify(nil)
	require.Equal(t, Safe, res.Class)
	require.Equal(t, 1.0, res.Confidence)
}

func TestClassifySEC001IsUnsafeFullConfidence(t *testing.T) {
	res := Classify([]diag.Diagnostic{
		{Code: "SEC001", Severity: diag.SevError},
	})
	require.Equal(t, Unsafe, res.Class)
	require.Equal(t, 1.0, res.Confidence)
}

func TestClassifySecurityBeatsIdempotency(t *testing.T) {
	res := Classify([]diag.Diagnostic{
		{Code: "IDEM001", Severity: diag.SevWarning},
		{Code: "SEC002", Severity: diag.SevError},
	})
	require.Equal(t, Unsafe, res.Class)
}

func TestClassifyWarningOnlyConfidenceDeclines(t *testing.T) {
	res := Classify([]diag.Diagnostic{
		{Code: "IDEM001", Severity: diag.SevWarning},
		{Code: "IDEM002", Severity: diag.SevWarning},
		{Code: "IDEM003", Severity: diag.SevWarning},
	})
	require.Equal(t, NonIdempotent, res.Class)
	require.Less(t, res.Confidence, 1.0)
	require.GreaterOrEqual(t, res.Confidence, 0.5)
}

func TestClassifyConfidenceFloorsAtHalf(t *testing.T) {
	diags := make([]diag.Diagnostic, 20)
	for i := range diags {
		diags[i] = diag.Diagnostic{Code: "IDEM001", Severity: diag.SevWarning}
	}
	res := Classify(diags)
	require.Equal(t, 0.5, res.Confidence)
}

func TestClassifyMonotonicity(t *testing.T) {
	base := []diag.Diagnostic{{Code: "SC2086", Severity: diag.SevWarning}}
	before := Classify(base)
	after := Classify(append(base, diag.Diagnostic{Code: "SEC001", Severity: diag.SevError}))
	require.GreaterOrEqual(t, after.Class, before.Class)
}

func TestClassifyMultiLabelSetsAllContributingBits(t *testing.T) {
	m := ClassifyMultiLabel([]diag.Diagnostic{
		{Code: "SEC001", Severity: diag.SevError},
		{Code: "DET001", Severity: diag.SevError},
	})
	require.True(t, m.Has(Unsafe))
	require.True(t, m.Has(NonDeterministic))
	require.False(t, m.Has(NonIdempotent))
}

func TestClassifyMultiLabelEmptyIsSafeBit(t *testing.T) {
	m := ClassifyMultiLabel(nil)
	require.True(t, m.Has(Safe))
}
