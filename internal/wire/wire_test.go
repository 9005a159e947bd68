package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

func sampleDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Code:     "SEC001",
		Severity: diag.SevError,
		Message:  "eval of a variable is command injection",
		Span: ast.Span{
			Start: ast.Position{Line: 1, Col: 0},
			End:   ast.Position{Line: 1, Col: 10},
		},
		Suggestion: &diag.Fix{Text: "remove eval", Safety: diag.Manual},
	}
}

func TestEncodeProducesValidWireFormat(t *testing.T) {
	data, err := Encode([]diag.Diagnostic{sampleDiagnostic()})
	require.NoError(t, err)

	var decoded []Diagnostic
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "SEC001", decoded[0].Code)
	require.Equal(t, "error", decoded[0].Severity)
	require.Equal(t, [2]int{1, 0}, decoded[0].Span.Start)
	require.Equal(t, "manual", decoded[0].Suggestion.Safety)
}

func TestValidateRejectsUnknownSeverity(t *testing.T) {
	bad := `[{"code":"X","severity":"catastrophic","message":"m","line":1,"column":0,"span":{"start":[1,0],"end":[1,1]}}]`
	require.Error(t, Validate([]byte(bad)))
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	bad := `[{"code":"X","severity":"error","message":"m"}]`
	require.Error(t, Validate([]byte(bad)))
}

func TestToSARIFFillsRunAndRules(t *testing.T) {
	log := ToSARIF("shellpure", []diag.Diagnostic{sampleDiagnostic()})
	require.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	require.Equal(t, "shellpure", log.Runs[0].Tool.Driver.Name)
	require.Len(t, log.Runs[0].Results, 1)
	require.Equal(t, "SEC001", log.Runs[0].Results[0].RuleID)
	require.Equal(t, "error", log.Runs[0].Results[0].Level)
}

func TestToSARIFDedupesRuleDescriptors(t *testing.T) {
	log := ToSARIF("shellpure", []diag.Diagnostic{sampleDiagnostic(), sampleDiagnostic()})
	require.Len(t, log.Runs[0].Tool.Driver.Rules, 1)
	require.Len(t, log.Runs[0].Results, 2)
}
