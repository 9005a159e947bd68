package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/diag"
)

func codes(ss ...string) []diag.RuleCode {
	out := make([]diag.RuleCode, len(ss))
	for i, s := range ss {
		out[i] = diag.RuleCode(s)
	}
	return out
}

func TestClosestRuleCodeFindsNearMiss(t *testing.T) {
	known := codes("IDEM001", "IDEM002", "QUOT001", "DET001")
	require.Equal(t, diag.RuleCode("IDEM001"), ClosestRuleCode("IDEM01", known))
}

func TestClosestRuleCodeEmptyKnownReturnsEmpty(t *testing.T) {
	require.Equal(t, diag.RuleCode(""), ClosestRuleCode("IDEM001", nil))
}

func TestClosestRuleCodesOrdersNearestFirstAndRespectsLimit(t *testing.T) {
	known := codes("IDEM001", "IDEM002", "IDEM010", "QUOT001")
	got := ClosestRuleCodes("IDEM002", known, 2)
	require.Len(t, got, 2)
	require.Equal(t, diag.RuleCode("IDEM002"), got[0])
}

func TestClosestRuleCodesZeroLimitReturnsNil(t *testing.T) {
	require.Nil(t, ClosestRuleCodes("IDEM001", codes("IDEM001"), 0))
}
