package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
	"github.com/aledsdavies/shellpure/internal/parser"
)

func parseSrc(src string) (*ast.Ast, error) {
	return parser.Parse([]byte(src))
}

func lint(t *testing.T, src string) LintResult {
	t.Helper()
	a, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	res, err := Lint(a, NewLintConfig(), DefaultRegistry())
	require.NoError(t, err)
	return res
}

func codes(res LintResult) []diag.RuleCode {
	out := make([]diag.RuleCode, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Code
	}
	return out
}

func TestSEC001EvalDetected(t *testing.T) {
	res := lint(t, `eval "$cmd"`)
	require.Contains(t, codes(res), diag.RuleCode("SEC001"))
}

func TestDET001RandomDetected(t *testing.T) {
	res := lint(t, `SESSION_ID=$RANDOM`)
	require.Contains(t, codes(res), diag.RuleCode("DET001"))
}

func TestIDEM001MkdirWithoutP(t *testing.T) {
	res := lint(t, `mkdir /app/releases`)
	require.Contains(t, codes(res), diag.RuleCode("IDEM001"))
}

func TestIDEM001SuppressedWithDashP(t *testing.T) {
	res := lint(t, `mkdir -p /app/releases`)
	require.NotContains(t, codes(res), diag.RuleCode("IDEM001"))
}

func TestSC2086BareVariableArgument(t *testing.T) {
	res := lint(t, `echo $HOME`)
	require.Contains(t, codes(res), diag.RuleCode("SC2086"))
}

func TestSC2086SuppressedWhenQuoted(t *testing.T) {
	res := lint(t, `echo "$HOME"`)
	require.NotContains(t, codes(res), diag.RuleCode("SC2086"))
}

func TestLintIsSortedAndDeduped(t *testing.T) {
	res := lint(t, "eval \"$a\"\nmkdir foo\n")
	for i := 1; i < len(res.Diagnostics); i++ {
		prev, cur := res.Diagnostics[i-1], res.Diagnostics[i]
		require.False(t, cur.Span.Start.Line < prev.Span.Start.Line)
	}
}

func TestRuleLocalityUnregisterRemovesExactlyItsCode(t *testing.T) {
	reg := DefaultRegistry()
	before := lint(t, `eval "$cmd"`)
	require.Contains(t, codes(before), diag.RuleCode("SEC001"))

	reg.Unregister("SEC001")
	a, err := parseSrc(`eval "$cmd"`)
	require.NoError(t, err)
	after, err := Lint(a, NewLintConfig(), reg)
	require.NoError(t, err)
	require.NotContains(t, codes(after), diag.RuleCode("SEC001"))
}

func TestLintConfigValidateRejectsUnknownDialect(t *testing.T) {
	cfg := NewLintConfig()
	cfg.Dialect = "plan9sh"
	require.Error(t, cfg.Validate())
}

func TestLintConfigValidateRejectsStaleRuleSetVersion(t *testing.T) {
	cfg := NewLintConfig()
	cfg.RuleSetVersion = "v0.1.0"
	cfg.MinRuleSetVersion = "v1.0.0"
	require.Error(t, cfg.Validate())
}

func TestValidateAgainstSuggestsClosestCode(t *testing.T) {
	cfg := NewLintConfig()
	cfg.Disabled[diag.RuleCode("SEC0001")] = true
	err := cfg.ValidateAgainst(DefaultRegistry())
	require.Error(t, err)
	require.Contains(t, err.Error(), "SEC001")
}

func TestValidateAgainstAcceptsKnownCode(t *testing.T) {
	cfg := NewLintConfig()
	cfg.Disabled[diag.RuleCode("SEC001")] = true
	require.NoError(t, cfg.ValidateAgainst(DefaultRegistry()))
}
