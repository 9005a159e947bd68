package configast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

func sp() ast.Span { return ast.Span{} }

func codesOf(diags []diag.Diagnostic) []diag.RuleCode {
	out := make([]diag.RuleCode, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestCONFIG001FlagsDuplicateKey(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "host", Value: "a", Sp: sp()},
		{Key: "host", Value: "b", Sp: sp()},
	}}}}
	require.Contains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG001"))
}

func TestCONFIG001SuppressedForDistinctKeys(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "host", Value: "a", Sp: sp()},
		{Key: "port", Value: "b", Sp: sp()},
	}}}}
	require.NotContains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG001"))
}

func TestCONFIG002FlagsHardcodedCredential(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "db_password", Value: "hunter2", Sp: sp()},
	}}}}
	require.Contains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG002"))
}

func TestCONFIG002SuppressedForEmptyValue(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "db_password", Value: "", Sp: sp()},
	}}}}
	require.NotContains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG002"))
}

func TestCONFIG003FlagsEmptyValue(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "timeout", Value: "", Sp: sp()},
	}}}}
	require.Contains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG003"))
}

func TestCONFIG004FlagsInconsistentBoolean(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "enable_tls", Value: "enabled", Sp: sp()},
	}}}}
	require.Contains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG004"))
}

func TestCONFIG004SuppressedForConventionalValue(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "enable_tls", Value: "true", Sp: sp()},
	}}}}
	require.NotContains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG004"))
}

func TestCONFIG005FlagsDuplicateSection(t *testing.T) {
	cfg := &Config{Sections: []Section{
		{Name: "server", Sp: sp()},
		{Name: "server", Sp: sp()},
	}}
	require.Contains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG005"))
}

func TestCONFIG005SuppressedForDistinctSections(t *testing.T) {
	cfg := &Config{Sections: []Section{
		{Name: "server", Sp: sp()},
		{Name: "client", Sp: sp()},
	}}
	require.NotContains(t, codesOf(Check(cfg)), diag.RuleCode("CONFIG005"))
}

func TestCheckIsSortedAndDeduped(t *testing.T) {
	cfg := &Config{Sections: []Section{{Entries: []KeyValue{
		{Key: "a", Value: "1", Sp: sp()},
		{Key: "b", Value: "2", Sp: sp()},
	}}}}
	diags := Check(cfg)
	for i := 1; i < len(diags); i++ {
		require.False(t, diags[i].Span.Start.Line < diags[i-1].Span.Start.Line)
	}
}
