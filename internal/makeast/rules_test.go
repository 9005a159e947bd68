package makeast

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

func TestMAKE001FlagsMissingPhony(t *testing.T) {
	mk := &Makefile{Targets: []Target{{Names: []string{"clean"}, Sp: sp()}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE001"))
}

func TestMAKE001SuppressedWhenPhony(t *testing.T) {
	mk := &Makefile{Targets: []Target{{Names: []string{"clean"}, IsPhony: true, Sp: sp()}}}
	require.NotContains(t, codesOf(Check(mk)), diag.RuleCode("MAKE001"))
}

func TestMAKE002FlagsRmWithoutForce(t *testing.T) {
	mk := &Makefile{Targets: []Target{{
		Names:  []string{"clean"},
		Recipe: Recipe{Lines: []RecipeLine{{Text: "rm build/output", Sp: sp()}}},
		Sp:     sp(),
	}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE002"))
}

func TestMAKE003FlagsShellDate(t *testing.T) {
	mk := &Makefile{Targets: []Target{{
		Names:  []string{"build"},
		Recipe: Recipe{Lines: []RecipeLine{{Text: `echo $(shell date +%s) > build.stamp`, Sp: sp()}}},
		Sp:     sp(),
	}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE003"))
}

func TestMAKE004FlagsSelfReferentialRecursiveVar(t *testing.T) {
	mk := &Makefile{Vars: []VarAssign{{Name: "CFLAGS", Value: "$(CFLAGS) -Wall", Recursive: true, Sp: sp()}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE004"))
}

func TestMAKE004SuppressedForSimpleAssignment(t *testing.T) {
	mk := &Makefile{Vars: []VarAssign{{Name: "CFLAGS", Value: "$(CFLAGS) -Wall", Recursive: false, Sp: sp()}}}
	require.NotContains(t, codesOf(Check(mk)), diag.RuleCode("MAKE004"))
}

func TestMAKE005FlagsDuplicatePrereq(t *testing.T) {
	mk := &Makefile{Targets: []Target{{Names: []string{"all"}, IsPhony: true, Prereqs: []string{"a.o", "a.o"}, Sp: sp()}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE005"))
}

func TestMAKE006FlagsBareCd(t *testing.T) {
	mk := &Makefile{Targets: []Target{{
		Names: []string{"build"},
		Recipe: Recipe{Lines: []RecipeLine{
			{Text: "cd subdir", Sp: sp()},
			{Text: "make", Sp: sp()},
		}},
		Sp: sp(),
	}}}
	require.Contains(t, codesOf(Check(mk)), diag.RuleCode("MAKE006"))
}

func TestMAKE006SuppressedWhenChained(t *testing.T) {
	mk := &Makefile{Targets: []Target{{
		Names:  []string{"build"},
		Recipe: Recipe{Lines: []RecipeLine{{Text: "cd subdir && make", Sp: sp()}}},
		Sp:     sp(),
	}}}
	require.NotContains(t, codesOf(Check(mk)), diag.RuleCode("MAKE006"))
}

func TestCheckIsSortedAndDeduped(t *testing.T) {
	mk := &Makefile{Targets: []Target{
		{Names: []string{"clean"}, Sp: sp()},
		{Names: []string{"test"}, Sp: sp()},
	}}
	diags := Check(mk)
	for i := 1; i < len(diags); i++ {
		require.False(t, diags[i].Span.Start.Line < diags[i-1].Span.Start.Line)
	}
}
