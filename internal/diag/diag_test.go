package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
)

func span(line, col int) ast.Span {
	return ast.Span{Start: ast.Position{Line: line, Col: col}, End: ast.Position{Line: line, Col: col + 1}}
}

func TestSortOrdersByLineColThenCode(t *testing.T) {
	diags := []Diagnostic{
		{Code: "SEC002", Span: span(3, 0)},
		{Code: "SEC001", Span: span(1, 5)},
		{Code: "DET001", Span: span(1, 0)},
		{Code: "SC2086", Span: span(1, 0)},
	}
	Sort(diags)
	require.Equal(t, []RuleCode{"DET001", "SC2086", "SEC001", "SEC002"}, []RuleCode{
		diags[0].Code, diags[1].Code, diags[2].Code, diags[3].Code,
	})
}

func TestDedupRemovesExactDuplicates(t *testing.T) {
	diags := []Diagnostic{
		{Code: "SEC001", Span: span(1, 0), Message: "eval is dangerous"},
		{Code: "SEC001", Span: span(1, 0), Message: "eval is dangerous"},
		{Code: "SEC001", Span: span(2, 0), Message: "eval is dangerous"},
	}
	out := Dedup(diags)
	require.Len(t, out, 2)
}

func TestCategoryOfPrefixes(t *testing.T) {
	require.Equal(t, CategorySecurity, CategoryOf("SEC001"))
	require.Equal(t, CategoryDeterminism, CategoryOf("DET001"))
	require.Equal(t, CategoryIdempotency, CategoryOf("IDEM001"))
	require.Equal(t, CategoryNeedsQuoting, CategoryOf("SC2086"))
	require.Equal(t, CategorySafe, CategoryOf("MAKE001"))
}
