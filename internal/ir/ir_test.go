package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
)

// Lowering an arithmetic assignment and raising it back yields an
// equivalent Assignment whose arithmetic tree matches shape for shape.
func TestLowerRaiseArithmeticAssignmentRoundTrips(t *testing.T) {
	assign := &ast.Assignment{
		Name: "total",
		Value: &ast.Arithmetic{Expr: &ast.ArithBinOp{
			Op:    ast.ArithMul,
			Left:  &ast.ArithNumber{Value: 10},
			Right: &ast.ArithVariable{Name: "count"},
		}},
	}

	prog := Lower(&ast.Ast{Statements: []ast.Stmt{assign}})
	require.Len(t, prog.Nodes, 1)
	let, ok := prog.Nodes[0].(*Let)
	require.True(t, ok)
	require.Equal(t, "total", let.Name)
	require.Equal(t, Arithmetic{Op: ast.ArithMul, Left: Const{N: 10}, Right: Variable{Name: "count"}}, let.Value)

	stmts := Raise(prog)
	require.Len(t, stmts, 1)
	raised, ok := stmts[0].(*ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "total", raised.Name)
	arith, ok := raised.Value.(*ast.Arithmetic)
	require.True(t, ok)
	bin, ok := arith.Expr.(*ast.ArithBinOp)
	require.True(t, ok)
	require.Equal(t, ast.ArithMul, bin.Op)
	num, ok := bin.Left.(*ast.ArithNumber)
	require.True(t, ok)
	require.Equal(t, int64(10), num.Value)
	v, ok := bin.Right.(*ast.ArithVariable)
	require.True(t, ok)
	require.Equal(t, "count", v.Name)
}

// A folded Const value raises to a plain integer literal, not an
// arithmetic expression -- this is what lets the emitter print "10485760"
// instead of "$((10 * 1024 * 1024))" after optimize.Fold runs.
func TestRaiseConstValueProducesLiteral(t *testing.T) {
	prog := &Program{Nodes: []Node{&Let{Name: "n", Value: Const{N: 10485760}}}}

	stmts := Raise(prog)

	require.Len(t, stmts, 1)
	assign := stmts[0].(*ast.Assignment)
	lit, ok := assign.Value.(*ast.Literal)
	require.True(t, ok)
	require.Equal(t, "10485760", lit.Value)
}

func TestRaiseNegativeConstValue(t *testing.T) {
	prog := &Program{Nodes: []Node{&Let{Name: "n", Value: Const{N: -42}}}}

	stmts := Raise(prog)

	lit := stmts[0].(*ast.Assignment).Value.(*ast.Literal)
	require.Equal(t, "-42", lit.Value)
}

// Non-arithmetic assignments and every other statement kind round-trip
// through IR unchanged as Verbatim, per spec.
func TestLowerPassesNonArithmeticStatementsThroughVerbatim(t *testing.T) {
	cmd := &ast.Command{Name: "echo", Args: []ast.Expr{&ast.Literal{Value: "hi"}}}
	strAssign := &ast.Assignment{Name: "msg", Value: &ast.Literal{Value: "hi"}}

	prog := Lower(&ast.Ast{Statements: []ast.Stmt{cmd, strAssign}})

	require.Len(t, prog.Nodes, 2)
	v1, ok := prog.Nodes[0].(*Verbatim)
	require.True(t, ok)
	require.Same(t, cmd, v1.Stmt)

	v2, ok := prog.Nodes[1].(*Verbatim)
	require.True(t, ok)
	require.Same(t, strAssign, v2.Stmt)
}
