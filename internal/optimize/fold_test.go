package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/ir"
)

func constLet(name string, v ir.Value) *ir.Let {
	return &ir.Let{Name: name, Value: v}
}

// S5: 10*1024*1024 folds to 10485760.
func TestFoldMultiplicationConstant(t *testing.T) {
	prog := &ir.Program{Nodes: []ir.Node{
		constLet("n", ir.Arithmetic{
			Op:   ast.ArithMul,
			Left: ir.Const{N: 10},
			Right: ir.Arithmetic{
				Op:    ast.ArithMul,
				Left:  ir.Const{N: 1024},
				Right: ir.Const{N: 1024},
			},
		}),
	}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, ir.Const{N: 10485760}, let.Value)
}

// S6: division by zero is never folded, so the error surfaces at runtime.
func TestFoldDivisionByZeroNotFolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithDiv, Left: ir.Const{N: 10}, Right: ir.Const{N: 0}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

// ModuloByZeroNotFolded mirrors S6 for the sibling operator.
func TestFoldModuloByZeroNotFolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithMod, Left: ir.Const{N: 10}, Right: ir.Const{N: 0}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

func TestFoldAdditionOverflowNotFolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithAdd, Left: ir.Const{N: math.MaxInt64}, Right: ir.Const{N: 1}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

func TestFoldMultiplicationMinInt64OverflowNotFolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithMul, Left: ir.Const{N: math.MinInt64}, Right: ir.Const{N: -1}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

func TestFoldDivisionMinInt64OverflowNotFolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithDiv, Left: ir.Const{N: math.MinInt64}, Right: ir.Const{N: -1}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

// A Variable operand anywhere in the tree blocks folding of every
// ancestor node, even when the sibling subtree is itself constant.
func TestFoldVariableOperandLeftUnfolded(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithAdd, Left: ir.Variable{Name: "x"}, Right: ir.Const{N: 2}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

func TestFoldDisabledLeavesProgramUntouched(t *testing.T) {
	arith := ir.Arithmetic{Op: ast.ArithMul, Left: ir.Const{N: 10}, Right: ir.Const{N: 10}}
	prog := &ir.Program{Nodes: []ir.Node{constLet("n", arith)}}

	folded := Fold(prog, Config{Disabled: true})

	let := folded.Nodes[0].(*ir.Let)
	require.Equal(t, arith, let.Value)
}

// A Verbatim node passes through Fold unchanged regardless of contents.
func TestFoldPassesThroughVerbatimNodes(t *testing.T) {
	verbatim := &ir.Verbatim{Stmt: &ast.Command{Name: "echo"}}
	prog := &ir.Program{Nodes: []ir.Node{verbatim}}

	folded := Fold(prog, Config{})

	require.Same(t, verbatim, folded.Nodes[0])
}
