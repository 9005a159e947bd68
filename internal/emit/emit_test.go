package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
)

func sp() ast.Span { return ast.Span{} }

func TestEmitStartsWithShebang(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Command{Name: "true", Sp: sp()},
	}}
	out := Emit(a)
	require.True(t, strings.HasPrefix(out, Shebang+"\n"))
}

func TestEmitQuotesVariableArgument(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Command{Name: "echo", Args: []ast.Expr{&ast.Variable{Name: "HOME", Sp: sp()}}, Sp: sp()},
	}}
	out := Emit(a)
	require.Contains(t, out, `echo "${HOME}"`)
}

func TestEmitAssignmentRHSNotQuoted(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Assignment{Name: "X", Value: &ast.Variable{Name: "Y", Sp: sp()}, Sp: sp()},
	}}
	out := Emit(a)
	require.Contains(t, out, "X=${Y}")
}

func TestEmitExportedAssignment(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Assignment{Name: "X", Exported: true, Value: &ast.Literal{Value: "1", Sp: sp()}, Sp: sp()},
	}}
	out := Emit(a)
	require.Contains(t, out, "export X=1")
}

func TestEmitIfElse(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.If{
			Cond: &ast.Test{Expr: &ast.StringNonEmpty{Operand: &ast.Variable{Name: "x", Sp: sp()}, Sp: sp()}, Sp: sp()},
			Then: []ast.Stmt{&ast.Command{Name: "echo", Args: []ast.Expr{&ast.Literal{Value: "yes", Sp: sp()}}, Sp: sp()}},
			Else: []ast.Stmt{&ast.Command{Name: "echo", Args: []ast.Expr{&ast.Literal{Value: "no", Sp: sp()}}, Sp: sp()}},
			HasElse: true,
			Sp:      sp(),
		},
	}}
	out := Emit(a)
	require.Contains(t, out, "if [ -n \"${x}\" ]; then")
	require.Contains(t, out, "else")
	require.Contains(t, out, "fi")
}

func TestEmitWhileLoop(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.While{
			Cond: &ast.Test{Expr: &ast.FileExists{Path: &ast.Literal{Value: "/tmp/x", Sp: sp()}, Sp: sp()}, Sp: sp()},
			Body: []ast.Stmt{&ast.Command{Name: "sleep", Args: []ast.Expr{&ast.Literal{Value: "1", Sp: sp()}}, Sp: sp()}},
			Sp:   sp(),
		},
	}}
	out := Emit(a)
	require.Contains(t, out, "while [ -e /tmp/x ]; do")
	require.Contains(t, out, "done")
}

func TestEmitSequenceInline(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Sequence{
			Conj: ast.ConjAnd,
			Stmts: []ast.Stmt{
				&ast.Command{Name: "rm", Args: []ast.Expr{&ast.Literal{Value: "-f", Sp: sp()}, &ast.Literal{Value: "/x", Sp: sp()}}, Sp: sp()},
				&ast.Command{Name: "ln", Args: []ast.Expr{&ast.Literal{Value: "-s", Sp: sp()}, &ast.Literal{Value: "/y", Sp: sp()}, &ast.Literal{Value: "/x", Sp: sp()}}, Sp: sp()},
			},
			Sp: sp(),
		},
	}}
	out := Emit(a)
	require.Contains(t, out, "rm -f /x && ln -s /y /x")
}

func TestEmitArithmeticPrecedence(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Assignment{Name: "X", Value: &ast.Arithmetic{
			Expr: &ast.ArithBinOp{
				Op:   ast.ArithMul,
				Left: &ast.ArithBinOp{Op: ast.ArithAdd, Left: &ast.ArithNumber{Value: 1, Sp: sp()}, Right: &ast.ArithNumber{Value: 2, Sp: sp()}, Sp: sp()},
				Right: &ast.ArithNumber{Value: 3, Sp: sp()},
				Sp:    sp(),
			},
			Sp: sp(),
		}, Sp: sp()},
	}}
	out := Emit(a)
	require.Contains(t, out, "X=$(((1 + 2) * 3))")
}

func TestEmitIsDeterministic(t *testing.T) {
	a := &ast.Ast{Statements: []ast.Stmt{
		&ast.Command{Name: "mkdir", Args: []ast.Expr{&ast.Literal{Value: "-p", Sp: sp()}, &ast.Literal{Value: "/x", Sp: sp()}}, Sp: sp()},
	}}
	require.Equal(t, Emit(a), Emit(a))
}
