// Package emit renders a purified Ast back to POSIX shell text.
//
// Emission is a pure function over an immutable tree, modeled on
// core/planfmt/writer.go's discipline: build into a buffer with one
// explicit per-node-kind switch, never branch on map iteration order,
// and make the same Ast always produce the same bytes. Unlike the
// binary planfmt writer this package emits text, but the shape --
// Writer holding a single buffer, one write* method per node kind,
// recursive descent mirroring the Ast's own shape -- is the same.
package emit

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/invariant"
)

// Shebang is the interpreter line every emitted script starts with.
const Shebang = "#!/bin/sh"

// Emit renders a to POSIX shell source. Output is byte-stable: calling
// Emit twice on the same Ast value always produces identical bytes.
func Emit(a *ast.Ast) string {
	invariant.NotNil(a, "a")
	w := &writer{}
	w.writeString(Shebang)
	w.newline()
	w.writeStmts(a.Statements, 0)
	return w.buf.String()
}

type writer struct {
	buf strings.Builder
}

func (w *writer) writeString(s string) { w.buf.WriteString(s) }
func (w *writer) newline()             { w.buf.WriteByte('\n') }

func (w *writer) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.writeString("  ")
	}
}

func (w *writer) writeStmts(stmts []ast.Stmt, depth int) {
	for _, s := range stmts {
		w.writeStmt(s, depth)
	}
}

func (w *writer) writeStmt(s ast.Stmt, depth int) {
	w.indent(depth)
	switch n := s.(type) {
	case *ast.Assignment:
		w.writeAssignment(n)
	case *ast.Command:
		w.writeCommand(n)
	case *ast.Function:
		w.writeFunction(n, depth)
	case *ast.If:
		w.writeIf(n, depth)
	case *ast.While:
		w.writeWhile(n, depth)
	case *ast.Until:
		w.writeUntil(n, depth)
	case *ast.For:
		w.writeFor(n, depth)
	case *ast.Case:
		w.writeCase(n, depth)
	case *ast.Return:
		w.writeReturn(n)
	case *ast.Comment:
		w.writeString("# ")
		w.writeString(n.Text)
	case *ast.Pipeline:
		w.writePipelineInline(n)
	case *ast.Sequence:
		w.writeSequenceInline(n)
	default:
		invariant.Invariant(false, "emit: unhandled ast.Stmt %T", s)
	}
	w.newline()
}

func (w *writer) writeAssignment(a *ast.Assignment) {
	if a.Exported {
		w.writeString("export ")
	}
	w.writeString(a.Name)
	w.writeString("=")
	w.writeString(w.exprAsWord(a.Value))
}

func (w *writer) writeCommand(c *ast.Command) {
	w.writeString(c.Name)
	for _, arg := range c.Args {
		w.writeString(" ")
		w.writeString(w.exprAsArg(arg))
	}
	for _, r := range c.Redirs {
		w.writeString(" ")
		w.writeString(redirOpString(r.Op, r.Fd))
		w.writeString(w.exprAsArg(r.Target))
	}
}

func redirOpString(op ast.RedirOp, fd int) string {
	prefix := ""
	if fd >= 0 {
		prefix = fmt.Sprintf("%d", fd)
	}
	switch op {
	case ast.RedirOut:
		return prefix + ">"
	case ast.RedirAppend:
		return prefix + ">>"
	case ast.RedirIn:
		return prefix + "<"
	case ast.RedirHeredoc:
		return prefix + "<<"
	case ast.RedirErrOut:
		return "2>"
	case ast.RedirErrAppend:
		return "2>>"
	case ast.RedirDupOut:
		return prefix + ">&"
	default:
		invariant.Invariant(false, "emit: unhandled ast.RedirOp %d", op)
		return ""
	}
}

func (w *writer) writeFunction(f *ast.Function, depth int) {
	w.writeString(f.Name)
	w.writeString("() {")
	w.newline()
	w.writeStmts(f.Body, depth+1)
	w.indent(depth)
	w.writeString("}")
}

func (w *writer) writeIf(s *ast.If, depth int) {
	w.writeString("if ")
	w.writeString(w.exprAsArg(s.Cond))
	w.writeString("; then")
	w.newline()
	w.writeStmts(s.Then, depth+1)
	for _, elif := range s.Elif {
		w.indent(depth)
		w.writeString("elif ")
		w.writeString(w.exprAsArg(elif.Cond))
		w.writeString("; then")
		w.newline()
		w.writeStmts(elif.Then, depth+1)
	}
	if s.HasElse {
		w.indent(depth)
		w.writeString("else")
		w.newline()
		w.writeStmts(s.Else, depth+1)
	}
	w.indent(depth)
	w.writeString("fi")
}

func (w *writer) writeWhile(s *ast.While, depth int) {
	w.writeString("while ")
	w.writeString(w.exprAsArg(s.Cond))
	w.writeString("; do")
	w.newline()
	w.writeStmts(s.Body, depth+1)
	w.indent(depth)
	w.writeString("done")
}

// writeUntil exists for defensive completeness: the POSIX-normalization
// purify pass rewrites every Until whose condition is a Test into a While
// before emission, but an Until with a bare-command condition is left in
// place by that pass, and an Ast handed to Emit without going through
// Purify first is still well-formed and must render something.
func (w *writer) writeUntil(s *ast.Until, depth int) {
	w.writeString("until ")
	w.writeString(w.exprAsArg(s.Cond))
	w.writeString("; do")
	w.newline()
	w.writeStmts(s.Body, depth+1)
	w.indent(depth)
	w.writeString("done")
}

func (w *writer) writeFor(s *ast.For, depth int) {
	w.writeString("for ")
	w.writeString(s.Var)
	w.writeString(" in ")
	w.writeString(w.exprAsArg(s.Items))
	w.writeString("; do")
	w.newline()
	w.writeStmts(s.Body, depth+1)
	w.indent(depth)
	w.writeString("done")
}

func (w *writer) writeCase(s *ast.Case, depth int) {
	w.writeString("case ")
	w.writeString(w.exprAsArg(s.Word))
	w.writeString(" in")
	w.newline()
	for _, arm := range s.Arms {
		w.indent(depth + 1)
		pats := make([]string, len(arm.Patterns))
		for i, p := range arm.Patterns {
			pats[i] = w.exprAsArg(p)
		}
		w.writeString(strings.Join(pats, "|"))
		w.writeString(")")
		w.newline()
		w.writeStmts(arm.Body, depth+2)
		w.indent(depth + 1)
		w.writeString(";;")
		w.newline()
	}
	w.indent(depth)
	w.writeString("esac")
}

func (w *writer) writeReturn(s *ast.Return) {
	w.writeString("return")
	if s.HasCode {
		w.writeString(" ")
		w.writeString(w.exprAsArg(s.Code))
	}
}

func (w *writer) writePipelineInline(p *ast.Pipeline) {
	parts := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		parts[i] = w.stmtAsWord(stage)
	}
	w.writeString(strings.Join(parts, " | "))
}

func (w *writer) writeSequenceInline(s *ast.Sequence) {
	sep := map[ast.Conjunction]string{
		ast.ConjSemi: "; ",
		ast.ConjAnd:  " && ",
		ast.ConjOr:   " || ",
	}[s.Conj]
	parts := make([]string, len(s.Stmts))
	for i, stmt := range s.Stmts {
		parts[i] = w.stmtAsWord(stmt)
	}
	w.writeString(strings.Join(parts, sep))
}

// stmtAsWord renders a statement inline (no trailing newline), for use as
// a Pipeline stage or Sequence member.
func (w *writer) stmtAsWord(s ast.Stmt) string {
	sub := &writer{}
	switch n := s.(type) {
	case *ast.Command:
		sub.writeCommand(n)
	case *ast.Pipeline:
		sub.writePipelineInline(n)
	case *ast.Sequence:
		sub.writeSequenceInline(n)
	case *ast.Assignment:
		sub.writeAssignment(n)
	default:
		invariant.Invariant(false, "emit: unhandled inline ast.Stmt %T", s)
	}
	return sub.buf.String()
}

// exprAsArg renders e the way it appears as a bare command argument or
// test operand: every Variable is braced and double-quoted
// (`"${name}"`), matching the purifier's quoting-pass contract that bare
// variable references are never emitted unquoted.
func (w *writer) exprAsArg(e ast.Expr) string {
	return exprString(e, true)
}

// exprAsWord renders e the way it appears on the right-hand side of an
// assignment, where POSIX already treats the word as a single field and
// quoting a bare literal value adds nothing.
func (w *writer) exprAsWord(e ast.Expr) string {
	return exprString(e, false)
}

func exprString(e ast.Expr, quoteVars bool) string {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value
	case *ast.Variable:
		if quoteVars {
			return `"${` + n.Name + `}"`
		}
		return "${" + n.Name + "}"
	case *ast.CommandSubst:
		return "$(" + (&writer{}).stmtAsWord(n.Body) + ")"
	case *ast.Arithmetic:
		return "$((" + arithString(n.Expr, 0) + "))"
	case *ast.Array:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = exprString(el, quoteVars)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.Concat:
		var b strings.Builder
		for _, p := range n.Parts {
			b.WriteString(concatPartString(p, n.Quoted))
		}
		if n.Quoted {
			return `"` + b.String() + `"`
		}
		return b.String()
	case *ast.Test:
		open, close := "[", "]"
		if n.Extended {
			open, close = "[[", "]]"
		}
		return open + " " + testExprString(n.Expr) + " " + close
	case *ast.Glob:
		return n.Pattern
	case *ast.DefaultValue:
		return "${" + n.Name + ":-" + exprString(n.Default, false) + "}"
	case *ast.AssignDefault:
		return "${" + n.Name + ":=" + exprString(n.Default, false) + "}"
	case *ast.ErrorIfUnset:
		return "${" + n.Name + ":?" + exprString(n.Message, false) + "}"
	case *ast.AlternativeValue:
		return "${" + n.Name + ":+" + exprString(n.Alt, false) + "}"
	case *ast.StringLength:
		return "${#" + n.Name + "}"
	case *ast.RemovePrefix:
		op := "#"
		if n.Longest {
			op = "##"
		}
		return "${" + n.Name + op + n.Pattern + "}"
	case *ast.RemoveSuffix:
		op := "%"
		if n.Longest {
			op = "%%"
		}
		return "${" + n.Name + op + n.Pattern + "}"
	case *ast.CaseConvert:
		op := "^^"
		if !n.Upper {
			op = ",,"
		}
		return "${" + n.Name + op + "}"
	default:
		invariant.Invariant(false, "emit: unhandled ast.Expr %T", e)
		return ""
	}
}

// concatPartString renders one Concat member without the outer quoting
// Concat itself already applies; a Variable inside an already-quoted
// Concat does not get its own surrounding quotes (they would nest).
func concatPartString(e ast.Expr, insideQuotes bool) string {
	if v, ok := e.(*ast.Variable); ok {
		if insideQuotes {
			return "${" + v.Name + "}"
		}
		return `"${` + v.Name + `}"`
	}
	return exprString(e, !insideQuotes)
}

func testExprString(t ast.TestExpr) string {
	switch n := t.(type) {
	case *ast.StringEq:
		return exprString(n.Left, true) + " = " + exprString(n.Right, true)
	case *ast.StringNe:
		return exprString(n.Left, true) + " != " + exprString(n.Right, true)
	case *ast.StringEmpty:
		return "-z " + exprString(n.Operand, true)
	case *ast.StringNonEmpty:
		return "-n " + exprString(n.Operand, true)
	case *ast.IntEq:
		return exprString(n.Left, true) + " -eq " + exprString(n.Right, true)
	case *ast.IntNe:
		return exprString(n.Left, true) + " -ne " + exprString(n.Right, true)
	case *ast.IntLt:
		return exprString(n.Left, true) + " -lt " + exprString(n.Right, true)
	case *ast.IntGt:
		return exprString(n.Left, true) + " -gt " + exprString(n.Right, true)
	case *ast.IntLe:
		return exprString(n.Left, true) + " -le " + exprString(n.Right, true)
	case *ast.IntGe:
		return exprString(n.Left, true) + " -ge " + exprString(n.Right, true)
	case *ast.FileExists:
		return "-e " + exprString(n.Path, true)
	case *ast.FileReadable:
		return "-r " + exprString(n.Path, true)
	case *ast.FileWritable:
		return "-w " + exprString(n.Path, true)
	case *ast.FileExecutable:
		return "-x " + exprString(n.Path, true)
	case *ast.FileDirectory:
		return "-d " + exprString(n.Path, true)
	case *ast.TestAnd:
		return testExprString(n.Left) + " -a " + testExprString(n.Right)
	case *ast.TestOr:
		return testExprString(n.Left) + " -o " + testExprString(n.Right)
	case *ast.TestNot:
		return "! " + testExprString(n.Operand)
	case *ast.RegexMatch:
		return exprString(n.Left, true) + " =~ " + n.Pattern
	default:
		invariant.Invariant(false, "emit: unhandled ast.TestExpr %T", t)
		return ""
	}
}

// arithString renders an Arith tree, parenthesizing a child whose operator
// binds looser than the parent's, and a right child whose operator binds
// equally tightly -- `a + b * c` and `a - b + c` stay flat, `(a + b) * c`
// and `a - (b - c)` keep their parens.
func arithString(a ast.Arith, parentPrec int) string {
	switch n := a.(type) {
	case *ast.ArithNumber:
		return fmt.Sprintf("%d", n.Value)
	case *ast.ArithVariable:
		return n.Name
	case *ast.ArithBinOp:
		prec := n.Op.Precedence()
		s := arithString(n.Left, prec) + " " + n.Op.String() + " " + arithString(n.Right, prec+1)
		if prec < parentPrec {
			return "(" + s + ")"
		}
		return s
	default:
		invariant.Invariant(false, "emit: unhandled ast.Arith %T", a)
		return ""
	}
}
