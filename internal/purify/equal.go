package purify

import "github.com/aledsdavies/shellpure/internal/ast"

// exprEqual reports whether two Exprs are structurally identical,
// ignoring Span -- used by guard-inserting passes to recognize that a
// preceding sibling already is the guard they would otherwise insert
// again. Node kinds that never appear as a guard's target (Test,
// Arithmetic, Array, the parameter-expansion forms) fall through to the
// conservative default: not equal, so an unrecognized shape never
// silently suppresses a needed guard.
func exprEqual(a, b ast.Expr) bool {
	switch x := a.(type) {
	case *ast.Literal:
		y, ok := b.(*ast.Literal)
		return ok && x.Value == y.Value
	case *ast.Variable:
		y, ok := b.(*ast.Variable)
		return ok && x.Name == y.Name
	case *ast.Concat:
		y, ok := b.(*ast.Concat)
		if !ok || x.Quoted != y.Quoted || len(x.Parts) != len(y.Parts) {
			return false
		}
		for i := range x.Parts {
			if !exprEqual(x.Parts[i], y.Parts[i]) {
				return false
			}
		}
		return true
	case *ast.CommandSubst:
		y, ok := b.(*ast.CommandSubst)
		return ok && stmtEqual(x.Body, y.Body)
	case *ast.Glob:
		y, ok := b.(*ast.Glob)
		return ok && x.Pattern == y.Pattern
	default:
		return false
	}
}

// exprsEqual reports whether two Expr slices are pairwise exprEqual.
func exprsEqual(a, b []ast.Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !exprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// stmtEqual reports whether two Stmts are structurally identical,
// ignoring Span. Only Command is handled -- the only Stmt kind that
// appears inside a guard's CommandSubst (guardRewrite's `$(dirname
// ...)`) -- everything else falls through to the conservative default.
func stmtEqual(a, b ast.Stmt) bool {
	x, ok := a.(*ast.Command)
	if !ok {
		return false
	}
	y, ok := b.(*ast.Command)
	if !ok {
		return false
	}
	return x.Name == y.Name && exprsEqual(x.Args, y.Args)
}

// isRmDashF reports whether s is exactly `rm -f <target>`.
func isRmDashF(s ast.Stmt, target ast.Expr) bool {
	cmd, ok := s.(*ast.Command)
	if !ok || cmd.Name != "rm" || len(cmd.Args) != 2 {
		return false
	}
	flag, ok := cmd.Args[0].(*ast.Literal)
	return ok && flag.Value == "-f" && exprEqual(cmd.Args[1], target)
}

// isMkdirPDirname reports whether s is exactly `mkdir -p $(dirname
// <target>)`, guardRewrite's inserted guard shape.
func isMkdirPDirname(s ast.Stmt, target ast.Expr) bool {
	cmd, ok := s.(*ast.Command)
	if !ok || cmd.Name != "mkdir" || len(cmd.Args) != 2 {
		return false
	}
	flag, ok := cmd.Args[0].(*ast.Literal)
	if !ok || flag.Value != "-p" {
		return false
	}
	subst, ok := cmd.Args[1].(*ast.CommandSubst)
	if !ok {
		return false
	}
	inner, ok := subst.Body.(*ast.Command)
	if !ok || inner.Name != "dirname" || len(inner.Args) != 1 {
		return false
	}
	return exprEqual(inner.Args[0], target)
}
