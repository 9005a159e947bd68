package purify

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// idempotencyPass makes destructive/creative commands safe to rerun:
// mkdir gets -p, rm gets -f, and ln -s gets a preceding `rm -f <link>`
// inserted into the enclosing statement list (a structural insertion,
// not just a flag, since removing the old link is a separate operation).
func idempotencyPass(a *ast.Ast) (*ast.Ast, []diag.Diagnostic, error) {
	stmts := rewriteBlock(a.Statements, idempotencyRewrite)
	return withStatements(a, stmts), nil, nil
}

// idempotencyRewrite is applied bottom-up to every statement, including
// each member of a Sequence's flat Stmts list (rewriteBlock recurses
// into Sequence/Pipeline members, see pass.go). A lone `ln -s target
// link` therefore expands to two sibling statements -- `rm -f link`
// followed by the original `ln -s` -- regardless of whether it sits at
// the top level or as one link of an &&/||/; chain; this intentionally
// flattens scenario S4's inserted rm -f into the same conjunction as its
// neighbors rather than nesting a `;`-joined sub-sequence, trading one
// degree of conjunction-fidelity for never double-inserting the guard.
//
// prev is this block's statements preceding s in the pass's input (not
// yet rewritten); when the immediately preceding one is already the
// exact `rm -f <link>` this rewrite would insert -- the case when purify
// runs again over its own output -- no second guard is inserted, keeping
// the pass idempotent. A plain `rm <link>` in the input does not count,
// even though this pass turns it into `rm -f <link>`, so scenario S4
// keeps both that rm -f and the inserted one.
func idempotencyRewrite(prev []ast.Stmt, s ast.Stmt) []ast.Stmt {
	cmd, ok := s.(*ast.Command)
	if !ok {
		return []ast.Stmt{s}
	}
	if isLnDashS(cmd) {
		if target := lnTargetLink(cmd); target != nil {
			if len(prev) > 0 && isRmDashF(prev[len(prev)-1], target) {
				return []ast.Stmt{cmd}
			}
			return []ast.Stmt{
				&ast.Command{Name: "rm", Args: []ast.Expr{&ast.Literal{Value: "-f", Sp: cmd.Sp}, target}, Sp: cmd.Sp},
				cmd,
			}
		}
	}
	return []ast.Stmt{addIdempotencyFlags(cmd)}
}

func addIdempotencyFlags(cmd *ast.Command) ast.Stmt {
	switch cmd.Name {
	case "mkdir":
		if hasLiteral(cmd.Args, "-p") {
			return cmd
		}
		c := *cmd
		c.Args = prependLiteral(cmd.Args, "-p", cmd.Sp)
		return &c
	case "rm":
		if hasLiteral(cmd.Args, "-f") {
			return cmd
		}
		c := *cmd
		c.Args = prependLiteral(cmd.Args, "-f", cmd.Sp)
		return &c
	default:
		return cmd
	}
}

func isLnDashS(cmd *ast.Command) bool {
	return cmd.Name == "ln" && hasLiteral(cmd.Args, "-s")
}

// lnTargetLink returns the link-path argument of `ln -s target link`:
// the last non-flag argument.
func lnTargetLink(cmd *ast.Command) ast.Expr {
	var last ast.Expr
	for _, a := range cmd.Args {
		if lit, ok := a.(*ast.Literal); ok && len(lit.Value) > 0 && lit.Value[0] == '-' {
			continue
		}
		last = a
	}
	return last
}

func hasLiteral(args []ast.Expr, want string) bool {
	for _, a := range args {
		if l, ok := a.(*ast.Literal); ok && l.Value == want {
			return true
		}
	}
	return false
}

func prependLiteral(args []ast.Expr, value string, sp ast.Span) []ast.Expr {
	out := make([]ast.Expr, 0, len(args)+1)
	out = append(out, &ast.Literal{Value: value, Sp: sp})
	out = append(out, args...)
	return out
}
