package purify

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// appendTruncateGuardPass implements IDEM004/IDEM005: a command writing
// to a file via `>>` or `>` gets a preceding `mkdir -p` of the target's
// parent directory inserted into the enclosing statement list. This is
// the guard that keeps the write reliably idempotent across reruns on a
// freshly-provisioned host -- the redirection itself cannot fail
// differently on a second run (POSIX truncate/append semantics are
// already rerun-safe at the byte level), but a missing parent directory
// is the one error mode that changes between "directory provisioned by a
// prior step" and "fresh checkout", so that is the structural guard this
// pass can add without guessing at file contents.
func appendTruncateGuardPass(a *ast.Ast) (*ast.Ast, []diag.Diagnostic, error) {
	stmts := rewriteBlock(a.Statements, guardRewrite)
	return withStatements(a, stmts), nil, nil
}

// prev is this block's statements preceding s in the pass's input (not
// yet rewritten); when the immediately preceding one is already the exact `mkdir -p $(dirname
// <target>)` this rewrite would insert -- the case when purify runs
// again over its own output -- no second guard is inserted, keeping the
// pass idempotent.
func guardRewrite(prev []ast.Stmt, s ast.Stmt) []ast.Stmt {
	cmd, ok := s.(*ast.Command)
	if !ok {
		return []ast.Stmt{s}
	}
	var out []ast.Stmt
	for _, r := range cmd.Redirs {
		if r.Op != ast.RedirAppend && r.Op != ast.RedirOut {
			continue
		}
		if len(prev) > 0 && isMkdirPDirname(prev[len(prev)-1], r.Target) {
			break
		}
		out = append(out, &ast.Command{
			Name: "mkdir",
			Args: []ast.Expr{
				&ast.Literal{Value: "-p", Sp: r.Sp},
				&ast.CommandSubst{
					Body: &ast.Command{Name: "dirname", Args: []ast.Expr{r.Target}, Sp: r.Sp},
					Sp:   r.Sp,
				},
			},
			Sp: r.Sp,
		})
		break
	}
	out = append(out, cmd)
	return out
}
