package purify

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// posixNormalizePass rewrites the three bash-only shapes the spec names:
// Until becomes While(Not(cond)), `[[ ]]` becomes `[ ]` wherever the test
// contains no regex match, and `${v^^}`/`${v,,}` become a `tr`-based
// CommandSubst pipeline.
func posixNormalizePass(a *ast.Ast) (*ast.Ast, []diag.Diagnostic, error) {
	var diags []diag.Diagnostic

	rewriteNode := func(s ast.Stmt) ast.Stmt {
		s = mapExprsInStmt(s, func(e ast.Expr) ast.Expr {
			return rewriteCaseConvert(e)
		})
		if u, ok := s.(*ast.Until); ok {
			return untilToWhile(u, &diags)
		}
		return s
	}
	stmts := ast.Transform(a.Statements, rewriteNode)

	stmts = ast.Transform(stmts, func(s ast.Stmt) ast.Stmt {
		return mapExprsInStmt(s, func(e ast.Expr) ast.Expr {
			return rewriteExtendedTest(e, &diags)
		})
	})

	return withStatements(a, stmts), diags, nil
}

// untilToWhile negates the loop condition in place (`[ ! cond ]` rather
// than `! [ cond ]`, an equivalent POSIX rewrite chosen because this
// parser already discards `!` pipeline negation as a distinct node --
// see parser.parsePipeline) and relabels the statement as a While. When
// the condition is not a Test (a bare command wrapped in CommandSubst),
// there is no TestExpr to negate without reintroducing pipeline
// negation, so the pass leaves the Until alone and records a Manual
// diagnostic.
func untilToWhile(u *ast.Until, diags *[]diag.Diagnostic) ast.Stmt {
	test, ok := u.Cond.(*ast.Test)
	if !ok {
		*diags = append(*diags, diag.Diagnostic{
			Code: "POSIX001", Severity: diag.SevWarning,
			Message: "until with a non-test condition cannot be rewritten to a POSIX while without reintroducing pipeline negation",
			Span:    u.Sp,
			Safety:  diag.Manual,
		})
		return u
	}
	negated := &ast.Test{Expr: &ast.TestNot{Operand: test.Expr, Sp: test.Sp}, Extended: test.Extended, Sp: test.Sp}
	return &ast.While{Cond: negated, Body: u.Body, Sp: u.Sp}
}

func rewriteExtendedTest(e ast.Expr, diags *[]diag.Diagnostic) ast.Expr {
	test, ok := e.(*ast.Test)
	if !ok || !test.Extended {
		return e
	}
	if containsRegexMatch(test.Expr) {
		*diags = append(*diags, diag.Diagnostic{
			Code: "POSIX002", Severity: diag.SevWarning,
			Message: "[[ ]] uses =~ regex matching, which has no POSIX [ ] equivalent",
			Span:    test.Sp,
			Safety:  diag.Manual,
		})
		return e
	}
	return &ast.Test{Expr: test.Expr, Extended: false, Sp: test.Sp}
}

func containsRegexMatch(t ast.TestExpr) bool {
	switch n := t.(type) {
	case *ast.RegexMatch:
		return true
	case *ast.TestAnd:
		return containsRegexMatch(n.Left) || containsRegexMatch(n.Right)
	case *ast.TestOr:
		return containsRegexMatch(n.Left) || containsRegexMatch(n.Right)
	case *ast.TestNot:
		return containsRegexMatch(n.Operand)
	default:
		return false
	}
}

// rewriteCaseConvert turns `${v^^}`/`${v,,}` into a CommandSubst running
// `echo "$v" | tr <from> <to>`, the POSIX-portable equivalent. It
// recurses into Concat parts since a CaseConvert expansion is almost
// always found embedded in a double-quoted word, e.g. `"${name^^}"`,
// never as a command argument's own top-level Expr.
func rewriteCaseConvert(e ast.Expr) ast.Expr {
	if concat, ok := e.(*ast.Concat); ok {
		parts := make([]ast.Expr, len(concat.Parts))
		for i, p := range concat.Parts {
			parts[i] = rewriteCaseConvert(p)
		}
		return &ast.Concat{Parts: parts, Quoted: concat.Quoted, Sp: concat.Sp}
	}
	cc, ok := e.(*ast.CaseConvert)
	if !ok {
		return e
	}
	from, to := "a-z", "A-Z"
	if !cc.Upper {
		from, to = "A-Z", "a-z"
	}
	echo := &ast.Command{
		Name: "echo",
		Args: []ast.Expr{&ast.Concat{
			Parts:  []ast.Expr{&ast.Variable{Name: cc.Name, Sp: cc.Sp}},
			Quoted: true,
			Sp:     cc.Sp,
		}},
		Sp: cc.Sp,
	}
	tr := &ast.Command{
		Name: "tr",
		Args: []ast.Expr{
			&ast.Literal{Value: from, Sp: cc.Sp},
			&ast.Literal{Value: to, Sp: cc.Sp},
		},
		Sp: cc.Sp,
	}
	pipeline := &ast.Pipeline{Stages: []ast.Stmt{echo, tr}, Sp: cc.Sp}
	return &ast.CommandSubst{Body: pipeline, Sp: cc.Sp}
}
