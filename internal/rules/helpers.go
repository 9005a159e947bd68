package rules

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// walkCommands visits every *ast.Command reachable from a's statements,
// including those nested inside pipelines, control-flow bodies, and
// command substitutions embedded in arguments.
func walkCommands(a *ast.Ast, visit func(*ast.Command)) {
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		if cmd, ok := s.(*ast.Command); ok {
			visit(cmd)
			walkExprsInCommand(cmd, visit)
		}
		return true
	})
}

// walkExprsInCommand descends into CommandSubst arguments so substitutions
// like `$(curl ... | sh)` are visible to rules that only look at
// top-level commands.
func walkExprsInCommand(cmd *ast.Command, visit func(*ast.Command)) {
	for _, arg := range cmd.Args {
		walkExprForCommands(arg, visit)
	}
}

func walkExprForCommands(e ast.Expr, visit func(*ast.Command)) {
	switch v := e.(type) {
	case *ast.CommandSubst:
		ast.Walk([]ast.Stmt{v.Body}, func(s ast.Stmt) bool {
			if cmd, ok := s.(*ast.Command); ok {
				visit(cmd)
				walkExprsInCommand(cmd, visit)
			}
			return true
		})
	case *ast.Concat:
		for _, p := range v.Parts {
			walkExprForCommands(p, visit)
		}
	}
}

// bareVariableArgs returns every argument of cmd that is a directly bare
// *ast.Variable -- i.e. unquoted expansion, the shape SC2086 and the
// security rules key off.
func bareVariableArgs(cmd *ast.Command) []*ast.Variable {
	var out []*ast.Variable
	for _, arg := range cmd.Args {
		if v, ok := arg.(*ast.Variable); ok {
			out = append(out, v)
		}
	}
	return out
}

func litArgs(cmd *ast.Command) []string {
	out := make([]string, 0, len(cmd.Args))
	for _, a := range cmd.Args {
		if l, ok := a.(*ast.Literal); ok {
			out = append(out, l.Value)
		} else {
			out = append(out, "")
		}
	}
	return out
}

func hasLiteralArg(cmd *ast.Command, want string) bool {
	for _, a := range cmd.Args {
		if l, ok := a.(*ast.Literal); ok && l.Value == want {
			return true
		}
	}
	return false
}

func diagnostic(code diag.RuleCode, sev diag.Severity, msg string, sp ast.Span, fix *diag.Fix) diag.Diagnostic {
	d := diag.Diagnostic{Code: code, Severity: sev, Message: msg, Span: sp}
	if fix != nil {
		d.Suggestion = fix
		d.Safety = fix.Safety
	}
	return d
}
