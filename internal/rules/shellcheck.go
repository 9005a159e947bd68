// Rule implementations mirroring a subset of ShellCheck's checks,
// reimplemented directly on the AST rather than as textual pattern
// matching. Message wording approximates upstream ShellCheck for
// familiarity; exact wording is explicitly non-normative.
package rules

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

func shellcheckRules() []Rule {
	return []Rule{
		funcRule{"SC2086", scUnquotedVariable},
		funcRule{"SC2046", scUnquotedCommandSubst},
		funcRule{"SC2059", scPrintfFormatInjection},
		funcRule{"SC2064", scTrapImmediateExpansion},
	}
}

// SC2086: a bare *ast.Variable used directly as a command argument, with
// no surrounding Concat/quoting, is subject to word-splitting and
// pathname expansion.
func scUnquotedVariable(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		for _, v := range bareVariableArgs(cmd) {
			out = append(out, diagnostic("SC2086", diag.SevWarning,
				"Double quote to prevent globbing and word splitting", v.Sp,
				&diag.Fix{Text: `"$` + v.Name + `"`, Safety: diag.Safe}))
		}
	})
	return out
}

// SC2046: a bare *ast.CommandSubst used directly as a command argument,
// same word-splitting hazard as SC2086 but for `$(...)` instead of `$var`.
func scUnquotedCommandSubst(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		for _, arg := range cmd.Args {
			if cs, ok := arg.(*ast.CommandSubst); ok {
				out = append(out, diagnostic("SC2046", diag.SevWarning,
					"Quote this to prevent word splitting", cs.Sp,
					&diag.Fix{Text: "wrap in double quotes", Safety: diag.Safe}))
			}
		}
	})
	return out
}

// SC2059: printf's first argument (the format string) is a variable or
// contains one, letting attacker- or data-controlled `%` directives
// change printf's behavior.
func scPrintfFormatInjection(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "printf" || len(cmd.Args) == 0 {
			return
		}
		format := cmd.Args[0]
		if containsVariable(format) {
			out = append(out, diagnostic("SC2059", diag.SevWarning,
				"Don't use variables in the printf format string; use printf '%s' instead", format.Span(), nil))
		}
	})
	return out
}

func containsVariable(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Variable:
		return true
	case *ast.Concat:
		for _, p := range v.Parts {
			if containsVariable(p) {
				return true
			}
		}
	}
	return false
}

// SC2064: `trap '...'` with a double-quoted body expands variables when
// the trap is installed rather than when it fires. Single-quoting (or
// escaping) defers expansion to signal time, which is what callers
// almost always want.
func scTrapImmediateExpansion(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "trap" || len(cmd.Args) == 0 {
			return
		}
		body := cmd.Args[0]
		concat, ok := body.(*ast.Concat)
		if !ok || !concat.Quoted {
			return
		}
		if containsVariable(body) {
			out = append(out, diagnostic("SC2064", diag.SevWarning,
				"Use single quotes, otherwise this expands now rather than when signalled", body.Span(), nil))
		}
	})
	return out
}
