package rules

import (
	"strings"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

var dangerousSinks = map[string]bool{
	"curl": true, "wget": true, "ssh": true, "scp": true, "rsync": true,
	"git": true, "docker": true, "kubectl": true,
}

var credentialKeyHints = []string{"password", "passwd", "secret", "apikey", "api_key", "token"}

func securityRules() []Rule {
	return []Rule{
		funcRule{"SEC001", secEvalInjection},
		funcRule{"SEC002", secUnquotedDangerousSink},
		funcRule{"SEC003", secUnquotedFindExec},
		funcRule{"SEC004", secHardcodedCredential},
		funcRule{"SEC005", secCommandSubstInAssignment},
		funcRule{"SEC006", secPredictableTempFile},
		funcRule{"SEC007", secWorldWritablePermissions},
		funcRule{"SEC008", secPipeToShell},
	}
}

// SEC001: `eval` used as a standalone command word is the canonical
// command-injection sink.
func secEvalInjection(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "eval" {
			return
		}
		out = append(out, diagnostic("SEC001", diag.SevError,
			"eval executes its argument as shell code; an attacker-controlled value here is arbitrary code execution",
			cmd.Sp, &diag.Fix{Text: "review and remove eval, or fully validate/quote its input", Safety: diag.Manual}))
	})
	return out
}

// SEC002: an unquoted (bare Variable) argument feeding a command that
// talks to the network or executes further code.
func secUnquotedDangerousSink(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if !dangerousSinks[cmd.Name] {
			return
		}
		for _, v := range bareVariableArgs(cmd) {
			out = append(out, diagnostic("SEC002", diag.SevError,
				"unquoted $"+v.Name+" passed to "+cmd.Name+" allows word-splitting and glob expansion of untrusted input",
				v.Sp, &diag.Fix{Text: `quote as "$` + v.Name + `"`, Safety: diag.Safe}))
		}
	})
	return out
}

// SEC003: `find ... -exec ... {} ...` with an unquoted `{}` placeholder.
// Both a truly bare `{}` and a single-quoted `'{}'` parse to the same
// *ast.Literal shape, so this rule necessarily treats both as "needs
// review" -- the parser does not retain enough quoting information to
// tell them apart, and re-adding that information would mean threading
// a quoting flag through every Literal for the sake of one rule.
func secUnquotedFindExec(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "find" || !hasLiteralArg(cmd, "-exec") {
			return
		}
		if hasLiteralArg(cmd, "{}") {
			out = append(out, diagnostic("SEC003", diag.SevError,
				"find -exec with {} should be followed by a properly terminated and quoted placeholder",
				cmd.Sp, nil))
		}
	})
	return out
}

// SEC004: an assignment whose literal value looks like a hard-coded
// credential, keyed on the variable name containing a credential hint.
func secHardcodedCredential(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		assign, ok := s.(*ast.Assignment)
		if !ok {
			return true
		}
		lit, ok := assign.Value.(*ast.Literal)
		if !ok || lit.Value == "" {
			return true
		}
		lowerName := strings.ToLower(assign.Name)
		for _, hint := range credentialKeyHints {
			if strings.Contains(lowerName, hint) {
				out = append(out, diagnostic("SEC004", diag.SevError,
					"assignment to "+assign.Name+" looks like a hard-coded credential",
					assign.Sp, &diag.Fix{Text: "load from environment or a secrets manager instead", Safety: diag.Manual}))
				break
			}
		}
		return true
	})
	return out
}

// SEC005: command substitution assigned to a variable whose name hints
// at later use in a dangerous sink (credential or command hints);
// flagged for review since the substituted command's output becomes
// effectively untrusted input to whatever consumes the variable.
func secCommandSubstInAssignment(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		assign, ok := s.(*ast.Assignment)
		if !ok {
			return true
		}
		subst, ok := assign.Value.(*ast.CommandSubst)
		if !ok {
			return true
		}
		cmd, ok := subst.Body.(*ast.Command)
		if !ok {
			return true
		}
		if cmd.Name == "curl" || cmd.Name == "wget" {
			out = append(out, diagnostic("SEC005", diag.SevError,
				assign.Name+" is bound from the output of "+cmd.Name+"; downstream uses should treat it as untrusted",
				assign.Sp, nil))
		}
		return true
	})
	return out
}

// SEC006: predictable temp file names built from $$ or $RANDOM, which an
// attacker can guess and race.
func secPredictableTempFile(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		cmd, ok := s.(*ast.Command)
		if !ok {
			return true
		}
		for _, redir := range cmd.Redirs {
			if containsPredictableVar(redir.Target) {
				out = append(out, diagnostic("SEC006", diag.SevError,
					"redirect target built from $$ or $RANDOM is a predictable temp file name",
					redir.Sp, &diag.Fix{Text: "use mktemp instead", Safety: diag.Manual}))
			}
		}
		return true
	})
	return out
}

func containsPredictableVar(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.Variable:
		return v.Name == "$" || v.Name == "RANDOM"
	case *ast.Concat:
		for _, p := range v.Parts {
			if containsPredictableVar(p) {
				return true
			}
		}
	}
	return false
}

// SEC007: chmod with world-writable octal modes.
func secWorldWritablePermissions(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "chmod" {
			return
		}
		for _, mode := range litArgs(cmd) {
			if mode == "777" || mode == "666" {
				out = append(out, diagnostic("SEC007", diag.SevError,
					"chmod "+mode+" grants world write access",
					cmd.Sp, &diag.Fix{Text: "use the narrowest mode the use case allows", Safety: diag.Manual}))
			}
		}
	})
	return out
}

// SEC008: piping curl/wget output directly into a shell interpreter.
func secPipeToShell(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		pipe, ok := s.(*ast.Pipeline)
		if !ok || len(pipe.Stages) < 2 {
			return true
		}
		first, ok := pipe.Stages[0].(*ast.Command)
		if !ok || (first.Name != "curl" && first.Name != "wget") {
			return true
		}
		last, ok := pipe.Stages[len(pipe.Stages)-1].(*ast.Command)
		if !ok {
			return true
		}
		if last.Name == "sh" || last.Name == "bash" {
			out = append(out, diagnostic("SEC008", diag.SevError,
				first.Name+" piped directly into "+last.Name+" executes unreviewed remote code",
				pipe.Sp, &diag.Fix{Text: "download, inspect, then execute separately", Safety: diag.Manual}))
		}
		return true
	})
	return out
}
