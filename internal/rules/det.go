package rules

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

func determinismRules() []Rule {
	return []Rule{
		funcRule{"DET001", detRandomVariable},
		funcRule{"DET002", detDateCommand},
		funcRule{"DET003", detProcessIdentifiers},
		funcRule{"DET004", detHostname},
		funcRule{"DET005", detUUIDGeneration},
		funcRule{"DET006", detUnsortedListing},
	}
}

func findVariables(a *ast.Ast, name string) []*ast.Variable {
	var out []*ast.Variable
	var walkExpr func(ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Variable:
			if v.Name == name {
				out = append(out, v)
			}
		case *ast.Concat:
			for _, p := range v.Parts {
				walkExpr(p)
			}
		case *ast.CommandSubst:
			ast.Walk([]ast.Stmt{v.Body}, func(s ast.Stmt) bool {
				forEachExprIn(s, walkExpr)
				return true
			})
		}
	}
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		forEachExprIn(s, walkExpr)
		return true
	})
	return out
}

// forEachExprIn invokes fn on every top-level Expr directly attached to
// s (assignment value, command args/redir targets, test operands via
// the condition expr). It does not recurse into nested statement bodies;
// ast.Walk already does that at the statement level.
func forEachExprIn(s ast.Stmt, fn func(ast.Expr)) {
	switch n := s.(type) {
	case *ast.Assignment:
		fn(n.Value)
	case *ast.Command:
		for _, arg := range n.Args {
			fn(arg)
		}
		for _, r := range n.Redirs {
			fn(r.Target)
		}
	case *ast.If:
		fn(n.Cond)
		for _, e := range n.Elif {
			fn(e.Cond)
		}
	case *ast.While:
		fn(n.Cond)
	case *ast.Until:
		fn(n.Cond)
	case *ast.For:
		fn(n.Items)
	case *ast.Case:
		fn(n.Word)
	case *ast.Return:
		if n.HasCode {
			fn(n.Code)
		}
	}
}

func detRandomVariable(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, v := range findVariables(a, "RANDOM") {
		out = append(out, diagnostic("DET001", diag.SevError,
			"$RANDOM is non-deterministic across runs", v.Sp,
			&diag.Fix{Text: "bind a deterministic session identifier instead", Safety: diag.SafeWithAssumptions}))
	}
	return out
}

func detDateCommand(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, v := range findVariables(a, "EPOCHSECONDS") {
		out = append(out, diagnostic("DET002", diag.SevError, "$EPOCHSECONDS is non-deterministic", v.Sp, nil))
	}
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		forEachExprIn(s, func(e ast.Expr) {
			walkForDateSubst(e, &out)
		})
		return true
	})
	return out
}

func walkForDateSubst(e ast.Expr, out *[]diag.Diagnostic) {
	switch v := e.(type) {
	case *ast.CommandSubst:
		if cmd, ok := v.Body.(*ast.Command); ok && cmd.Name == "date" {
			*out = append(*out, diagnostic("DET002", diag.SevError,
				"$(date ...) is non-deterministic", v.Sp,
				&diag.Fix{Text: "bind a deterministic timestamp placeholder or flag for manual review", Safety: diag.SafeWithAssumptions}))
		}
		ast.Walk([]ast.Stmt{v.Body}, func(s ast.Stmt) bool {
			forEachExprIn(s, func(inner ast.Expr) { walkForDateSubst(inner, out) })
			return true
		})
	case *ast.Concat:
		for _, p := range v.Parts {
			walkForDateSubst(p, out)
		}
	}
}

func detProcessIdentifiers(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, name := range []string{"$", "PPID"} {
		for _, v := range findVariables(a, name) {
			out = append(out, diagnostic("DET003", diag.SevError,
				"$"+name+" (process id) is non-deterministic across runs", v.Sp, nil))
		}
	}
	return out
}

func detHostname(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "hostname" {
			return
		}
		out = append(out, diagnostic("DET004", diag.SevError, "$(hostname) varies by host", cmd.Sp, nil))
	})
	return out
}

func detUUIDGeneration(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "uuidgen" {
			return
		}
		out = append(out, diagnostic("DET005", diag.SevError, "uuidgen produces a non-deterministic value", cmd.Sp, nil))
	})
	return out
}

var unsortedListers = map[string]bool{"ls": true, "find": true}

// DET006: a directory-listing command whose output is consumed (piped
// onward, or captured) without an explicit sort in the pipeline -- glibc
// and most filesystems do not guarantee a stable enumeration order.
func detUnsortedListing(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		pipe, ok := s.(*ast.Pipeline)
		if !ok || len(pipe.Stages) < 2 {
			return true
		}
		first, ok := pipe.Stages[0].(*ast.Command)
		if !ok || !unsortedListers[first.Name] {
			return true
		}
		for _, stage := range pipe.Stages[1:] {
			if cmd, ok := stage.(*ast.Command); ok && cmd.Name == "sort" {
				return true
			}
		}
		out = append(out, diagnostic("DET006", diag.SevError,
			first.Name+" output order is filesystem-dependent; pipe through sort for determinism",
			pipe.Sp, &diag.Fix{Text: "append `| sort`", Safety: diag.SafeWithAssumptions}))
		return true
	})
	return out
}
