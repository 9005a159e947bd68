package purify

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// determinismPass replaces every known source of non-determinism --
// $RANDOM, $(date ...), $EPOCHSECONDS, $$ -- with a reference to a
// reserved, deterministically-bound variable, and prepends the bindings
// those references need at script entry. It is unsafe in the
// source-behavior sense (scenario S2's SESSION_ID genuinely changes
// value), which is why this substitution only runs under purify, never
// under lint.
func determinismPass(cfg Config) Pass {
	binding := cfg.SessionBinding
	if binding == "" {
		binding = DefaultSessionBinding
	}
	return func(a *ast.Ast) (*ast.Ast, []diag.Diagnostic, error) {
		state := &determinismState{}
		rewrite := func(s ast.Stmt) ast.Stmt {
			return mapExprsInStmt(s, func(e ast.Expr) ast.Expr {
				return substituteDeterminism(e, state)
			})
		}
		stmts := ast.Transform(a.Statements, rewrite)

		var prelude []ast.Stmt
		if state.usedSession {
			prelude = append(prelude, &ast.Assignment{
				Name:  ReservedSessionVar,
				Value: &ast.Literal{Value: binding},
			})
		}
		if state.usedTimestamp {
			prelude = append(prelude, &ast.Assignment{
				Name:  ReservedTimestampVar,
				Value: &ast.Literal{Value: DefaultSessionBinding},
			})
		}
		if state.usedPID {
			prelude = append(prelude, &ast.Assignment{
				Name:  ReservedPIDVar,
				Value: &ast.Literal{Value: "0"},
			})
		}
		stmts = append(prelude, stmts...)
		return withStatements(a, stmts), state.diags, nil
	}
}

type determinismState struct {
	usedSession   bool
	usedTimestamp bool
	usedPID       bool
	diags         []diag.Diagnostic
}

func substituteDeterminism(e ast.Expr, st *determinismState) ast.Expr {
	switch v := e.(type) {
	case *ast.Variable:
		switch v.Name {
		case "RANDOM":
			st.usedSession = true
			return &ast.Variable{Name: ReservedSessionVar, Sp: v.Sp}
		case "EPOCHSECONDS":
			st.usedTimestamp = true
			return &ast.Variable{Name: ReservedTimestampVar, Sp: v.Sp}
		case "$", "PPID":
			st.usedPID = true
			return &ast.Variable{Name: ReservedPIDVar, Sp: v.Sp}
		}
		return v
	case *ast.CommandSubst:
		if cmd, ok := v.Body.(*ast.Command); ok && cmd.Name == "date" {
			st.usedTimestamp = true
			return &ast.Variable{Name: ReservedTimestampVar, Sp: v.Sp}
		}
		newBody := ast.Transform([]ast.Stmt{v.Body}, func(s ast.Stmt) ast.Stmt {
			return mapExprsInStmt(s, func(inner ast.Expr) ast.Expr { return substituteDeterminism(inner, st) })
		})[0]
		return &ast.CommandSubst{Body: newBody, Sp: v.Sp}
	case *ast.Concat:
		parts := make([]ast.Expr, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = substituteDeterminism(p, st)
		}
		return &ast.Concat{Parts: parts, Quoted: v.Quoted, Sp: v.Sp}
	case *ast.Array:
		elems := make([]ast.Expr, len(v.Elems))
		for i, p := range v.Elems {
			elems[i] = substituteDeterminism(p, st)
		}
		return &ast.Array{Elems: elems, Sp: v.Sp}
	default:
		return e
	}
}

// mapExprsInStmt returns a shallow copy of s with each of its own direct
// Expr fields rewritten by fn. It does not recurse into nested statement
// bodies (If.Then, While.Body, ...); ast.Transform already visits those
// as separate Stmt nodes, so recursing here too would rewrite twice.
func mapExprsInStmt(s ast.Stmt, fn func(ast.Expr) ast.Expr) ast.Stmt {
	switch n := s.(type) {
	case *ast.Assignment:
		c := *n
		c.Value = fn(n.Value)
		return &c
	case *ast.Command:
		c := *n
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = fn(a)
		}
		c.Args = args
		redirs := make([]ast.Redir, len(n.Redirs))
		for i, r := range n.Redirs {
			redirs[i] = ast.Redir{Op: r.Op, Fd: r.Fd, Target: fn(r.Target), Sp: r.Sp}
		}
		c.Redirs = redirs
		return &c
	case *ast.If:
		c := *n
		c.Cond = fn(n.Cond)
		if len(n.Elif) > 0 {
			elif := make([]ast.ElifClause, len(n.Elif))
			for i, e := range n.Elif {
				elif[i] = ast.ElifClause{Cond: fn(e.Cond), Then: e.Then}
			}
			c.Elif = elif
		}
		return &c
	case *ast.While:
		c := *n
		c.Cond = fn(n.Cond)
		return &c
	case *ast.Until:
		c := *n
		c.Cond = fn(n.Cond)
		return &c
	case *ast.For:
		c := *n
		c.Items = fn(n.Items)
		return &c
	case *ast.Case:
		c := *n
		arms := make([]ast.CaseArm, len(n.Arms))
		for i, arm := range n.Arms {
			pats := make([]ast.Expr, len(arm.Patterns))
			for j, p := range arm.Patterns {
				pats[j] = fn(p)
			}
			arms[i] = ast.CaseArm{Patterns: pats, Body: arm.Body, Sp: arm.Sp}
		}
		c.Word = fn(n.Word)
		c.Arms = arms
		return &c
	case *ast.Return:
		if !n.HasCode {
			return n
		}
		c := *n
		c.Code = fn(n.Code)
		return &c
	default:
		return s
	}
}
