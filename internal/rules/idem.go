package rules

import (
	"strings"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

func idempotencyRules() []Rule {
	return []Rule{
		funcRule{"IDEM001", idemMkdirWithoutP},
		funcRule{"IDEM002", idemRmWithoutF},
		funcRule{"IDEM003", idemLnSymlinkWithoutCleanup},
		funcRule{"IDEM004", idemAppendWithoutGuard},
		funcRule{"IDEM005", idemTruncateWithoutGuard},
		funcRule{"IDEM006", idemInsertWithoutGuard},
	}
}

func idemMkdirWithoutP(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "mkdir" || hasLiteralArg(cmd, "-p") {
			return
		}
		out = append(out, diagnostic("IDEM001", diag.SevWarning,
			"mkdir without -p fails if the directory already exists", cmd.Sp,
			&diag.Fix{Text: "prepend -p", Safety: diag.Safe}))
	})
	return out
}

func idemRmWithoutF(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if cmd.Name != "rm" || hasLiteralArg(cmd, "-f") {
			return
		}
		out = append(out, diagnostic("IDEM002", diag.SevWarning,
			"rm without -f fails if the target is already absent", cmd.Sp,
			&diag.Fix{Text: "prepend -f", Safety: diag.Safe}))
	})
	return out
}

func idemLnSymlinkWithoutCleanup(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	inSeq := map[*ast.Command]bool{}
	ast.Walk(a.Statements, func(s ast.Stmt) bool {
		switch n := s.(type) {
		case *ast.Sequence:
			checkLnInSequence(n, &out)
			for _, m := range n.Stmts {
				if cmd, ok := m.(*ast.Command); ok {
					inSeq[cmd] = true
				}
			}
		case *ast.Command:
			if isLnDashS(n) && !inSeq[n] {
				out = append(out, diagnostic("IDEM003", diag.SevWarning,
					"ln -s without a preceding rm -f fails if the link already exists", n.Sp,
					&diag.Fix{Text: "insert `rm -f <link>;` before this statement", Safety: diag.Safe}))
			}
		}
		return true
	})
	return out
}

func isLnDashS(cmd *ast.Command) bool {
	return cmd.Name == "ln" && hasLiteralArg(cmd, "-s")
}

// checkLnInSequence only flags an `ln -s` that is not itself preceded in
// the same statement by an `rm -f` of the same target -- the purifier's
// pass 2 inserts exactly that `rm -f`, so a sequence already containing
// one is already idempotent and should not also be linted.
func checkLnInSequence(seq *ast.Sequence, out *[]diag.Diagnostic) {
	removed := map[string]bool{}
	for _, stmt := range seq.Stmts {
		cmd, ok := stmt.(*ast.Command)
		if !ok {
			continue
		}
		if cmd.Name == "rm" && hasLiteralArg(cmd, "-f") {
			for _, arg := range cmd.Args {
				if text, ok := literalOrQuotedText(arg); ok && !strings.HasPrefix(text, "-") {
					removed[text] = true
				}
			}
			continue
		}
		link := ""
		for _, arg := range cmd.Args {
			if text, ok := literalOrQuotedText(arg); !ok || !strings.HasPrefix(text, "-") {
				link = text
			}
		}
		if isLnDashS(cmd) && (link == "" || !removed[link]) {
			*out = append(*out, diagnostic("IDEM003", diag.SevWarning,
				"ln -s without a preceding rm -f fails if the link already exists", cmd.Sp,
				&diag.Fix{Text: "insert `rm -f <link>;` before this statement", Safety: diag.Safe}))
		}
	}
}

func idemAppendWithoutGuard(a *ast.Ast) []diag.Diagnostic {
	return redirGuardRule(a, ast.RedirAppend, "IDEM004",
		"append redirection grows the target file on every run without a guard")
}

func idemTruncateWithoutGuard(a *ast.Ast) []diag.Diagnostic {
	return redirGuardRule(a, ast.RedirOut, "IDEM005",
		"truncating redirection silently discards the target file's prior contents on every run")
}

func redirGuardRule(a *ast.Ast, op ast.RedirOp, code diag.RuleCode, msg string) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		for _, r := range cmd.Redirs {
			if r.Op != op {
				continue
			}
			out = append(out, diagnostic(code, diag.SevWarning, msg, r.Sp,
				&diag.Fix{Text: "guard with a file-existence test before writing", Safety: diag.SafeWithAssumptions}))
		}
	})
	return out
}

var insertLikeCommands = map[string]bool{"psql": true, "mysql": true, "sqlite3": true}

// IDEM006: a command invoking a SQL client with a literal argument that
// looks like a raw INSERT statement and no ON CONFLICT/INSERT OR
// IGNORE-style guard; a coarse structural heuristic per spec
// ("command-name + argument-shape matches"), not a SQL parser.
func idemInsertWithoutGuard(a *ast.Ast) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkCommands(a, func(cmd *ast.Command) {
		if !insertLikeCommands[cmd.Name] {
			return
		}
		for _, arg := range cmd.Args {
			text, ok := literalOrQuotedText(arg)
			if !ok {
				continue
			}
			if containsInsertWithoutGuard(text) {
				out = append(out, diagnostic("IDEM006", diag.SevWarning,
					"INSERT statement has no conflict guard and will fail or duplicate rows on rerun", cmd.Sp,
					&diag.Fix{Text: "add ON CONFLICT DO NOTHING or an equivalent upsert guard", Safety: diag.Manual}))
				return
			}
		}
	})
	return out
}

func literalOrQuotedText(e ast.Expr) (string, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		return v.Value, true
	case *ast.Concat:
		var text string
		for _, p := range v.Parts {
			if l, ok := p.(*ast.Literal); ok {
				text += l.Value
			}
		}
		return text, text != ""
	}
	return "", false
}

func containsInsertWithoutGuard(s string) bool {
	hasInsert := containsFold(s, "INSERT")
	hasGuard := containsFold(s, "ON CONFLICT") || containsFold(s, "OR IGNORE") || containsFold(s, "IF NOT EXISTS")
	return hasInsert && !hasGuard
}

func containsFold(s, sub string) bool {
	sl, subl := toUpperASCII(s), toUpperASCII(sub)
	for i := 0; i+len(subl) <= len(sl); i++ {
		if sl[i:i+len(subl)] == subl {
			return true
		}
	}
	return false
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
