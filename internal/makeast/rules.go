// Rules here are grounded on lenticularis39-mk's rule-per-function
// style (rules.go's attribute parsing walks a small typed struct field
// by field rather than through a generic visitor) and share
// shellpure's diag.Diagnostic type per the shared-diagnostic-vocabulary
// requirement: a MAKE* finding looks exactly like a SEC*/DET*/IDEM*
// finding to anything downstream (classify, wire, suggest).
//
// This is a representative handful, not the full MAKE001-MAKE020
// family the rule-code namespace reserves room for; spec.md scopes the
// full Makefile parser out, so only the rules expressible over this
// minimal tree are implemented.
package makeast

import (
	"strings"

	"github.com/aledsdavies/shellpure/internal/diag"
)

var conventionalPhonyNames = map[string]bool{
	"all": true, "clean": true, "test": true, "install": true,
	"distclean": true, "check": true, "fmt": true, "lint": true,
}

// Check runs every MAKE rule over mk and returns the combined,
// canonically sorted and deduped diagnostics.
func Check(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	out = append(out, checkMissingPhony(mk)...)
	out = append(out, checkRmWithoutForce(mk)...)
	out = append(out, checkNonDeterministicRecipe(mk)...)
	out = append(out, checkSelfReferentialVar(mk)...)
	out = append(out, checkDuplicatePrereqs(mk)...)
	out = append(out, checkBareCdInRecipe(mk)...)
	diag.Sort(out)
	return diag.Dedup(out)
}

// MAKE001: a target named after a conventional non-file action
// ("all", "clean", "test", ...) that isn't declared .PHONY will
// silently stop running the moment a same-named file appears in the
// working directory.
func checkMissingPhony(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, t := range mk.Targets {
		if t.IsPhony {
			continue
		}
		for _, name := range t.Names {
			if conventionalPhonyNames[name] {
				out = append(out, diag.Diagnostic{
					Code: "MAKE001", Severity: diag.SevWarning,
					Message: "target \"" + name + "\" looks phony but is not declared .PHONY",
					Span:    t.Sp,
					Safety:  diag.SafeWithAssumptions,
				})
			}
		}
	}
	return out
}

// MAKE002: a recipe line invoking `rm` without `-f` fails the build the
// second time it runs against an already-removed path, the same
// non-idempotency IDEM002 flags in shell scripts.
func checkRmWithoutForce(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, t := range mk.Targets {
		for _, line := range t.Recipe.Lines {
			fields := strings.Fields(line.Text)
			if len(fields) == 0 || fields[0] != "rm" {
				continue
			}
			if hasField(fields[1:], "-f") || hasField(fields[1:], "-rf") || hasField(fields[1:], "-fr") {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code: "MAKE002", Severity: diag.SevWarning,
				Message: "rm without -f is not idempotent across repeated builds",
				Span:    line.Sp,
				Safety:  diag.SafeWithAssumptions,
			})
		}
	}
	return out
}

// MAKE003: a recipe line invoking `$(shell date ...)` (or similar)
// embeds a non-deterministic value directly into the build, the same
// defect DET002 flags for shell scripts.
func checkNonDeterministicRecipe(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, t := range mk.Targets {
		for _, line := range t.Recipe.Lines {
			if strings.Contains(line.Text, "$(shell date") || strings.Contains(line.Text, "$(shell uuidgen") {
				out = append(out, diag.Diagnostic{
					Code: "MAKE003", Severity: diag.SevError,
					Message: "recipe embeds a non-deterministic $(shell ...) call",
					Span:    line.Sp,
					Safety:  diag.Manual,
				})
			}
		}
	}
	return out
}

// MAKE004: a recursively-expanded (`=`) variable whose value mentions
// its own name re-expands itself every time it's referenced, which is
// either an infinite loop or silently quadratic, depending on Make's
// mood; `:=` variables are immune since they expand once at
// assignment time.
func checkSelfReferentialVar(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, v := range mk.Vars {
		if !v.Recursive {
			continue
		}
		if strings.Contains(v.Value, "$("+v.Name+")") || strings.Contains(v.Value, "${"+v.Name+"}") {
			out = append(out, diag.Diagnostic{
				Code: "MAKE004", Severity: diag.SevWarning,
				Message: "recursively-expanded variable \"" + v.Name + "\" references itself",
				Span:    v.Sp,
				Safety:  diag.Manual,
			})
		}
	}
	return out
}

// MAKE005: a target listing the same prerequisite twice builds it
// (and anything beneath it) no more than once, but the duplicate is
// always either dead text or a copy-paste mistake.
func checkDuplicatePrereqs(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, t := range mk.Targets {
		seen := make(map[string]bool, len(t.Prereqs))
		for _, p := range t.Prereqs {
			if seen[p] {
				out = append(out, diag.Diagnostic{
					Code: "MAKE005", Severity: diag.SevNote,
					Message: "duplicate prerequisite \"" + p + "\"",
					Span:    t.Sp,
					Safety:  diag.SafeWithAssumptions,
				})
				continue
			}
			seen[p] = true
		}
	}
	return out
}

// MAKE006: each recipe line runs in its own subshell, so a bare `cd`
// on one line has no effect on the line after it -- a classic Make
// gotcha distinct from anything the shell engine itself would flag,
// since the shell purifier never sees individual recipe lines as a
// single script.
func checkBareCdInRecipe(mk *Makefile) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, t := range mk.Targets {
		for i, line := range t.Recipe.Lines {
			trimmed := strings.TrimSpace(line.Text)
			if !strings.HasPrefix(trimmed, "cd ") {
				continue
			}
			if strings.Contains(trimmed, "&&") {
				continue
			}
			if i == len(t.Recipe.Lines)-1 {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code: "MAKE006", Severity: diag.SevWarning,
				Message: "cd on its own recipe line does not persist to the next line",
				Span:    line.Sp,
				Safety:  diag.SafeWithAssumptions,
			})
		}
	}
	return out
}

func hasField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
