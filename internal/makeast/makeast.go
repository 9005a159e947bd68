// Package makeast defines a minimal typed Makefile tree -- just enough
// to host a representative handful of MAKE* rules end-to-end, not a
// full Makefile parser (parsing the full GNU Make grammar, with its
// pattern rules, includes, and recursive variable expansion, is out of
// scope; see spec.md's Non-goals). The shape mirrors
// lenticularis39-mk's rule/ruleSet split in rules.go: a flat list of
// variable assignments plus a flat list of targets, each carrying its
// own prerequisites and recipe lines, rather than a full dependency
// graph (lenticularis39-mk's graph.go builds that graph for execution;
// a linter has no need to).
package makeast

import "github.com/aledsdavies/shellpure/internal/ast"

// VarAssign is a `NAME = value` or `NAME := value` line. Recursive
// (lazy, `=`) assignment is distinguished from simple (eager, `:=`)
// because MAKE004 below depends on it: a recursive variable that
// references itself is a classic infinite-expansion trap that simple
// assignment doesn't have.
type VarAssign struct {
	Name      string
	Value     string
	Recursive bool
	Sp        ast.Span
}

// Recipe is the tab-indented command block under a target, already
// stripped of its leading tab; Lines preserves per-line structure so
// rules can flag an individual offending line's span.
type Recipe struct {
	Lines []RecipeLine
	Sp    ast.Span
}

// RecipeLine is one command line of a Recipe.
type RecipeLine struct {
	Text string
	Sp   ast.Span
}

// Target is one `targets: prereqs` rule plus its recipe.
type Target struct {
	Names   []string
	Prereqs []string
	Recipe  Recipe
	IsPhony bool
	Sp      ast.Span
}

// Makefile is the root of the minimal tree: every variable assignment
// and every target, in file order.
type Makefile struct {
	Vars    []VarAssign
	Targets []Target
}
