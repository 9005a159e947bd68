// Package configast defines a minimal typed tree for generic
// `KEY=value` / INI-style configuration files -- the CONFIG* rule
// family's AST, scoped the same way internal/makeast is scoped for
// Make: enough structure to host representative rules, not a full TOML
// or INI parser (spec.md explicitly keeps config-file *loading* out of
// the core).
package configast

import "github.com/aledsdavies/shellpure/internal/ast"

// KeyValue is one `key = value` (or `key=value`) entry.
type KeyValue struct {
	Key   string
	Value string
	Sp    ast.Span
}

// Section is an INI-style `[name]` block grouping KeyValue entries;
// Name is empty for entries preceding the first section header.
type Section struct {
	Name    string
	Entries []KeyValue
	Sp      ast.Span
}

// Config is the root of the minimal tree: every section in file order,
// including the implicit leading section for top-level entries.
type Config struct {
	Sections []Section
}
