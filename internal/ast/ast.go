package ast

import "time"

// Fingerprint is a content-addressed digest of an Ast's canonical source
// bytes, filled in by internal/cache. The zero value means "not computed".
type Fingerprint [32]byte

// Meta carries information about an Ast that isn't itself part of the
// shell semantics: parse timing, line count, and an optional label for
// the originating file. None of these fields participate in purification
// or emission, so they never affect §3 invariant 4 (idempotence).
type Meta struct {
	ParsedAt    time.Time
	LineCount   int
	SourceFile  string
	Fingerprint Fingerprint
}

// Ast is the root of a parsed (or purified) shell program.
type Ast struct {
	Statements []Stmt
	Meta       Meta
}

// Span is the union of every top-level statement's span.
func (a *Ast) Span() Span {
	spans := make([]Span, len(a.Statements))
	for i, s := range a.Statements {
		spans[i] = s.Span()
	}
	return UnionAll(spans...)
}

// Clone returns a shallow copy of the Ast with a fresh Statements slice
// header (the statement values themselves are shared; transform passes
// replace entries rather than mutate them in place, preserving the
// "AST is immutable except by whole-node replacement" contract).
func (a *Ast) Clone() *Ast {
	out := &Ast{
		Statements: make([]Stmt, len(a.Statements)),
		Meta:       a.Meta,
	}
	copy(out.Statements, a.Statements)
	return out
}
