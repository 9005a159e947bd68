package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSpanUnion(t *testing.T) {
	a := Span{Start: Position{1, 1}, End: Position{1, 5}}
	b := Span{Start: Position{2, 1}, End: Position{3, 10}}

	got := a.Union(b)
	want := Span{Start: Position{1, 1}, End: Position{3, 10}}

	require.Equal(t, want, got)
}

func TestUnionAllSkipsZeroValue(t *testing.T) {
	a := Span{Start: Position{1, 1}, End: Position{1, 2}}
	got := UnionAll(Span{}, a, Span{})
	require.Equal(t, a, got)
}

func TestWalkVisitsNestedBodies(t *testing.T) {
	inner := &Command{Name: "echo", Sp: Span{Start: Position{2, 1}, End: Position{2, 10}}}
	outer := &If{
		Cond: &Test{Expr: &StringNonEmpty{Operand: &Variable{Name: "x"}}},
		Then: []Stmt{inner},
		Sp:   Span{Start: Position{1, 1}, End: Position{3, 1}},
	}

	var seen []Stmt
	Walk([]Stmt{outer}, func(s Stmt) bool { seen = append(seen, s); return true })

	require.Len(t, seen, 2)
	require.Same(t, outer, seen[0])
	require.Same(t, inner, seen[1])
}

func TestTransformRewritesBottomUp(t *testing.T) {
	leaf := &Command{Name: "mkdir", Sp: Span{Start: Position{1, 1}, End: Position{1, 10}}}
	loop := &While{Cond: &Test{Expr: &StringNonEmpty{}}, Body: []Stmt{leaf}}

	rewritten := Transform([]Stmt{loop}, func(s Stmt) Stmt {
		if cmd, ok := s.(*Command); ok && cmd.Name == "mkdir" {
			cp := *cmd
			cp.Args = append([]Expr{&Literal{Value: "-p"}}, cp.Args...)
			return &cp
		}
		return s
	})

	require.Len(t, rewritten, 1)
	newLoop, ok := rewritten[0].(*While)
	require.True(t, ok)
	newCmd, ok := newLoop.Body[0].(*Command)
	require.True(t, ok)
	require.Len(t, newCmd.Args, 1)

	if diff := cmp.Diff("-p", newCmd.Args[0].(*Literal).Value); diff != "" {
		t.Fatalf("unexpected arg (-want +got):\n%s", diff)
	}

	// original AST must be untouched: this is the basis for §3 invariant 2's
	// "no new free variables except emitter temporaries" reasoning and for
	// idempotence testing (purify(purify(a)) == purify(a)) in internal/purify.
	original, ok := loop.Body[0].(*Command)
	require.True(t, ok)
	require.Empty(t, original.Args)
}
