// Package invariant provides contract assertions used throughout shellpure's
// core pipeline.
//
// Parsing, purification, and emission all depend on structural guarantees
// (every node carries a span, every pass returns a well-formed AST) that are
// cheap to check and expensive to debug if silently violated. Precondition
// and Postcondition express function contracts; Invariant expresses internal
// consistency checks inside loops and recursive descent. All three panic on
// violation: a tripped assertion is a bug in shellpure itself, never a
// malformed user script (those are reported as diagnostics, not panics).
package invariant

import "fmt"

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before a function returns.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks an internal consistency condition, typically inside a
// loop or recursive call (e.g. "parser position must advance").
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil. Intended for pointer/interface arguments
// that every caller is expected to have already validated.
func NotNil(value any, name string) {
	if value == nil {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

// NotEmpty panics if s is the empty string.
func NotEmpty(s string, name string) {
	if s == "" {
		fail("PRECONDITION", "%s must not be empty", name)
	}
}

func fail(kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(fmt.Sprintf("%s VIOLATION: %s", kind, msg))
}
