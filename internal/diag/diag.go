// Package diag defines the Diagnostic type shared by the rule engine,
// the purifier's Manual-fix reporting, and the classifier -- every part of
// shellpure that needs to say "something is wrong at this span" speaks
// this one vocabulary.
package diag

import (
	"sort"

	"github.com/aledsdavies/shellpure/internal/ast"
)

// Severity orders how seriously a Diagnostic should be treated.
type Severity int

const (
	SevError Severity = iota
	SevWarning
	SevInfo
	SevNote
	SevPerf
	SevRisk
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	case SevNote:
		return "note"
	case SevPerf:
		return "perf"
	case SevRisk:
		return "risk"
	default:
		return "unknown"
	}
}

// FixSafety classifies how confidently a Fix can be applied without
// human review.
type FixSafety int

const (
	Safe FixSafety = iota
	SafeWithAssumptions
	Manual
)

func (f FixSafety) String() string {
	switch f {
	case Safe:
		return "safe"
	case SafeWithAssumptions:
		return "safe-with-assumptions"
	case Manual:
		return "manual"
	default:
		return "unknown"
	}
}

// Fix describes a local AST edit the purifier could apply, tagged with a
// safety level. Text is a human-readable rendering of the suggested edit
// for diagnostic display; it is not itself executable -- the purifier
// applies the actual rewrite via internal/purify's Pass functions, keyed
// by rule code rather than by parsing this string back.
type Fix struct {
	Text   string
	Safety FixSafety
}

// RuleCode is a stable rule identifier, e.g. "SEC001". Numeric suffixes
// are the stable interface per spec; message text is not.
type RuleCode string

// Diagnostic is a single rule's report about a span.
type Diagnostic struct {
	Code       RuleCode
	Severity   Severity
	Message    string
	Span       ast.Span
	Suggestion *Fix
	Safety     FixSafety
	// RuleVersion pins the rule-set version that produced this diagnostic,
	// compared against LintConfig.MinRuleSetVersion with golang.org/x/mod/semver.
	RuleVersion string
}

// Category buckets a RuleCode into one of the priority-cascade classes
// used by both the engine's "highest severity wins" rule and the
// classifier.
type Category int

const (
	CategorySecurity Category = iota
	CategoryDeterminism
	CategoryIdempotency
	CategoryNeedsQuoting
	CategorySafe
)

// CategoryOf derives a Diagnostic's cascade category from its rule code
// prefix. Unknown prefixes sort as CategorySafe (lowest priority) rather
// than erroring, so a diagnostic from an unrecognized rule never silently
// outranks a known one.
func CategoryOf(code RuleCode) Category {
	s := string(code)
	switch {
	case len(s) >= 3 && s[:3] == "SEC":
		return CategorySecurity
	case len(s) >= 3 && s[:3] == "DET":
		return CategoryDeterminism
	case len(s) >= 4 && s[:4] == "IDEM":
		return CategoryIdempotency
	case len(s) >= 2 && s[:2] == "SC":
		return CategoryNeedsQuoting
	default:
		return CategorySafe
	}
}

// Sort orders diagnostics per §3 invariant 3: ascending (start line, start
// column), then ascending rule code.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Col != b.Span.Start.Col {
			return a.Span.Start.Col < b.Span.Start.Col
		}
		return a.Code < b.Code
	})
}

// Dedup removes exact (code, span, message) duplicates after Sort has
// grouped them adjacently. Kept separate from Sort because most callers
// (rule engine tests, §8 property 8 "no duplicates") want to assert on
// the two behaviors independently.
func Dedup(diags []Diagnostic) []Diagnostic {
	if len(diags) == 0 {
		return diags
	}
	out := diags[:1]
	for _, d := range diags[1:] {
		last := out[len(out)-1]
		if d.Code == last.Code && d.Span == last.Span && d.Message == last.Message {
			continue
		}
		out = append(out, d)
	}
	return out
}
