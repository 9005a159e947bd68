// Package suggest finds the closest known rule code to one a caller
// referenced in a LintConfig that doesn't exist, the same "did you
// mean" role runtime/planner.findClosestMatch plays for unrecognized
// target function names: rank every candidate with fuzzy matching and
// surface the closest one rather than a bare "not found".
package suggest

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/shellpure/internal/diag"
)

// ClosestRuleCode returns the known code most similar to unknown, or ""
// if known is empty. Every known code is ranked by case-insensitive
// Levenshtein distance; ties are broken by known's own order (the ranks
// start in known's order and a stable sort keeps ClosestRuleCode
// deterministic when two codes tie).
func ClosestRuleCode(unknown string, known []diag.RuleCode) diag.RuleCode {
	if len(known) == 0 {
		return ""
	}
	ranks := make(fuzzy.Ranks, len(known))
	for i, c := range known {
		d := fuzzy.LevenshteinDistance(strings.ToLower(unknown), strings.ToLower(string(c)))
		ranks[i] = fuzzy.Rank{Source: unknown, Target: string(c), Distance: d}
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	return diag.RuleCode(ranks[0].Target)
}

// ClosestRuleCodes returns up to n known codes most similar to unknown,
// ordered nearest first, for a CLI that wants to list several
// candidates rather than commit to one.
func ClosestRuleCodes(unknown string, known []diag.RuleCode, n int) []diag.RuleCode {
	if n <= 0 || len(known) == 0 {
		return nil
	}
	ranks := make(fuzzy.Ranks, len(known))
	for i, c := range known {
		d := fuzzy.LevenshteinDistance(strings.ToLower(unknown), strings.ToLower(string(c)))
		ranks[i] = fuzzy.Rank{Source: unknown, Target: string(c), Distance: d}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	out := make([]diag.RuleCode, len(ranks))
	for i, r := range ranks {
		out[i] = diag.RuleCode(r.Target)
	}
	return out
}
