package rules

import (
	"sync"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
	"github.com/aledsdavies/shellpure/internal/trace"
)

// LintResult is the frozen, ordered output of a Lint call.
type LintResult struct {
	Diagnostics []diag.Diagnostic
}

// Lint runs every rule in reg enabled by config over a, fanning rules out
// across goroutines with a plain sync.WaitGroup rather than a worker-pool
// library -- the fan-out here is simple enough that an extra dependency
// would not pay for itself. Diagnostics come back in the canonical sort
// order regardless of the order rules finished in.
func Lint(a *ast.Ast, config LintConfig, reg *Registry) (LintResult, error) {
	return LintTraced(a, config, reg, trace.Noop)
}

// LintTraced is Lint with an explicit Tracer, for callers that want
// per-rule span timing.
func LintTraced(a *ast.Ast, config LintConfig, reg *Registry, tracer trace.Tracer) (LintResult, error) {
	if err := config.Validate(); err != nil {
		return LintResult{}, err
	}

	span := tracer.Start("rules.Lint")
	defer span.End()

	all := reg.All()
	active := make([]Rule, 0, len(all))
	for _, rule := range all {
		if config.isEnabled(rule.Code()) {
			active = append(active, rule)
		}
	}
	span.SetAttr("rules.active", len(active))

	results := make([][]diag.Diagnostic, len(active))
	var wg sync.WaitGroup
	wg.Add(len(active))
	for i, rule := range active {
		go func(i int, rule Rule) {
			defer wg.Done()
			rs := tracer.Start("rules." + string(rule.Code()))
			defer rs.End()
			found := rule.Check(a)
			for j := range found {
				found[j].Severity = config.severityFor(rule.Code(), found[j].Severity)
				found[j].RuleVersion = config.RuleSetVersion
			}
			results[i] = found
		}(i, rule)
	}
	wg.Wait()

	var all2 []diag.Diagnostic
	for _, r := range results {
		all2 = append(all2, r...)
	}
	diag.Sort(all2)
	all2 = diag.Dedup(all2)
	return LintResult{Diagnostics: all2}, nil
}
