// Package rules implements the rule engine and the SEC/DET/IDEM/SC rule
// families that run over a parsed Ast and produce diag.Diagnostic values.
package rules

import (
	"sort"
	"sync"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// Rule is a pure function over an immutable Ast. Rules must not mutate
// shared state; the engine may run many Rules concurrently over the same
// Ast value.
type Rule interface {
	Code() diag.RuleCode
	Check(a *ast.Ast) []diag.Diagnostic
}

// Registry is a concurrency-safe map from rule code to Rule, modeled on
// a RWMutex-guarded registry rather than a bare map so rules can be
// registered from init() in multiple files without a data race.
type Registry struct {
	mu    sync.RWMutex
	rules map[diag.RuleCode]Rule
}

// NewRegistry returns an empty Registry. The core never relies on a
// process-global registry; callers build one (typically via
// DefaultRegistry) and pass it into Lint explicitly.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[diag.RuleCode]Rule)}
}

// Register adds a Rule, overwriting any existing rule with the same code.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Code()] = rule
}

// Unregister removes a rule by code. Property 9 (rule locality) depends
// on this being exact: after Unregister, no diagnostic bearing that code
// can be produced by a subsequent Lint call against this Registry.
func (r *Registry) Unregister(code diag.RuleCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, code)
}

// All returns every registered Rule, sorted by code for deterministic
// iteration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}

// DefaultRegistry returns a fresh Registry populated with every built-in
// rule. It is a constructor, not a singleton: each call returns an
// independent Registry so callers can mutate it (disable a rule, add a
// custom one) without affecting other callers.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, rule := range securityRules() {
		reg.Register(rule)
	}
	for _, rule := range determinismRules() {
		reg.Register(rule)
	}
	for _, rule := range idempotencyRules() {
		reg.Register(rule)
	}
	for _, rule := range shellcheckRules() {
		reg.Register(rule)
	}
	return reg
}
