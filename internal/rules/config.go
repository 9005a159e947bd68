package rules

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/aledsdavies/shellpure/internal/diag"
	"github.com/aledsdavies/shellpure/internal/suggest"
)

// Dialect names the shell flavor rules should target. A handful of rules
// (notably the POSIX-normalization candidates the purifier later acts
// on) change behavior depending on dialect; the rule engine itself only
// validates and threads the value through.
type Dialect string

const (
	DialectPOSIX Dialect = "posix"
	DialectBash  Dialect = "bash"
	DialectDash  Dialect = "dash"
	DialectAsh   Dialect = "ash"
)

// CurrentRuleSetVersion is the compiled-in rule-set version compared
// against LintConfig.MinRuleSetVersion before a Lint call runs. Bump it
// whenever a rule's observable behavior (not just its message text)
// changes.
const CurrentRuleSetVersion = "v1.0.0"

// LintConfig controls which rules run and how their findings are
// reported. The zero value is not valid; construct via NewLintConfig or
// set Dialect explicitly before calling Validate.
type LintConfig struct {
	Enabled           map[diag.RuleCode]bool
	Disabled          map[diag.RuleCode]bool
	SeverityOverrides map[diag.RuleCode]diag.Severity
	Dialect           Dialect
	MultiLabel        bool
	MinRuleSetVersion string
	RuleSetVersion    string
}

// NewLintConfig returns a LintConfig with every built-in rule enabled,
// targeting POSIX, pinned to CurrentRuleSetVersion.
func NewLintConfig() LintConfig {
	return LintConfig{
		Enabled:           map[diag.RuleCode]bool{},
		Disabled:          map[diag.RuleCode]bool{},
		SeverityOverrides: map[diag.RuleCode]diag.Severity{},
		Dialect:           DialectPOSIX,
		RuleSetVersion:    CurrentRuleSetVersion,
	}
}

// Validate checks the constraints a LintConfig must satisfy before it is
// safe to pass to Lint: Dialect must be one of the four known values,
// RuleSetVersion and MinRuleSetVersion (when set) must be valid semver,
// and RuleSetVersion must satisfy MinRuleSetVersion when both are set.
func (c LintConfig) Validate() error {
	switch c.Dialect {
	case DialectPOSIX, DialectBash, DialectDash, DialectAsh, "":
	default:
		return fmt.Errorf("rules: unknown dialect %q", c.Dialect)
	}
	if c.RuleSetVersion != "" && !semver.IsValid(c.RuleSetVersion) {
		return fmt.Errorf("rules: invalid RuleSetVersion %q", c.RuleSetVersion)
	}
	if c.MinRuleSetVersion != "" && !semver.IsValid(c.MinRuleSetVersion) {
		return fmt.Errorf("rules: invalid MinRuleSetVersion %q", c.MinRuleSetVersion)
	}
	if c.RuleSetVersion != "" && c.MinRuleSetVersion != "" {
		if semver.Compare(c.RuleSetVersion, c.MinRuleSetVersion) < 0 {
			return fmt.Errorf("rules: rule-set version %s is older than required minimum %s",
				c.RuleSetVersion, c.MinRuleSetVersion)
		}
	}
	return nil
}

// ValidateAgainst runs Validate and additionally checks that every code
// named in Enabled/Disabled/SeverityOverrides is a code reg actually
// knows about, returning a "did you mean" error built from the closest
// known code when one isn't.
func (c LintConfig) ValidateAgainst(reg *Registry) error {
	if err := c.Validate(); err != nil {
		return err
	}
	known := make([]diag.RuleCode, 0)
	for _, r := range reg.All() {
		known = append(known, r.Code())
	}
	check := func(code diag.RuleCode) error {
		for _, k := range known {
			if k == code {
				return nil
			}
		}
		if closest := suggest.ClosestRuleCode(string(code), known); closest != "" {
			return fmt.Errorf("rules: unknown rule code %q (did you mean %q?)", code, closest)
		}
		return fmt.Errorf("rules: unknown rule code %q", code)
	}
	for code := range c.Enabled {
		if err := check(code); err != nil {
			return err
		}
	}
	for code := range c.Disabled {
		if err := check(code); err != nil {
			return err
		}
	}
	for code := range c.SeverityOverrides {
		if err := check(code); err != nil {
			return err
		}
	}
	return nil
}

// isEnabled reports whether a rule code should run under this config.
// Disabled always wins over Enabled. When Enabled is non-empty, only
// codes explicitly listed there run (an allowlist); otherwise every rule
// not in Disabled runs.
func (c LintConfig) isEnabled(code diag.RuleCode) bool {
	if c.Disabled[code] {
		return false
	}
	if len(c.Enabled) > 0 {
		return c.Enabled[code]
	}
	return true
}

// severityFor applies a SeverityOverrides entry if present, else returns
// def unchanged.
func (c LintConfig) severityFor(code diag.RuleCode, def diag.Severity) diag.Severity {
	if sev, ok := c.SeverityOverrides[code]; ok {
		return sev
	}
	return def
}
