// CONFIG* rules over the minimal configast tree, structurally analogous
// to internal/makeast's rules.go and internal/rules' SEC/DET/IDEM
// families: small rule-per-function checks sharing diag.Diagnostic.
package configast

import (
	"strings"

	"github.com/aledsdavies/shellpure/internal/diag"
)

var credentialKeyHints = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "access_key"}

var truthyValues = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true, "1": true, "0": true, "on": true, "off": true,
}

// Check runs every CONFIG rule over c and returns the combined,
// canonically sorted and deduped diagnostics.
func Check(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	out = append(out, checkDuplicateKey(c)...)
	out = append(out, checkHardcodedCredential(c)...)
	out = append(out, checkEmptyValue(c)...)
	out = append(out, checkInconsistentBoolean(c)...)
	out = append(out, checkDuplicateSection(c)...)
	diag.Sort(out)
	return diag.Dedup(out)
}

// CONFIG001: the same key appearing twice in one section means only
// the last occurrence takes effect in any INI-like reader that applies
// entries in order; the earlier one is dead configuration.
func checkDuplicateKey(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, s := range c.Sections {
		seen := make(map[string]bool, len(s.Entries))
		for _, e := range s.Entries {
			if seen[e.Key] {
				out = append(out, diag.Diagnostic{
					Code: "CONFIG001", Severity: diag.SevWarning,
					Message: "duplicate key \"" + e.Key + "\" in section",
					Span:    e.Sp,
					Safety:  diag.SafeWithAssumptions,
				})
				continue
			}
			seen[e.Key] = true
		}
	}
	return out
}

// CONFIG002: a key whose name suggests a credential carrying a
// non-empty literal value is a secret committed in plaintext, the same
// defect SEC004 flags for shell variable assignments.
func checkHardcodedCredential(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if e.Value == "" {
				continue
			}
			lower := strings.ToLower(e.Key)
			for _, hint := range credentialKeyHints {
				if strings.Contains(lower, hint) {
					out = append(out, diag.Diagnostic{
						Code: "CONFIG002", Severity: diag.SevError,
						Message: "key \"" + e.Key + "\" looks like a hard-coded credential",
						Span:    e.Sp,
						Safety:  diag.Manual,
					})
					break
				}
			}
		}
	}
	return out
}

// CONFIG003: a key assigned the empty string is usually either an
// unfinished edit or relies on undocumented default behavior in the
// consumer; worth a note either way.
func checkEmptyValue(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if e.Value == "" {
				out = append(out, diag.Diagnostic{
					Code: "CONFIG003", Severity: diag.SevNote,
					Message: "key \"" + e.Key + "\" has an empty value",
					Span:    e.Sp,
					Safety:  diag.SafeWithAssumptions,
				})
			}
		}
	}
	return out
}

// CONFIG004: a value that looks boolean-shaped (the key name starts with
// "enable" or "is_", or ends in "_enabled") but isn't one of the conventional
// true/false/yes/no/0/1/on/off spellings will parse inconsistently
// across readers that only recognize a subset of those.
func checkInconsistentBoolean(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			lower := strings.ToLower(e.Key)
			if !strings.HasPrefix(lower, "enable") && !strings.HasPrefix(lower, "is_") && !strings.HasSuffix(lower, "_enabled") {
				continue
			}
			if e.Value == "" || truthyValues[strings.ToLower(e.Value)] {
				continue
			}
			out = append(out, diag.Diagnostic{
				Code: "CONFIG004", Severity: diag.SevWarning,
				Message: "key \"" + e.Key + "\" looks boolean but has value \"" + e.Value + "\"",
				Span:    e.Sp,
				Safety:  diag.Manual,
			})
		}
	}
	return out
}

// CONFIG005: the same section name declared twice usually means two
// edits happened independently and need merging; whether entries
// accumulate or the second overwrites the first is reader-dependent,
// which is itself the problem.
func checkDuplicateSection(c *Config) []diag.Diagnostic {
	var out []diag.Diagnostic
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.Name == "" {
			continue
		}
		if seen[s.Name] {
			out = append(out, diag.Diagnostic{
				Code: "CONFIG005", Severity: diag.SevWarning,
				Message: "duplicate section \"" + s.Name + "\"",
				Span:    s.Sp,
				Safety:  diag.SafeWithAssumptions,
			})
			continue
		}
		seen[s.Name] = true
	}
	return out
}
