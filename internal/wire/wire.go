// Package wire serializes diagnostics to the stable external formats
// named in the external-interfaces contract: a JSON diagnostic array
// validated against a compiled-in JSON Schema, and SARIF 2.1.0 for CI
// integrations. Schema validation here plays the role
// core/types/jsonschema.go plays for decorator parameter schemas:
// catching a wire-format regression before it reaches a caller, rather
// than trusting the marshaler never to drift from the documented shape.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// schemaURL is the $id used when registering the in-memory schema
// resource; it is never fetched over the network.
const schemaURL = "mem://shellpure/diagnostic.schema.json"

// diagnosticSchemaJSON is the compiled-in JSON Schema for one wire
// diagnostic, matching §6's documented shape exactly.
const diagnosticSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "` + schemaURL + `",
  "type": "object",
  "required": ["code", "severity", "message", "line", "column", "span"],
  "properties": {
    "code": {"type": "string"},
    "severity": {"type": "string", "enum": ["error", "warning", "info", "note", "perf", "risk"]},
    "message": {"type": "string"},
    "line": {"type": "integer"},
    "column": {"type": "integer"},
    "span": {
      "type": "object",
      "required": ["start", "end"],
      "properties": {
        "start": {"type": "array", "items": {"type": "integer"}, "minItems": 2, "maxItems": 2},
        "end":   {"type": "array", "items": {"type": "integer"}, "minItems": 2, "maxItems": 2}
      }
    },
    "suggestion": {
      "type": ["object", "null"],
      "properties": {
        "text":   {"type": "string"},
        "safety": {"type": "string", "enum": ["safe", "safe-with-assumptions", "manual"]}
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(diagnosticSchemaJSON)); err != nil {
		panic(fmt.Sprintf("wire: invalid embedded schema: %v", err))
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("wire: schema did not compile: %v", err))
	}
	return schema
}

// Span is the wire representation of ast.Span: two [line,col] pairs.
type Span struct {
	Start [2]int `json:"start"`
	End   [2]int `json:"end"`
}

// Suggestion is the wire representation of a diag.Fix.
type Suggestion struct {
	Text   string `json:"text"`
	Safety string `json:"safety"`
}

// Diagnostic is the JSON wire shape of a diag.Diagnostic.
type Diagnostic struct {
	Code       string      `json:"code"`
	Severity   string      `json:"severity"`
	Message    string      `json:"message"`
	Line       int         `json:"line"`
	Column     int         `json:"column"`
	Span       Span        `json:"span"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// FromDiagnostic converts a core diag.Diagnostic to its wire shape.
func FromDiagnostic(d diag.Diagnostic) Diagnostic {
	w := Diagnostic{
		Code:     string(d.Code),
		Severity: d.Severity.String(),
		Message:  d.Message,
		Line:     d.Span.Start.Line,
		Column:   d.Span.Start.Col,
		Span: Span{
			Start: [2]int{d.Span.Start.Line, d.Span.Start.Col},
			End:   [2]int{d.Span.End.Line, d.Span.End.Col},
		},
	}
	if d.Suggestion != nil {
		w.Suggestion = &Suggestion{Text: d.Suggestion.Text, Safety: d.Suggestion.Safety.String()}
	}
	return w
}

// Encode marshals diagnostics to their JSON array wire format, already
// sorted and deduped per §3 invariant 3 by the caller (internal/rules'
// engine guarantees this), and validates the result against the
// compiled-in schema before returning it.
func Encode(diagnostics []diag.Diagnostic) ([]byte, error) {
	wire := make([]Diagnostic, len(diagnostics))
	for i, d := range diagnostics {
		wire[i] = FromDiagnostic(d)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal diagnostics: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("wire: encoded diagnostics failed schema validation: %w", err)
	}
	return data, nil
}

// Validate checks JSON-encoded diagnostics (a top-level array) against
// the compiled-in schema, one element at a time so a single malformed
// diagnostic reports its own index.
func Validate(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wire: not a JSON array: %w", err)
	}
	for i, elem := range raw {
		if err := compiledSchema.Validate(elem); err != nil {
			return fmt.Errorf("wire: diagnostic[%d]: %w", i, err)
		}
	}
	return nil
}

// sarifVersion and sarifSchema identify the SARIF document per
// §6's "standard 2.1.0 schema" requirement.
const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

// SarifLog is a minimal SARIF 2.1.0 document: one run per invocation,
// results filled from diagnostics, rule descriptors carrying the code
// as ruleId.
type SarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool    SarifTool      `json:"tool"`
	Results []SarifResult  `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name  string       `json:"name"`
	Rules []SarifRule  `json:"rules"`
}

type SarifRule struct {
	ID string `json:"id"`
}

type SarifResult struct {
	RuleID    string            `json:"ruleId"`
	Level     string            `json:"level"`
	Message   SarifMessage      `json:"message"`
	Locations []SarifLocation   `json:"locations"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	Region SarifRegion `json:"region"`
}

type SarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// sarifLevel maps a diag.Severity onto SARIF's three-level vocabulary
// (error/warning/note); Info, Perf, and Risk all read as "note", SARIF
// having no finer-grained bucket for them.
func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF renders diagnostics as a single-run SARIF 2.1.0 log, toolName
// identifying the driver (e.g. "shellpure").
func ToSARIF(toolName string, diagnostics []diag.Diagnostic) SarifLog {
	seen := make(map[string]bool)
	var rules []SarifRule
	results := make([]SarifResult, len(diagnostics))
	for i, d := range diagnostics {
		code := string(d.Code)
		if !seen[code] {
			seen[code] = true
			rules = append(rules, SarifRule{ID: code})
		}
		results[i] = SarifResult{
			RuleID:  code,
			Level:   sarifLevel(d.Severity),
			Message: SarifMessage{Text: d.Message},
			Locations: []SarifLocation{{
				PhysicalLocation: SarifPhysicalLocation{
					Region: SarifRegion{
						StartLine:   d.Span.Start.Line,
						StartColumn: d.Span.Start.Col,
						EndLine:     d.Span.End.Line,
						EndColumn:   d.Span.End.Col,
					},
				},
			}},
		}
	}
	return SarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []SarifRun{{
			Tool:    SarifTool{Driver: SarifDriver{Name: toolName, Rules: rules}},
			Results: results,
		}},
	}
}

// spanOf is a small helper kept for callers that want to build a
// diag.Diagnostic span from wire coordinates (round-tripping through
// the Makefile/Config ASTs' own span types, which reuse ast.Span).
func spanOf(startLine, startCol, endLine, endCol int) ast.Span {
	return ast.Span{
		Start: ast.Position{Line: startLine, Col: startCol},
		End:   ast.Position{Line: endLine, Col: endCol},
	}
}
