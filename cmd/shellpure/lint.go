package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/shellpure/internal/diag"
	"github.com/aledsdavies/shellpure/internal/parser"
	"github.com/aledsdavies/shellpure/internal/rules"
	"github.com/aledsdavies/shellpure/internal/wire"
)

func newLintCmd() *cobra.Command {
	var (
		file     string
		format   string
		dialect  string
		enable   []string
		disable  []string
		minRules string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run the rule engine over a shell script and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(file)
			if err != nil {
				return err
			}
			a, err := parser.Parse(source)
			if err != nil {
				return fmt.Errorf("shellpure: parse: %w", err)
			}

			cfg := rules.NewLintConfig()
			cfg.Dialect = rules.Dialect(dialect)
			cfg.MinRuleSetVersion = minRules
			for _, code := range enable {
				cfg.Enabled[diag.RuleCode(code)] = true
			}
			for _, code := range disable {
				cfg.Disabled[diag.RuleCode(code)] = true
			}

			reg := rules.DefaultRegistry()
			if err := cfg.ValidateAgainst(reg); err != nil {
				return err
			}

			result, err := rules.Lint(a, cfg, reg)
			if err != nil {
				return fmt.Errorf("shellpure: lint: %w", err)
			}

			return printDiagnostics(cmd.OutOrStdout(), result.Diagnostics, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "path to script, or - for stdin")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, sarif")
	cmd.Flags().StringVar(&dialect, "dialect", "posix", "shell dialect: posix, bash, dash, ash")
	cmd.Flags().StringSliceVar(&enable, "enable", nil, "rule codes to enable (allowlist if set)")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "rule codes to disable")
	cmd.Flags().StringVar(&minRules, "min-rule-set-version", "", "minimum required rule-set semver")
	return cmd
}

func printDiagnostics(w interface{ Write([]byte) (int, error) }, diagnostics []diag.Diagnostic, format string) error {
	switch format {
	case "text":
		var b strings.Builder
		for _, d := range diagnostics {
			fmt.Fprintf(&b, "%d:%d: %s [%s] %s\n",
				d.Span.Start.Line, d.Span.Start.Col, d.Severity, d.Code, d.Message)
		}
		_, err := w.Write([]byte(b.String()))
		return err
	case "json":
		data, err := wire.Encode(diagnostics)
		if err != nil {
			return fmt.Errorf("shellpure: encoding diagnostics: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "sarif":
		log := wire.ToSARIF("shellpure", diagnostics)
		data, err := json.MarshalIndent(log, "", "  ")
		if err != nil {
			return fmt.Errorf("shellpure: encoding sarif: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("shellpure: unknown format %q (want text, json, or sarif)", format)
	}
}
