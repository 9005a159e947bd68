package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/shellpure/internal/classify"
	"github.com/aledsdavies/shellpure/internal/parser"
	"github.com/aledsdavies/shellpure/internal/rules"
)

func newClassifyCmd() *cobra.Command {
	var (
		file       string
		multiLabel bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Lint a shell script and report its overall safety classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(file)
			if err != nil {
				return err
			}
			a, err := parser.Parse(source)
			if err != nil {
				return fmt.Errorf("shellpure: parse: %w", err)
			}

			reg := rules.DefaultRegistry()
			result, err := rules.Lint(a, rules.NewLintConfig(), reg)
			if err != nil {
				return fmt.Errorf("shellpure: lint: %w", err)
			}

			out := cmd.OutOrStdout()
			if multiLabel {
				labels := classify.ClassifyMultiLabel(result.Diagnostics)
				for _, c := range []classify.SafetyClass{
					classify.Safe, classify.NeedsQuoting, classify.NonDeterministic,
					classify.NonIdempotent, classify.Unsafe,
				} {
					if labels.Has(c) {
						fmt.Fprintln(out, c)
					}
				}
				return nil
			}

			verdict := classify.Classify(result.Diagnostics)
			fmt.Fprintf(out, "%s (confidence %.2f)\n", verdict.Class, verdict.Confidence)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "path to script, or - for stdin")
	cmd.Flags().BoolVar(&multiLabel, "multi-label", false, "report every contributing safety class instead of only the worst")
	return cmd
}
