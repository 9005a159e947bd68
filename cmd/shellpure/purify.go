package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/emit"
	"github.com/aledsdavies/shellpure/internal/ir"
	"github.com/aledsdavies/shellpure/internal/optimize"
	"github.com/aledsdavies/shellpure/internal/parser"
	"github.com/aledsdavies/shellpure/internal/purify"
)

func newPurifyCmd() *cobra.Command {
	var (
		file           string
		sessionBinding string
		showDiagnostic bool
		noOptimize     bool
	)

	cmd := &cobra.Command{
		Use:   "purify",
		Short: "Run the purification passes over a shell script and emit the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(file)
			if err != nil {
				return err
			}
			a, err := parser.Parse(source)
			if err != nil {
				return fmt.Errorf("shellpure: parse: %w", err)
			}

			purified, diagnostics, err := purify.Purify(a, purify.Config{SessionBinding: sessionBinding})
			if err != nil {
				return fmt.Errorf("shellpure: purify: %w", err)
			}

			prog := ir.Lower(purified)
			prog = optimize.Fold(prog, optimize.Config{Disabled: noOptimize})
			folded := &ast.Ast{Statements: ir.Raise(prog), Meta: purified.Meta}

			out := cmd.OutOrStdout()
			if _, err := out.Write([]byte(emit.Emit(folded))); err != nil {
				return err
			}

			if showDiagnostic && len(diagnostics) > 0 {
				return printDiagnostics(cmd.ErrOrStderr(), diagnostics, "text")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "path to script, or - for stdin")
	cmd.Flags().StringVar(&sessionBinding, "session-binding", purify.DefaultSessionBinding, "literal bound to the reserved session variable")
	cmd.Flags().BoolVar(&showDiagnostic, "show-manual-fixes", false, "also print Manual-safety diagnostics produced by purification, on stderr")
	cmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "skip constant folding over IR arithmetic")
	return cmd
}
