package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shellpure",
		Short:         "Parse, lint, purify, and classify shell scripts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newLintCmd())
	root.AddCommand(newPurifyCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newWatchCmd())
	return root
}
