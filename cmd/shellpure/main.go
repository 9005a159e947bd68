// Command shellpure is a thin demonstration front end over the core
// parse/lint/purify/emit/classify API, grounded on the teacher's single
// rootCmd-plus-subcommands cobra wiring in cli/main.go: flags bind
// straight to local variables, RunE does the work, errors are wrapped
// and returned rather than printed inline. The root command silences
// cobra's own error printing; main prints the returned error to stderr
// and exits with status 1.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
