package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/shellpure/internal/parser"
	"github.com/aledsdavies/shellpure/internal/rules"
)

func newWatchCmd() *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run lint every time a script file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "-" {
				return fmt.Errorf("shellpure: watch requires a real file, not stdin")
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("shellpure: creating watcher: %w", err)
			}
			defer watcher.Close()

			dir := filepath.Dir(file)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("shellpure: watching %s: %w", dir, err)
			}

			ctx, cancel := newCancellableContext()
			defer cancel()

			reg := rules.DefaultRegistry()
			runOnce := func() error {
				source, err := readSource(file)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return nil
				}
				a, err := parser.Parse(source)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "shellpure: parse: %v\n", err)
					return nil
				}
				result, err := rules.Lint(a, rules.NewLintConfig(), reg)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "shellpure: lint: %v\n", err)
					return nil
				}
				return printDiagnostics(cmd.OutOrStdout(), result.Diagnostics, format)
			}

			if err := runOnce(); err != nil {
				return err
			}

			absFile, err := filepath.Abs(file)
			if err != nil {
				return fmt.Errorf("shellpure: resolving %s: %w", file, err)
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					eventPath, err := filepath.Abs(event.Name)
					if err != nil || eventPath != absFile {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					if err := runOnce(); err != nil {
						return err
					}
				case watchErr, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "shellpure: watch error: %v\n", watchErr)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to script to watch (required)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, sarif")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newCancellableContext cancels on SIGINT/SIGTERM, mirroring the
// teacher's main.go helper of the same name.
func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}
