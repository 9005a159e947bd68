package main

import (
	"fmt"
	"io"
	"os"
)

// readSource reads script source from path, or from stdin when path is
// "-", mirroring the teacher's getInputReader convention in cli/main.go.
func readSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("shellpure: reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shellpure: reading %s: %w", path, err)
	}
	return data, nil
}
