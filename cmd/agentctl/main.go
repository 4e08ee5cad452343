// Package main provides the entry point for the agentctl CLI.
package main

import (
	"errors"
	"os"

	"github.com/rtmx-ai/agentkit/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				os.Stderr.WriteString("Error: " + exitErr.Message + "\n")
			}
			os.Exit(exitErr.Code)
		}
		// SilenceErrors suppresses cobra's own report.
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
