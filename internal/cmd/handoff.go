package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/report"
)

var handoffNotesFile string

var handoffCmd = &cobra.Command{
	Use:   "handoff [notes...]",
	Short: "Generate a session handoff report",
	Long: `Generate a handoff report for the next session.

Each positional argument becomes one line of the session notes. Lines starting
with ✅ are listed as completed work and lines starting with 🔄 as work
in progress. The report is written to the handoff history and copied to
latest-handoff.md.

Examples:
    agentctl handoff
    agentctl handoff "✅ Finished importer" "🔄 Tuning the cache"
    agentctl handoff --notes-file session.md`,
	RunE: runHandoff,
}

func init() {
	handoffCmd.Flags().StringVar(&handoffNotesFile, "notes-file", "", "read session notes from a file")

	rootCmd.AddCommand(handoffCmd)
}

func sessionNotes(args []string, notesFile string) (string, error) {
	notes := strings.Join(args, "\n")
	if notesFile == "" {
		return notes, nil
	}
	data, err := os.ReadFile(notesFile)
	if err != nil {
		return "", fmt.Errorf("failed to read notes file: %w", err)
	}
	if notes == "" {
		return string(data), nil
	}
	return notes + "\n" + string(data), nil
}

func runHandoff(cmd *cobra.Command, args []string) error {
	notes, err := sessionNotes(args, handoffNotesFile)
	if err != nil {
		return err
	}

	state, err := proj.store().Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rc := proj.reportContext(ctx, state, notes)
	content, err := report.Render(report.KindHandoff, state, rc)
	if err != nil {
		return err
	}

	path, err := proj.writeReport(ctx, report.KindHandoff, rc, proj.layout.HandoffDir, "handoff", content, proj.layout.LatestHandoff)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fprintf(w, "%s Handoff report generated: %s\n", output.Checkmark(true), proj.relative(path))
	fprintf(w, "  Latest: %s\n", proj.relative(proj.layout.LatestHandoff))
	fprintf(w, "  Session: %s\n", rc.SessionID)
	return nil
}
