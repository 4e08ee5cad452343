package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/ledger"
	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded progress snapshots",
	Long: `List the snapshots recorded in the ledger, newest first. A snapshot is
recorded after every successful change to the progress document.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of snapshots")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	l, err := proj.openLedger()
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	if l == nil {
		fprintln(w, "Snapshot ledger is disabled (ledger.enabled: false).")
		return nil
	}
	defer l.Close()

	snaps, err := l.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fprintln(w, "No history recorded yet.")
		return nil
	}

	displayHistory(cmd, snaps)

	var counts []string
	for _, kind := range report.Kinds() {
		n, err := l.CountReports(cmd.Context(), string(kind))
		if err != nil {
			return err
		}
		counts = append(counts, fmt.Sprintf("%s %d", kind, n))
	}
	fprintf(w, "Reports recorded: %s\n", strings.Join(counts, ", "))
	return nil
}

func displayHistory(cmd *cobra.Command, snaps []ledger.Snapshot) {
	w := cmd.OutOrStdout()
	t := output.NewTable("Recorded", "Overall", "Phase", "Health", "Tasks", "Reason")
	for _, s := range snaps {
		t.AddRow(
			s.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.1f%%", s.Overall),
			s.Phase,
			s.Health,
			fmt.Sprintf("%d/%d/%d", s.Completed, s.InProgress, s.Pending),
			output.Truncate(s.Reason, 40),
		)
	}
	t.AlignRight(2)
	_, _ = t.WriteTo(w)
	fprintf(w, "%d snapshot(s); tasks are completed/in progress/pending\n", t.Len())
}
