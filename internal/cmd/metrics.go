package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/report"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Generate the metrics dashboard",
	Long: `Generate the metrics dashboard: component progress bars, task counts,
file statistics, health indicators, the snapshot trend and
recommendations. The dashboard is written to the metrics history and to
.agent/current/metrics.md.`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	state, err := proj.store().Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rc := proj.reportContext(ctx, state, "")
	content, err := report.Render(report.KindDashboard, state, rc)
	if err != nil {
		return err
	}

	path, err := proj.writeReport(ctx, report.KindDashboard, rc, proj.layout.MetricsHistoryDir, "metrics", content, proj.layout.MetricsFile)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fprintf(w, "%s Metrics dashboard generated: %s\n", output.Checkmark(true), proj.relative(proj.layout.MetricsFile))
	fprintf(w, "  History: %s\n", proj.relative(path))
	fprintf(w, "  Overall completion: %s (%s)\n", output.FormatPercent(state.Metrics.OverallCompletion), state.Metrics.Phase)
	return nil
}
