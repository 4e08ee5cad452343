package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/progress"
)

var (
	progressJSON bool
	blockerClear bool
	scanDryRun   bool
)

const progressUsage = `Usage:
  agentctl progress [show]                                 Show current progress
  agentctl progress update <category> <component> <value>  Set a component score (0-100)
  agentctl progress task <name> [status]                   Add or move a task (completed, in_progress, pending)
  agentctl progress phase <name>                           Override the current phase
  agentctl progress health <value>                         Record project health
  agentctl progress blocker <text>                         Record a blocker (--clear removes all)
  agentctl progress scan [--dry-run]                       Score components from configured scan rules
  agentctl progress --json                                 Print the progress document
`

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or update the progress document",
	Long: `Show or update the progress document (.agent/current/progress.json).

Component updates recompute the overall completion and the phase. Every
successful change is saved and recorded in the snapshot ledger. The
document is created from the configured scaffold the first time it is
read.

Examples:
    agentctl progress
    agentctl progress update frontend editor 85
    agentctl progress task "Write migration guide" in_progress
    agentctl progress phase integration
    agentctl progress blocker "Waiting on API keys"
    agentctl progress scan
    agentctl progress --json`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return printProgressUsage(cmd)
		}
		return runProgressShow(cmd, args)
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current progress",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressShow,
}

var progressUpdateCmd = &cobra.Command{
	Use:   "update <category> <component> <value>",
	Short: "Set a component score",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressUpdate,
}

var progressTaskCmd = &cobra.Command{
	Use:   "task <name> [status]",
	Short: "Add a task or move it to another bucket",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressTask,
}

var progressPhaseCmd = &cobra.Command{
	Use:   "phase <name>",
	Short: "Override the current phase",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressPhase,
}

var progressHealthCmd = &cobra.Command{
	Use:   "health <value>",
	Short: "Record project health",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressHealth,
}

var progressBlockerCmd = &cobra.Command{
	Use:   "blocker <text>",
	Short: "Record a blocker, or clear all with --clear",
	Args:  cobra.ArbitraryArgs,
	RunE:  runProgressBlocker,
}

var progressScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score components from the files present in the project",
	Long: `Score components from the scan rules in the configuration
(agentkit.scan.rules). Each rule names a category.component and a list of
paths; the score is the share of paths that exist, as a whole percentage.
Glob patterns count as present when they match at least one file.

Example rule:
    agentkit:
      scan:
        rules:
          - category: infrastructure
            component: ci_cd_pipeline
            paths: [.github/workflows/ci.yml, .pre-commit-config.yaml]`,
	Args: cobra.ArbitraryArgs,
	RunE: runProgressScan,
}

func init() {
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "print the progress document as JSON")
	progressShowCmd.Flags().BoolVar(&progressJSON, "json", false, "print the progress document as JSON")
	progressBlockerCmd.Flags().BoolVar(&blockerClear, "clear", false, "remove every blocker")
	progressScanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "show the derived scores without saving")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressUpdateCmd)
	progressCmd.AddCommand(progressTaskCmd)
	progressCmd.AddCommand(progressPhaseCmd)
	progressCmd.AddCommand(progressHealthCmd)
	progressCmd.AddCommand(progressBlockerCmd)
	progressCmd.AddCommand(progressScanCmd)

	rootCmd.AddCommand(progressCmd)
}

// printProgressUsage handles malformed sub-operations: usage goes to stdout
// and the command succeeds.
func printProgressUsage(cmd *cobra.Command) error {
	fprintf(cmd.OutOrStdout(), "%s", progressUsage)
	return nil
}

// mutate loads the document, applies fn and saves it when fn succeeds.
// A failing fn leaves the file untouched.
func mutate(cmd *cobra.Command, reason string, fn func(*progress.Tracker, *progress.State) error) (*progress.State, error) {
	store := proj.store()
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(proj.tracker(), state); err != nil {
		return nil, err
	}
	if err := proj.save(cmd.Context(), store, state, reason); err != nil {
		return nil, err
	}
	return state, nil
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return printProgressUsage(cmd)
	}

	store := proj.store()
	state, err := store.Load()
	if err != nil {
		return err
	}
	if store.Created() {
		if err := proj.save(cmd.Context(), store, state, "scaffold"); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if progressJSON {
		data, err := progress.Marshal(state)
		if err != nil {
			return err
		}
		fprintf(w, "%s", data)
		return nil
	}
	displayProgress(w, state, proj.projectName(state))
	return nil
}

func displayProgress(w io.Writer, state *progress.State, project string) {
	width := 70
	m := state.Metrics

	fprintln(w, output.Header("Progress: "+project, width))
	fprintln(w)
	fprintf(w, "Overall Completion: %s  %s\n", output.ProgressBar(m.OverallCompletion, 30), output.FormatPercent(m.OverallCompletion))
	fprintf(w, "Current Phase:      %s\n", m.Phase)
	fprintf(w, "Health Status:      %s\n", output.Color(m.Health, output.StatusColor(m.Health)))
	fprintf(w, "Last Updated:       %s\n", state.Metadata.LastUpdated)
	fprintln(w)

	t := output.NewTable("Category", "Component", "Progress", "Score")
	for _, category := range state.Components.Categories() {
		for _, name := range state.Components.Names(category) {
			score := state.Components[category][name]
			t.AddRow(
				output.Humanize(category),
				output.Humanize(name),
				output.ProgressBar(float64(score), 20),
				fmt.Sprintf("%d%%", score),
			)
		}
	}
	t.AlignRight(4)
	_, _ = t.WriteTo(w)
	fprintln(w)

	fprintln(w, output.SubHeader("Tasks", width))
	for _, bucket := range progress.AllBuckets() {
		tasks := state.Tasks.In(bucket)
		fprintf(w, "%s (%d)\n", bucket.Title(), len(tasks))
		for _, task := range tasks {
			fprintf(w, "  %s %s\n", output.StatusIcon(bucket.String()), output.Truncate(task, width-4))
		}
	}

	if len(m.Blockers) > 0 {
		fprintln(w)
		fprintln(w, output.SubHeader("Blockers", width))
		for _, b := range m.Blockers {
			fprintf(w, "  %s %s\n", output.Color("!", output.Red), b)
		}
	}
}

func runProgressUpdate(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return printProgressUsage(cmd)
	}
	category, component := args[0], args[1]
	value, err := strconv.Atoi(strings.TrimSpace(args[2]))
	if err != nil {
		return NewExitError(1, fmt.Sprintf("progress value must be an integer, got %q", args[2]))
	}

	var change progress.Change
	_, err = mutate(cmd, "update "+category+"."+component, func(tr *progress.Tracker, s *progress.State) error {
		var err error
		change, err = tr.UpdateComponent(s, category, component, value)
		return err
	})
	if err != nil {
		return inputFailure(err)
	}

	w := cmd.OutOrStdout()
	fprintf(w, "%s Updated %s.%s: %d%% -> %d%%\n",
		output.Checkmark(true), change.Category, change.Component, change.OldValue, change.NewValue)
	fprintf(w, "Overall completion: %.1f%% -> %.1f%%\n", change.OldOverall, change.NewOverall)
	if change.OldPhase != change.NewPhase {
		fprintf(w, "Phase: %s -> %s\n", change.OldPhase, change.NewPhase)
	}
	return nil
}

func runProgressTask(cmd *cobra.Command, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return printProgressUsage(cmd)
	}
	name, status := args[0], string(progress.BucketPending)
	if len(args) == 2 {
		status = args[1]
	}

	var result progress.TaskResult
	_, err := mutate(cmd, "task", func(tr *progress.Tracker, s *progress.State) error {
		var err error
		result, err = tr.AddTask(s, name, status)
		return err
	})
	if err != nil {
		return inputFailure(err)
	}
	fprintf(cmd.OutOrStdout(), "%s %s\n", output.StatusIcon(result.Bucket.String()), result)
	return nil
}

func runProgressPhase(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return printProgressUsage(cmd)
	}

	var old string
	_, err := mutate(cmd, "phase", func(tr *progress.Tracker, s *progress.State) error {
		var err error
		old, err = tr.SetPhase(s, strings.TrimSpace(args[0]))
		return err
	})
	if err != nil {
		return inputFailure(err)
	}
	fprintf(cmd.OutOrStdout(), "Phase set to %s (was %s)\n", strings.TrimSpace(args[0]), old)
	return nil
}

func runProgressHealth(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return printProgressUsage(cmd)
	}
	health := strings.TrimSpace(args[0])

	var old string
	_, err := mutate(cmd, "health", func(tr *progress.Tracker, s *progress.State) error {
		var err error
		old, err = tr.SetHealth(s, health)
		return err
	})
	if err != nil {
		return inputFailure(err)
	}
	fprintf(cmd.OutOrStdout(), "Health set to %s (was %s)\n", output.Color(health, output.StatusColor(health)), old)
	return nil
}

func runProgressBlocker(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if blockerClear {
		if len(args) > 0 {
			return printProgressUsage(cmd)
		}
		var removed int
		_, err := mutate(cmd, "blockers cleared", func(tr *progress.Tracker, s *progress.State) error {
			removed = tr.ClearBlockers(s)
			return nil
		})
		if err != nil {
			return err
		}
		fprintf(w, "Cleared %d blocker(s)\n", removed)
		return nil
	}

	if len(args) == 0 {
		return printProgressUsage(cmd)
	}
	text := strings.TrimSpace(strings.Join(args, " "))

	var added bool
	_, err := mutate(cmd, "blocker", func(tr *progress.Tracker, s *progress.State) error {
		var err error
		added, err = tr.AddBlocker(s, text)
		return err
	})
	if err != nil {
		return inputFailure(err)
	}
	if added {
		fprintf(w, "Added blocker: %s\n", text)
	} else {
		fprintf(w, "Blocker already recorded: %s\n", text)
	}
	return nil
}

func runProgressScan(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return printProgressUsage(cmd)
	}
	w := cmd.OutOrStdout()

	rules := proj.cfg.ScanRules()
	if len(rules) == 0 {
		fprintln(w, "No scan rules configured (agentkit.scan.rules).")
		return nil
	}
	results := progress.EvaluateScan(proj.fs, proj.root, rules)

	store := proj.store()
	state, err := store.Load()
	if err != nil {
		return err
	}
	oldOverall, oldPhase := state.Metrics.OverallCompletion, state.Metrics.Phase

	changes, err := proj.tracker().ApplyScan(state, results)
	if err != nil {
		return inputFailure(err)
	}
	if !scanDryRun {
		if err := proj.save(cmd.Context(), store, state, "scan"); err != nil {
			return err
		}
	}

	for i, res := range results {
		change := changes[i]
		total := len(res.Present) + len(res.Missing)
		fprintf(w, "%s %s: %d/%d paths -> %d%% (was %d%%)\n",
			output.Checkmark(len(res.Missing) == 0), res.Rule.Key(), len(res.Present), total, change.NewValue, change.OldValue)
		if len(res.Missing) > 0 {
			fprintf(w, "    missing: %s\n", strings.Join(res.Missing, ", "))
		}
	}
	fprintf(w, "Overall completion: %.1f%% -> %.1f%%\n", oldOverall, state.Metrics.OverallCompletion)
	if oldPhase != state.Metrics.Phase {
		fprintf(w, "Phase: %s -> %s\n", oldPhase, state.Metrics.Phase)
	}
	if scanDryRun {
		fprintln(w, "Dry run: progress document not modified.")
	}
	return nil
}

// inputFailure maps rejected mutations to exit status 1 with a one-line
// diagnostic. Other errors pass through unchanged.
func inputFailure(err error) error {
	if errors.Is(err, progress.ErrValidationInput) {
		return NewExitError(1, err.Error())
	}
	return err
}
