package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/output"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .agent structure in a project",
	Long: `Initialize the agent workflow structure.

Creates:
  .agent/
  ├── config.yaml          # Configuration
  ├── current/
  │   └── progress.json    # Progress document (from the scaffold)
  └── history/
      ├── handoffs/
      ├── metrics/
      └── validation/

Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite the existing config and progress document")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	created := output.Color("✓", output.Green)
	kept := output.Color("-", output.Dim)

	fprintf(w, "Initializing agent workflow in %s\n\n", proj.root)

	for _, dir := range proj.layout.Dirs() {
		if proj.fs.IsDir(dir) {
			continue
		}
		if err := proj.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
		fprintf(w, "  %s Created %s/\n", created, proj.relative(dir))
	}

	configPath := filepath.Join(proj.root, config.Candidates[0])
	if proj.fs.Exists(configPath) && !initForce {
		fprintf(w, "  %s Kept %s\n", kept, proj.relative(configPath))
	} else {
		// Defaults only; AGENTKIT_* overrides belong to this invocation.
		fresh := config.DefaultConfig()
		fresh.Agentkit.Project = filepath.Base(proj.root)
		if err := fresh.Save(configPath); err != nil {
			return err
		}
		fprintf(w, "  %s Wrote %s\n", created, proj.relative(configPath))
	}

	store := proj.store()
	if proj.fs.Exists(proj.layout.StateFile) && !initForce {
		fprintf(w, "  %s Kept %s\n", kept, proj.relative(proj.layout.StateFile))
	} else {
		state := proj.cfg.ScaffoldFor(proj.root).Build(proj.tracker(), newStateID(), now())
		if err := proj.save(cmd.Context(), store, state, "init"); err != nil {
			return err
		}
		fprintf(w, "  %s Wrote %s (%.1f%%, %s)\n", created, proj.relative(proj.layout.StateFile),
			state.Metrics.OverallCompletion, state.Metrics.Phase)
	}

	fprintln(w)
	fprintln(w, "Next steps:")
	fprintln(w, "  agentctl progress                 # review the scaffolded components")
	fprintln(w, "  agentctl progress update ...      # record progress")
	fprintln(w, "  agentctl handoff                  # write a handoff at the end of a session")
	return nil
}
