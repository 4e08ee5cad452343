package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/ledger"
	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/progress"
)

var (
	configValidate bool
	configFormat   string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or validate agentkit configuration",
	Long: `Display the effective configuration after merging defaults, the config
file and AGENTKIT_* environment variables.

Examples:
    agentctl config                     # Show current config
    agentctl config --validate          # Check config and state file
    agentctl config --format yaml       # Output as YAML`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configValidate, "validate", false, "validate configuration and check paths")
	configCmd.Flags().StringVar(&configFormat, "format", "terminal", "output format: terminal, yaml, json")

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configValidate {
		return validateConfig(cmd, proj.cfg)
	}

	w := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		return displayConfigJSON(w, proj.cfg)
	case "yaml":
		return displayConfigYAML(w, proj.cfg)
	case "terminal", "":
		displayConfigTerminal(w, proj.cfg)
		return nil
	default:
		return NewExitError(1, fmt.Sprintf("unknown format %q (available: terminal, yaml, json)", configFormat))
	}
}

func validateConfig(cmd *cobra.Command, cfg *config.Config) error {
	w := cmd.OutOrStdout()
	width := 70
	fprintln(w, output.Header("Configuration Validation", width))
	fprintln(w)

	pass := output.Color("[PASS]", output.Green)
	var errs, warnings []string

	if cfg.Source == "" {
		warnings = append(warnings, "Config file not found (using defaults)")
	} else {
		fprintf(w, "  %s Config file: %s\n", pass, proj.relative(cfg.Source))
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err.Error())
	} else {
		fprintf(w, "  %s Phases: %s\n", pass, strings.Join(cfg.PhaseTable().Labels(), ", "))
	}

	stateFile := proj.layout.StateFile
	if !proj.fs.Exists(stateFile) {
		warnings = append(warnings, fmt.Sprintf("State file not found: %s (run agentctl init)", proj.relative(stateFile)))
	} else if data, err := proj.fs.ReadFile(stateFile); err != nil {
		errs = append(errs, err.Error())
	} else if _, err := progress.Parse(data); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", proj.relative(stateFile), err))
	} else {
		fprintf(w, "  %s State file: %s\n", pass, proj.relative(stateFile))
	}

	if !proj.fs.IsDir(proj.layout.HistoryDir) {
		warnings = append(warnings, fmt.Sprintf("History directory not found: %s", proj.relative(proj.layout.HistoryDir)))
	} else {
		fprintf(w, "  %s History dir: %s\n", pass, proj.relative(proj.layout.HistoryDir))
	}

	if proj.cfg.Agentkit.Ledger.Enabled {
		if msg, ok := checkLedger(cmd); ok {
			fprintf(w, "  %s Ledger: %s\n", pass, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	fprintln(w)
	for _, e := range errs {
		fprintf(w, "  %s %s\n", output.Color("[FAIL]", output.Red), e)
	}
	for _, warn := range warnings {
		fprintf(w, "  %s %s\n", output.Color("[WARN]", output.Yellow), warn)
	}
	fprintln(w)

	switch {
	case len(errs) > 0:
		fprintf(w, "Status: %s\n", output.Color("INVALID", output.Red))
		return NewExitError(1, "configuration validation failed")
	case len(warnings) > 0:
		fprintf(w, "Status: %s\n", output.Color("VALID (with warnings)", output.Yellow))
	default:
		fprintf(w, "Status: %s\n", output.Color("VALID", output.Green))
	}
	return nil
}

// checkLedger reports the newest snapshot. Ledger problems are warnings
// because the ledger never feeds back into the progress document.
func checkLedger(cmd *cobra.Command) (string, bool) {
	l, err := proj.openLedger()
	if err != nil {
		return fmt.Sprintf("Ledger unavailable: %v", err), false
	}
	defer l.Close()

	latest, err := l.Latest(cmd.Context())
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return "Ledger has no snapshots yet", false
	case err != nil:
		return fmt.Sprintf("Ledger unreadable: %v", err), false
	}
	return fmt.Sprintf("%s (latest snapshot %s, %.1f%%)", proj.relative(proj.layout.LedgerFile),
		latest.RecordedAt.Local().Format("2006-01-02 15:04"), latest.Overall), true
}

// displayConfigJSON goes through yaml so the keys match the config file.
func displayConfigJSON(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fprintf(w, "%s\n", out)
	return nil
}

func displayConfigYAML(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fprintf(w, "%s", data)
	return nil
}

func displayConfigTerminal(w io.Writer, cfg *config.Config) {
	width := 70
	a := cfg.Agentkit
	fprintln(w, output.Header("agentkit Configuration", width))
	fprintln(w)

	source := "(defaults)"
	if cfg.Source != "" {
		source = cfg.Source
	}

	fprintln(w, "Project:")
	fprintf(w, "  Root:         %s\n", proj.root)
	fprintf(w, "  Name:         %s\n", cfg.ProjectName(proj.root))
	fprintf(w, "  Config file:  %s\n", source)
	fprintln(w)

	fprintln(w, "Paths:")
	fprintf(w, "  State file:   %s\n", a.Paths.StateFile)
	fprintf(w, "  State notes:  %s\n", a.Paths.StateNotes)
	fprintf(w, "  Blockers:     %s\n", a.Paths.BlockersFile)
	fprintf(w, "  Metrics:      %s\n", a.Paths.MetricsFile)
	fprintf(w, "  History dir:  %s\n", a.Paths.HistoryDir)
	fprintf(w, "  Docs dir:     %s\n", a.Paths.DocsDir)
	fprintf(w, "  Ledger:       %s\n", a.Paths.LedgerFile)
	fprintln(w)

	fprintln(w, "Phases:")
	for _, bp := range a.Phases.Breakpoints {
		fprintf(w, "  < %5.1f  %s\n", bp.Below, bp.Label)
	}
	fprintf(w, "  else     %s\n", a.Phases.Final)
	fprintln(w)

	fprintln(w, "Validation:")
	skip := "(none)"
	if len(a.Validation.Skip) > 0 {
		skip = strings.Join(a.Validation.Skip, ", ")
	}
	fprintf(w, "  Package manager: %s (%s)\n", a.Validation.PackageManager, a.Validation.Lockfile)
	fprintf(w, "  Rules:           %s/%s (min %d)\n", a.Validation.RulesDir, a.Validation.RulesPattern, a.Validation.MinRules)
	fprintf(w, "  Skipped:         %s\n", skip)
	fprintln(w)

	fprintln(w, "Ledger:")
	fprintf(w, "  Enabled: %v\n", a.Ledger.Enabled)
	fprintln(w)

	fprintln(w, "Logging:")
	fprintf(w, "  Level: %s\n", a.Log.Level)
}
