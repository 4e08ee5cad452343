// Package cmd provides the CLI commands for agentctl.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/output"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
	// Commit is set at build time via ldflags.
	Commit = "none"
	// Date is set at build time via ldflags.
	Date = "unknown"
)

var (
	rootDir  string
	cfgFile  string
	noColor  bool
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Progress tracking and session reports for agent-driven projects",
	Long: `agentctl keeps a machine-readable progress document for a project and
turns it into human-readable session reports.

It tracks per-component completion scores and task lists, derives the
overall completion and phase, writes handoff reports and metrics
dashboards, and validates the project layout against the expected
agent workflow setup.

State lives under .agent/ in the project root.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root (default: nearest directory with .agent/ or a config file)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .agent/config.yaml or agentkit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	rootCmd.AddCommand(versionCmd)
}

// setup resolves the project and configures logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		output.DisableColor()
	} else {
		output.EnableColor()
	}

	root, err := resolveRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = cfg.Agentkit.Log.Level
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
	slog.SetDefault(logger)

	proj = newProject(root, cfg)
	slog.Debug("project resolved",
		"root", root,
		"config", cfg.Source,
		"state", proj.layout.StateFile,
	)
	return nil
}

func resolveRoot() (string, error) {
	if rootDir != "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project root: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.FindProjectRoot(cwd), nil
}

func loadConfig(root string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromDir(root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
