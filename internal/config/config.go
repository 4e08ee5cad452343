// Package config provides configuration management for agentkit.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rtmx-ai/agentkit/internal/progress"
	"github.com/rtmx-ai/agentkit/internal/validate"
	"github.com/rtmx-ai/agentkit/internal/workspace"
)

// ErrNoConfig is returned by FindConfig when no candidate file exists.
var ErrNoConfig = errors.New("no agentkit configuration found")

// Candidates are the config file locations checked in each directory,
// in order.
var Candidates = []string{
	".agent/config.yaml",
	"agentkit.yaml",
	"agentkit.yml",
}

// Config represents the agentkit configuration.
type Config struct {
	Agentkit AgentkitConfig `yaml:"agentkit" mapstructure:"agentkit"`

	// Source is the file the configuration was loaded from, empty for defaults.
	Source string `yaml:"-" mapstructure:"-"`
}

// AgentkitConfig contains the main agentkit settings.
type AgentkitConfig struct {
	// Project is the display name used in reports and new state documents.
	Project string `yaml:"project" mapstructure:"project"`

	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Phases     PhasesConfig     `yaml:"phases" mapstructure:"phases"`
	Scaffold   ScaffoldConfig   `yaml:"scaffold" mapstructure:"scaffold"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Ledger     LedgerConfig     `yaml:"ledger" mapstructure:"ledger"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PathsConfig holds file locations relative to the project root.
type PathsConfig struct {
	StateFile    string `yaml:"state_file" mapstructure:"state_file"`
	StateNotes   string `yaml:"state_notes" mapstructure:"state_notes"`
	BlockersFile string `yaml:"blockers_file" mapstructure:"blockers_file"`
	MetricsFile  string `yaml:"metrics_file" mapstructure:"metrics_file"`
	HistoryDir   string `yaml:"history_dir" mapstructure:"history_dir"`
	DocsDir      string `yaml:"docs_dir" mapstructure:"docs_dir"`
	LedgerFile   string `yaml:"ledger_file" mapstructure:"ledger_file"`
}

// PhasesConfig maps overall completion to phase labels.
type PhasesConfig struct {
	Breakpoints []PhaseBreakpoint `yaml:"breakpoints" mapstructure:"breakpoints"`
	Final       string            `yaml:"final" mapstructure:"final"`
}

// PhaseBreakpoint labels every overall value strictly below Below.
type PhaseBreakpoint struct {
	Below float64 `yaml:"below" mapstructure:"below"`
	Label string  `yaml:"label" mapstructure:"label"`
}

// ScaffoldConfig overrides the document created when no state file exists.
// An empty component table keeps the built-in scaffold.
type ScaffoldConfig struct {
	Health     string                    `yaml:"health" mapstructure:"health"`
	Components map[string]map[string]int `yaml:"components" mapstructure:"components"`
	Tasks      TasksConfig               `yaml:"tasks" mapstructure:"tasks"`
	Metadata   map[string]string         `yaml:"metadata" mapstructure:"metadata"`
}

// TasksConfig lists the initial task buckets of a scaffolded document.
type TasksConfig struct {
	Completed  []string `yaml:"completed" mapstructure:"completed"`
	InProgress []string `yaml:"in_progress" mapstructure:"in_progress"`
	Pending    []string `yaml:"pending" mapstructure:"pending"`
}

// ValidationConfig configures the validator battery.
type ValidationConfig struct {
	Skip               []string `yaml:"skip" mapstructure:"skip"`
	PackageManager     string   `yaml:"package_manager" mapstructure:"package_manager"`
	Lockfile           string   `yaml:"lockfile" mapstructure:"lockfile"`
	ForbiddenLockfiles []string `yaml:"forbidden_lockfiles" mapstructure:"forbidden_lockfiles"`
	RulesDir           string   `yaml:"rules_dir" mapstructure:"rules_dir"`
	RulesPattern       string   `yaml:"rules_pattern" mapstructure:"rules_pattern"`
	MinRules           int      `yaml:"min_rules" mapstructure:"min_rules"`
	Dependencies       []string `yaml:"dependencies" mapstructure:"dependencies"`
	Scripts            []string `yaml:"scripts" mapstructure:"scripts"`
	AgentDirs          []string `yaml:"agent_dirs" mapstructure:"agent_dirs"`
	AgentTools         []string `yaml:"agent_tools" mapstructure:"agent_tools"`
	DocSections        []string `yaml:"doc_sections" mapstructure:"doc_sections"`
	TestDirs           []string `yaml:"test_dirs" mapstructure:"test_dirs"`
	TestConfigs        []string `yaml:"test_configs" mapstructure:"test_configs"`
}

// ScanConfig lists the rules used by "progress scan".
type ScanConfig struct {
	Rules []ScanRuleConfig `yaml:"rules" mapstructure:"rules"`
}

// ScanRuleConfig scores category.component by the share of paths that
// exist. Paths are relative to the project root and may be globs.
type ScanRuleConfig struct {
	Category  string   `yaml:"category" mapstructure:"category"`
	Component string   `yaml:"component" mapstructure:"component"`
	Paths     []string `yaml:"paths" mapstructure:"paths"`
}

// LedgerConfig controls the snapshot ledger.
type LedgerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	phases := progress.DefaultPhases()
	breakpoints := make([]PhaseBreakpoint, len(phases.Breakpoints))
	for i, bp := range phases.Breakpoints {
		breakpoints[i] = PhaseBreakpoint{Below: bp.Below, Label: bp.Label}
	}
	opts := validate.DefaultOptions()

	return &Config{
		Agentkit: AgentkitConfig{
			Paths: PathsConfig{
				StateFile:    ".agent/current/progress.json",
				StateNotes:   ".agent/current/state.md",
				BlockersFile: ".agent/current/blockers.md",
				MetricsFile:  ".agent/current/metrics.md",
				HistoryDir:   ".agent/history",
				DocsDir:      "docs",
				LedgerFile:   ".agent/history/ledger.db",
			},
			Phases: PhasesConfig{
				Breakpoints: breakpoints,
				Final:       phases.Final,
			},
			Scaffold: ScaffoldConfig{
				Health:     "green",
				Components: map[string]map[string]int{},
				Metadata:   map[string]string{},
			},
			Validation: ValidationConfig{
				Skip:               []string{},
				PackageManager:     opts.PackageManager,
				Lockfile:           opts.Lockfile,
				ForbiddenLockfiles: opts.ForbiddenLockfiles,
				RulesDir:           opts.RulesDir,
				RulesPattern:       opts.RulesPattern,
				MinRules:           opts.MinRules,
				Dependencies:       opts.Dependencies,
				Scripts:            opts.Scripts,
				AgentDirs:          opts.AgentDirs,
				AgentTools:         opts.AgentTools,
				DocSections:        opts.DocSections,
				TestDirs:           opts.TestDirs,
				TestConfigs:        opts.TestConfigs,
			},
			Scan:   ScanConfig{Rules: []ScanRuleConfig{}},
			Ledger: LedgerConfig{Enabled: true},
			Log:    LogConfig{Level: "warn"},
		},
	}
}

// Load loads configuration from a file. Values missing from the file keep
// their defaults, and AGENTKIT_* environment variables override both
// (AGENTKIT_LOG_LEVEL, AGENTKIT_LEDGER_ENABLED, ...).
func Load(path string) (*Config, error) {
	return load(path)
}

// LoadDefaults returns the defaults with environment overrides applied.
func LoadDefaults() (*Config, error) {
	return load("")
}

func load(path string) (*Config, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Every key lives under "agentkit", so agentkit.log.level maps to
	// AGENTKIT_LOG_LEVEL without an extra prefix.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.Source = path

	if err := config.Validate(); err != nil {
		if path == "" {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

// Validate checks settings that would otherwise fail later in a command.
func (c *Config) Validate() error {
	if err := c.PhaseTable().Validate(); err != nil {
		return err
	}
	if c.Agentkit.Paths.StateFile == "" {
		return errors.New("paths.state_file must not be empty")
	}
	if c.Agentkit.Validation.MinRules < 0 {
		return errors.New("validation.min_rules must not be negative")
	}
	for category, items := range c.Agentkit.Scaffold.Components {
		for name, score := range items {
			if score < progress.MinScore || score > progress.MaxScore {
				return fmt.Errorf("scaffold %s.%s: score %d out of range", category, name, score)
			}
		}
	}
	for i, rule := range c.Agentkit.Scan.Rules {
		if rule.Category == "" || rule.Component == "" {
			return fmt.Errorf("scan.rules[%d]: category and component are required", i)
		}
		if len(rule.Paths) == 0 {
			return fmt.Errorf("scan.rules[%d] %s.%s: at least one path is required", i, rule.Category, rule.Component)
		}
	}
	return nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindConfig searches for a configuration file starting from the given path.
func FindConfig(startPath string) (string, error) {
	dir := startPath
	for {
		for _, candidate := range Candidates {
			path := filepath.Join(dir, candidate)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNoConfig
}

// FindProjectRoot returns the nearest ancestor of startPath holding a config
// file or an .agent directory, or startPath itself when there is none.
func FindProjectRoot(startPath string) string {
	dir := startPath
	for {
		for _, candidate := range Candidates {
			if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
				return dir
			}
		}
		if info, err := os.Stat(filepath.Join(dir, ".agent")); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startPath
		}
		dir = parent
	}
}

// LoadFromDir loads configuration from the given directory.
func LoadFromDir(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return LoadDefaults()
	}

	return Load(path)
}

// Layout resolves every configured path against root.
func (c *Config) Layout(root string) workspace.Layout {
	p := c.Agentkit.Paths
	return workspace.NewLayout(root, workspace.Paths{
		StateFile:    p.StateFile,
		StateNotes:   p.StateNotes,
		BlockersFile: p.BlockersFile,
		MetricsFile:  p.MetricsFile,
		HistoryDir:   p.HistoryDir,
		DocsDir:      p.DocsDir,
		LedgerFile:   p.LedgerFile,
	})
}

// PhaseTable returns the configured phase breakpoints.
func (c *Config) PhaseTable() progress.Phases {
	cfg := c.Agentkit.Phases
	phases := progress.Phases{Final: cfg.Final}
	for _, bp := range cfg.Breakpoints {
		phases.Breakpoints = append(phases.Breakpoints, progress.Breakpoint{Below: bp.Below, Label: bp.Label})
	}
	return phases
}

// ProjectName returns the configured project name, falling back to the
// base name of root.
func (c *Config) ProjectName(root string) string {
	if c.Agentkit.Project != "" {
		return c.Agentkit.Project
	}
	return filepath.Base(root)
}

// ScaffoldFor returns the scaffold for a new document under root.
func (c *Config) ScaffoldFor(root string) progress.Scaffold {
	cfg := c.Agentkit.Scaffold

	sc := progress.DefaultScaffold()
	if len(cfg.Components) > 0 {
		sc.Components = progress.Components(cfg.Components).Clone()
		sc.Tasks = progress.Tasks{
			Completed:  cfg.Tasks.Completed,
			InProgress: cfg.Tasks.InProgress,
			Pending:    cfg.Tasks.Pending,
		}
	}
	if cfg.Health != "" {
		sc.Health = cfg.Health
	}
	sc.Project = c.ProjectName(root)
	if len(cfg.Metadata) > 0 {
		sc.Extra = cfg.Metadata
	}
	return sc
}

// ScanRules returns the configured scan rules.
func (c *Config) ScanRules() []progress.ScanRule {
	rules := make([]progress.ScanRule, 0, len(c.Agentkit.Scan.Rules))
	for _, r := range c.Agentkit.Scan.Rules {
		rules = append(rules, progress.ScanRule{
			Category:  r.Category,
			Component: r.Component,
			Paths:     append([]string{}, r.Paths...),
		})
	}
	return rules
}

// ValidationOptions returns the validator settings with extra skips merged
// in (from --skip).
func (c *Config) ValidationOptions(layout workspace.Layout, skip ...string) validate.Options {
	v := c.Agentkit.Validation
	return validate.Options{
		Skip:               append(append([]string{}, v.Skip...), skip...),
		PackageManager:     v.PackageManager,
		Lockfile:           v.Lockfile,
		ForbiddenLockfiles: v.ForbiddenLockfiles,
		RulesDir:           v.RulesDir,
		RulesPattern:       v.RulesPattern,
		MinRules:           v.MinRules,
		Dependencies:       v.Dependencies,
		Scripts:            v.Scripts,
		AgentDirs:          v.AgentDirs,
		AgentTools:         v.AgentTools,
		DocsDir:            layout.DocsDir,
		DocSections:        v.DocSections,
		TestDirs:           v.TestDirs,
		TestConfigs:        v.TestConfigs,
	}
}
