// Package testutil provides fixtures for agentkit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/progress"
)

// FixedTime is the clock used by fixtures.
var FixedTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// StateOption configures a test state.
type StateOption func(*progress.State)

// NewTestState creates an empty, valid progress document and applies opts.
// Overall completion and phase are recomputed afterwards unless WithPhase
// set an override.
func NewTestState(opts ...StateOption) *progress.State {
	state := &progress.State{
		Components: progress.Components{},
		Metrics: progress.Metrics{
			Health:   "green",
			Blockers: []string{},
		},
		Tasks: progress.Tasks{
			Completed:  []string{},
			InProgress: []string{},
			Pending:    []string{},
		},
		Metadata: progress.Metadata{
			FormatVersion: progress.FormatVersion,
			LastUpdated:   progress.Timestamp(FixedTime),
			Project:       "fixture",
			StateID:       "00000000-0000-4000-8000-000000000000",
		},
	}

	phase := ""
	for _, opt := range opts {
		opt(state)
		if state.Metrics.Phase != "" {
			phase = state.Metrics.Phase
		}
	}

	progress.NewTracker(progress.DefaultPhases()).Recompute(state)
	if phase != "" {
		state.Metrics.Phase = phase
	}
	state.Metadata.LastUpdated = progress.Timestamp(FixedTime)
	return state
}

// WithComponent sets one component score.
func WithComponent(category, name string, score int) StateOption {
	return func(s *progress.State) {
		if s.Components[category] == nil {
			s.Components[category] = map[string]int{}
		}
		s.Components[category][name] = score
	}
}

// WithTasks appends tasks to a bucket.
func WithTasks(bucket progress.Bucket, names ...string) StateOption {
	return func(s *progress.State) {
		switch bucket {
		case progress.BucketCompleted:
			s.Tasks.Completed = append(s.Tasks.Completed, names...)
		case progress.BucketInProgress:
			s.Tasks.InProgress = append(s.Tasks.InProgress, names...)
		case progress.BucketPending:
			s.Tasks.Pending = append(s.Tasks.Pending, names...)
		}
	}
}

// WithPhase overrides the derived phase label.
func WithPhase(label string) StateOption {
	return func(s *progress.State) {
		s.Metrics.Phase = label
	}
}

// WithHealth sets the health value.
func WithHealth(health string) StateOption {
	return func(s *progress.State) {
		s.Metrics.Health = health
	}
}

// WithBlockers records blockers.
func WithBlockers(blockers ...string) StateOption {
	return func(s *progress.State) {
		s.Metrics.Blockers = append(s.Metrics.Blockers, blockers...)
	}
}

// WithProject sets the project recorded in metadata.
func WithProject(name string) StateOption {
	return func(s *progress.State) {
		s.Metadata.Project = name
	}
}

// SampleState returns a three-category document at 80% overall.
func SampleState() *progress.State {
	return NewTestState(
		WithComponent("frontend", "editor", 90),
		WithComponent("frontend", "viewer", 70),
		WithComponent("backend", "api", 80),
		WithComponent("infrastructure", "ci", 80),
		WithTasks(progress.BucketCompleted, "Set up repository"),
		WithTasks(progress.BucketInProgress, "Wire ledger"),
		WithTasks(progress.BucketPending, "Write docs", "Cut release"),
	)
}

// ConfigOption configures a test config.
type ConfigOption func(*config.Config)

// NewTestConfig creates a config for testing with optional configuration.
func NewTestConfig(t *testing.T, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithProjectName sets the configured project name.
func WithProjectName(name string) ConfigOption {
	return func(c *config.Config) {
		c.Agentkit.Project = name
	}
}

// WithStateFile moves the state document.
func WithStateFile(path string) ConfigOption {
	return func(c *config.Config) {
		c.Agentkit.Paths.StateFile = path
	}
}

// WithLedger toggles the snapshot ledger.
func WithLedger(enabled bool) ConfigOption {
	return func(c *config.Config) {
		c.Agentkit.Ledger.Enabled = enabled
	}
}

// WithScaffoldComponents replaces the scaffold component table.
func WithScaffoldComponents(components map[string]map[string]int) ConfigOption {
	return func(c *config.Config) {
		c.Agentkit.Scaffold.Components = components
	}
}

// WithScanRule appends a scan rule.
func WithScanRule(category, component string, paths ...string) ConfigOption {
	return func(c *config.Config) {
		c.Agentkit.Scan.Rules = append(c.Agentkit.Scan.Rules, config.ScanRuleConfig{
			Category:  category,
			Component: component,
			Paths:     paths,
		})
	}
}

// TempProject creates a temporary project root with the agent directories.
// The directory is removed when the test ends.
func TempProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, sub := range []string{".agent/current", ".agent/history"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", sub, err)
		}
	}
	return dir
}

// TempProjectWithConfig creates a temp project with .agent/config.yaml.
func TempProjectWithConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	dir := TempProject(t)
	if err := cfg.Save(filepath.Join(dir, ".agent", "config.yaml")); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

// TempProjectWithState creates a temp project whose state file holds state.
func TempProjectWithState(t *testing.T, state *progress.State) string {
	t.Helper()

	dir := TempProject(t)
	WriteState(t, dir, state)
	return dir
}

// WriteState saves state at the default state path under root.
func WriteState(t *testing.T, root string, state *progress.State) string {
	t.Helper()

	path := config.DefaultConfig().Layout(root).StateFile
	if err := progress.NewStore(path).Save(state); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}
	return path
}

// ReadState loads the state at the default state path under root.
func ReadState(t *testing.T, root string) *progress.State {
	t.Helper()

	path := config.DefaultConfig().Layout(root).StateFile
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	state, err := progress.Parse(data)
	if err != nil {
		t.Fatalf("Failed to parse state: %v", err)
	}
	return state
}
