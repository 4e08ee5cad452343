package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/testutil"
)

func TestInitCreatesStructure(t *testing.T) {
	dir := t.TempDir()

	out, err := runIn(dir, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote .agent/config.yaml") {
		t.Errorf("unexpected output:\n%s", out)
	}

	for _, sub := range []string{
		".agent/current",
		".agent/history/handoffs",
		".agent/history/metrics",
		".agent/history/validation",
	} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("%s not created", sub)
		}
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		t.Fatalf("config does not load: %v", err)
	}
	if cfg.Source == "" {
		t.Error("config file not found after init")
	}

	state := testutil.ReadState(t, dir)
	if state.Components.Count() == 0 || state.Metadata.StateID == "" {
		t.Errorf("scaffold not written: %+v", state.Metadata)
	}
	if state.Metadata.Project != filepath.Base(dir) {
		t.Errorf("project = %q, want %q", state.Metadata.Project, filepath.Base(dir))
	}

	out, err = runIn(dir, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "init") {
		t.Errorf("init should record a snapshot:\n%s", out)
	}
}

func TestInitWritesDefaultsNotEnvironment(t *testing.T) {
	t.Setenv("AGENTKIT_PROJECT", "from-env")
	t.Setenv("AGENTKIT_VALIDATION_MIN_RULES", "5")
	dir := t.TempDir()

	if _, err := runIn(dir, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	data := readFile(t, filepath.Join(dir, ".agent/config.yaml"))
	var written config.Config
	if err := yaml.Unmarshal([]byte(data), &written); err != nil {
		t.Fatalf("config.yaml does not parse: %v", err)
	}
	if written.Agentkit.Project != filepath.Base(dir) {
		t.Errorf("project = %q, want the directory name %q", written.Agentkit.Project, filepath.Base(dir))
	}
	if written.Agentkit.Validation.MinRules != 34 {
		t.Errorf("min_rules = %d, want the default 34", written.Agentkit.Validation.MinRules)
	}

	state := testutil.ReadState(t, dir)
	if state.Metadata.Project != "from-env" {
		t.Errorf("scaffold project = %q, want the effective name from-env", state.Metadata.Project)
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())
	if _, err := runIn(dir, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out, err := runIn(dir, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Kept .agent/config.yaml") || !strings.Contains(out, "Kept .agent/current/progress.json") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := testutil.ReadState(t, dir).Metrics.OverallCompletion; got != 80 {
		t.Errorf("overall = %v, existing state should be kept", got)
	}

	if _, err := runIn(dir, "init", "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if got := testutil.ReadState(t, dir).Metadata.Project; got == "fixture" {
		t.Error("--force should rewrite the progress document")
	}
}

func TestInitUsesConfiguredScaffold(t *testing.T) {
	cfg := testutil.NewTestConfig(t,
		testutil.WithProjectName("demo"),
		testutil.WithScaffoldComponents(map[string]map[string]int{"core": {"api": 40, "cli": 60}}),
	)
	dir := testutil.TempProjectWithConfig(t, cfg)

	if _, err := runIn(dir, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	state := testutil.ReadState(t, dir)
	if state.Metadata.Project != "demo" {
		t.Errorf("project = %q, want demo", state.Metadata.Project)
	}
	if state.Metrics.OverallCompletion != 50 || state.Metrics.Phase != "integration" {
		t.Errorf("metrics = %+v", state.Metrics)
	}
}
