package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rtmx-ai/agentkit/internal/progress"
	"github.com/rtmx-ai/agentkit/internal/testutil"
)

func TestProgressShowScaffoldsState(t *testing.T) {
	dir := testutil.TempProject(t)

	out, err := runIn(dir, "progress")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	for _, want := range []string{"Overall Completion:", "Current Phase:", "Category", "Pending ("} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	state := testutil.ReadState(t, dir)
	if state.Metadata.StateID == "" {
		t.Error("scaffolded state should carry a state id")
	}
	if state.Components.Count() == 0 {
		t.Error("scaffold should pre-populate components")
	}
}

func TestProgressShowExisting(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "show")
	if err != nil {
		t.Fatalf("progress show failed: %v", err)
	}
	for _, want := range []string{"80.0%", "optimization", "Frontend", "Editor", "90%", "Write docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressJSON(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "--json")
	if err != nil {
		t.Fatalf("progress --json failed: %v", err)
	}
	state, err := progress.Parse([]byte(out))
	if err != nil {
		t.Fatalf("output is not a progress document: %v\n%s", err, out)
	}
	if state.Metrics.OverallCompletion != 80 {
		t.Errorf("overall = %v, want 80", state.Metrics.OverallCompletion)
	}
}

func TestProgressUpdate(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "update", "frontend", "editor", "100")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	for _, want := range []string{"Updated frontend.editor: 90% -> 100%", "Overall completion: 80.0% -> 82.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Phase:") {
		t.Errorf("phase did not change, got:\n%s", out)
	}

	state := testutil.ReadState(t, dir)
	if state.Components["frontend"]["editor"] != 100 {
		t.Errorf("editor = %d, want 100", state.Components["frontend"]["editor"])
	}
	if state.Metrics.OverallCompletion != 82.5 {
		t.Errorf("overall = %v, want 82.5", state.Metrics.OverallCompletion)
	}
}

func TestProgressUpdateChangesPhase(t *testing.T) {
	state := testutil.NewTestState(testutil.WithComponent("core", "api", 70))
	dir := testutil.TempProjectWithState(t, state)

	out, err := runIn(dir, "progress", "update", "core", "api", "80")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !strings.Contains(out, "Phase: integration -> optimization") {
		t.Errorf("expected phase change, got:\n%s", out)
	}
}

func TestProgressUpdateRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"non integer", []string{"frontend", "editor", "abc"}, "must be an integer"},
		{"unknown category", []string{"mobile", "editor", "50"}, "backend, frontend, infrastructure"},
		{"unknown component", []string{"frontend", "search", "50"}, "editor, viewer"},
		{"out of range", []string{"frontend", "editor", "101"}, "between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.TempProjectWithState(t, testutil.SampleState())
			path := testutil.WriteState(t, dir, testutil.SampleState())
			before, _ := os.ReadFile(path)

			_, err := runIn(dir, append([]string{"progress", "update"}, tt.args...)...)
			if exitCode(err) != 1 {
				t.Fatalf("exit code = %d (%v), want 1", exitCode(err), err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}

			after, _ := os.ReadFile(path)
			if string(before) != string(after) {
				t.Error("state file changed after a rejected update")
			}
		})
	}
}

func TestProgressUsage(t *testing.T) {
	tests := [][]string{
		{"progress", "bogus"},
		{"progress", "update", "frontend"},
		{"progress", "update", "frontend", "editor", "10", "extra"},
		{"progress", "task"},
		{"progress", "phase"},
		{"progress", "health"},
		{"progress", "blocker"},
		{"progress", "show", "extra"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			dir := testutil.TempProject(t)
			out, err := runIn(dir, args...)
			if err != nil {
				t.Fatalf("usage should exit 0, got %v", err)
			}
			if !strings.Contains(out, "Usage:") {
				t.Errorf("expected usage, got:\n%s", out)
			}
			if _, err := os.Stat(proj.layout.StateFile); !os.IsNotExist(err) {
				t.Error("usage must not create the state file")
			}
		})
	}
}

func TestProgressTask(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "task", "Write docs", "completed")
	if err != nil {
		t.Fatalf("task failed: %v", err)
	}
	if !strings.Contains(out, "Moved task 'Write docs' from 'pending' to 'completed'") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runIn(dir, "progress", "task", "Profile startup")
	if err != nil {
		t.Fatalf("task failed: %v", err)
	}
	if !strings.Contains(out, "Added task 'Profile startup' with status 'pending'") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runIn(dir, "progress", "task", "Wire ledger", "in-progress")
	if err != nil {
		t.Fatalf("task failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("unexpected output:\n%s", out)
	}

	state := testutil.ReadState(t, dir)
	if got := state.Tasks.Completed; len(got) != 2 || got[1] != "Write docs" {
		t.Errorf("completed = %v", got)
	}
	if got := state.Tasks.Pending; len(got) != 2 || got[1] != "Profile startup" {
		t.Errorf("pending = %v", got)
	}
	if got := state.Tasks.InProgress; len(got) != 1 {
		t.Errorf("in progress = %v", got)
	}
}

func TestProgressTaskInvalidStatus(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	_, err := runIn(dir, "progress", "task", "Write docs", "done")
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d (%v), want 1", exitCode(err), err)
	}
	if !strings.Contains(err.Error(), "completed, in_progress, pending") {
		t.Errorf("error should list the statuses: %v", err)
	}
}

func TestProgressPhaseAndHealth(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "phase", "integration")
	if err != nil {
		t.Fatalf("phase failed: %v", err)
	}
	if !strings.Contains(out, "Phase set to integration (was optimization)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runIn(dir, "progress", "health", "yellow")
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if !strings.Contains(out, "Health set to yellow (was green)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	state := testutil.ReadState(t, dir)
	if state.Metrics.Phase != "integration" || state.Metrics.Health != "yellow" {
		t.Errorf("metrics = %+v", state.Metrics)
	}

	// The next component update derives the phase again.
	if _, err := runIn(dir, "progress", "update", "backend", "api", "80"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := testutil.ReadState(t, dir).Metrics.Phase; got != "optimization" {
		t.Errorf("phase after update = %q, want optimization", got)
	}
}

func TestProgressBlockers(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "blocker", "Waiting", "on", "keys")
	if err != nil {
		t.Fatalf("blocker failed: %v", err)
	}
	if !strings.Contains(out, "Added blocker: Waiting on keys") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _ = runIn(dir, "progress", "blocker", "Waiting on keys")
	if !strings.Contains(out, "already recorded") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runIn(dir, "progress", "blocker", "--clear")
	if err != nil {
		t.Fatalf("blocker --clear failed: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 blocker(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := testutil.ReadState(t, dir).Metrics.Blockers; len(got) != 0 {
		t.Errorf("blockers = %v, want none", got)
	}
}

func TestProgressMalformedState(t *testing.T) {
	dir := testutil.TempProject(t)
	path := testutil.WriteState(t, dir, testutil.SampleState())
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runIn(dir, "progress")
	if err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Errorf("expected malformed state error, got %v", err)
	}
}

func scanProject(t *testing.T) string {
	t.Helper()
	dir := testutil.TempProjectWithConfig(t, testutil.NewTestConfig(t,
		testutil.WithScanRule("backend", "api", "Makefile", ".agent/current", "nope.txt"),
		testutil.WithScanRule("infrastructure", "ci", "ci/*.yml"),
	))
	testutil.WriteState(t, dir, testutil.SampleState())
	writeFile(t, filepath.Join(dir, "Makefile"), "all:\n")
	return dir
}

func TestProgressScan(t *testing.T) {
	dir := scanProject(t)

	out, err := runIn(dir, "progress", "scan")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, want := range []string{
		"backend.api: 2/3 paths -> 66% (was 80%)",
		"missing: nope.txt",
		"infrastructure.ci: 0/1 paths -> 0% (was 80%)",
		"Overall completion: 80.0% -> 56.5%",
		"Phase: optimization -> integration",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	state := testutil.ReadState(t, dir)
	if state.Components["backend"]["api"] != 66 || state.Components["infrastructure"]["ci"] != 0 {
		t.Errorf("scores not saved: %v", state.Components)
	}
	if state.Metrics.OverallCompletion != 56.5 || state.Metrics.Phase != "integration" {
		t.Errorf("metrics = %+v", state.Metrics)
	}

	writeFile(t, filepath.Join(dir, "ci", "lint.yml"), "on: push\n")
	out, err = runIn(dir, "progress", "scan")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "infrastructure.ci: 1/1 paths -> 100% (was 0%)") {
		t.Errorf("glob path not detected:\n%s", out)
	}
}

func TestProgressScanDryRun(t *testing.T) {
	dir := scanProject(t)
	path := filepath.Join(dir, ".agent/current/progress.json")
	before := readFile(t, path)

	out, err := runIn(dir, "progress", "scan", "--dry-run")
	if err != nil {
		t.Fatalf("scan --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "Overall completion: 80.0% -> 56.5%") || !strings.Contains(out, "Dry run") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if readFile(t, path) != before {
		t.Error("dry run modified the progress document")
	}
}

func TestProgressScanUnknownComponent(t *testing.T) {
	dir := testutil.TempProjectWithConfig(t, testutil.NewTestConfig(t,
		testutil.WithScanRule("backend", "api", "Makefile"),
		testutil.WithScanRule("backend", "queue", "Makefile"),
	))
	path := testutil.WriteState(t, dir, testutil.SampleState())
	before := readFile(t, path)

	_, err := runIn(dir, "progress", "scan")
	if exitCode(err) != 1 || !strings.Contains(err.Error(), "backend.queue") {
		t.Fatalf("exit code = %d (%v), want 1 naming backend.queue", exitCode(err), err)
	}
	if readFile(t, path) != before {
		t.Error("rejected scan modified the progress document")
	}
}

func TestProgressScanWithoutRules(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "scan")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "No scan rules configured") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestProgressJSONOnlyOnShow(t *testing.T) {
	dir := testutil.TempProjectWithState(t, testutil.SampleState())

	out, err := runIn(dir, "progress", "show", "--json")
	if err != nil {
		t.Fatalf("progress show --json failed: %v", err)
	}
	if _, err := progress.Parse([]byte(out)); err != nil {
		t.Errorf("show --json is not a progress document: %v", err)
	}

	path := filepath.Join(dir, ".agent/current/progress.json")
	before := readFile(t, path)
	_, err = runIn(dir, "progress", "update", "frontend", "editor", "50", "--json")
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Fatalf("update --json error = %v, want unknown flag", err)
	}
	if readFile(t, path) != before {
		t.Error("rejected update modified the progress document")
	}
}
