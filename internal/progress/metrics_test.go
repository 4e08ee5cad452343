package progress

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fixedTracker() *Tracker {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Tracker{Phases: DefaultPhases(), Now: func() time.Time { return at }}
}

func scenarioState() *State {
	s := &State{
		Components: Components{
			"frontend": {"a": 80, "b": 100},
			"backend":  {"c": 60},
		},
	}
	s.normalize()
	return s
}

func TestRecomputeOverall(t *testing.T) {
	tests := []struct {
		name       string
		components Components
		want       float64
	}{
		{"empty", Components{}, 0},
		{"nil", nil, 0},
		{"empty categories", Components{"a": {}, "b": {}}, 0},
		{"single", Components{"a": {"x": 42}}, 42},
		{"scenario", Components{"frontend": {"a": 80, "b": 100}, "backend": {"c": 60}}, 80},
		{"rounds to tenth", Components{"frontend": {"a": 90, "b": 100}, "backend": {"c": 60}}, 83.3},
		{"rounds up", Components{"x": {"a": 1, "b": 1, "c": 0}}, 0.7},
		{"tie rounds to even", Components{"x": {"a": 83, "b": 83, "c": 83, "d": 84}}, 83.2},
		{"tie rounds to even upward", Components{"x": {"a": 83, "b": 83, "c": 83, "d": 86}}, 83.8},
		{"inexact tie stays below", twentyLeaves(3), 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecomputeOverall(tt.components); got != tt.want {
				t.Errorf("RecomputeOverall() = %v, want %v", got, tt.want)
			}
		})
	}
}

// twentyLeaves scores ones of twenty components 1 and the rest 0.
func twentyLeaves(ones int) Components {
	items := map[string]int{}
	for i := 0; i < 20; i++ {
		score := 0
		if i < ones {
			score = 1
		}
		items[fmt.Sprintf("c%02d", i)] = score
	}
	return Components{"x": items}
}

func TestRoundTenth(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.25, 0.2},
		{0.35, 0.3},
		{0.45, 0.5},
		{2.675, 2.7},
		{83.25, 83.2},
		{83.75, 83.8},
		{-0.25, -0.2},
		{100, 100},
	}
	for _, tt := range tests {
		if got := roundTenth(tt.in); got != tt.want {
			t.Errorf("roundTenth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifyPhase(t *testing.T) {
	phases := DefaultPhases()
	tests := []struct {
		overall float64
		want    string
	}{
		{0, "planning"},
		{10, "planning"},
		{24.9, "planning"},
		{25, "foundation"},
		{40, "foundation"},
		{50, "integration"},
		{74.9, "integration"},
		{80, "optimization"},
		{94.9, "optimization"},
		{95, "complete"},
		{97, "complete"},
		{100, "complete"},
	}

	for _, tt := range tests {
		if got := phases.Classify(tt.overall); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.overall, got, tt.want)
		}
	}
}

func TestClassifyPhaseMonotonic(t *testing.T) {
	phases := DefaultPhases()
	rank := make(map[string]int)
	for i, label := range phases.Labels() {
		rank[label] = i
	}

	prev := -1
	for v := 0.0; v <= 100; v += 0.1 {
		r := rank[phases.Classify(v)]
		if r < prev {
			t.Fatalf("Classify(%v) went back to %q", v, phases.Classify(v))
		}
		prev = r
	}
}

func TestPhasesValidate(t *testing.T) {
	tests := []struct {
		name    string
		phases  Phases
		wantErr bool
	}{
		{"default", DefaultPhases(), false},
		{"final only", Phases{Final: "done"}, false},
		{"missing final", Phases{Breakpoints: []Breakpoint{{Below: 50, Label: "a"}}}, true},
		{"unordered", Phases{Breakpoints: []Breakpoint{{Below: 50, Label: "a"}, {Below: 40, Label: "b"}}, Final: "c"}, true},
		{"duplicate bound", Phases{Breakpoints: []Breakpoint{{Below: 50, Label: "a"}, {Below: 50, Label: "b"}}, Final: "c"}, true},
		{"above 100", Phases{Breakpoints: []Breakpoint{{Below: 101, Label: "a"}}, Final: "c"}, true},
		{"zero bound", Phases{Breakpoints: []Breakpoint{{Below: 0, Label: "a"}}, Final: "c"}, true},
		{"empty label", Phases{Breakpoints: []Breakpoint{{Below: 10}}, Final: "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.phases.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateComponentScenario(t *testing.T) {
	tr := fixedTracker()
	s := scenarioState()
	tr.Recompute(s)

	if s.Metrics.OverallCompletion != 80.0 {
		t.Fatalf("initial overall = %v, want 80.0", s.Metrics.OverallCompletion)
	}

	change, err := tr.UpdateComponent(s, "frontend", "a", 90)
	if err != nil {
		t.Fatalf("UpdateComponent failed: %v", err)
	}

	if s.Metrics.OverallCompletion != 83.3 {
		t.Errorf("overall = %v, want 83.3", s.Metrics.OverallCompletion)
	}
	if change.OldValue != 80 || change.NewValue != 90 {
		t.Errorf("change = %d -> %d, want 80 -> 90", change.OldValue, change.NewValue)
	}
	if change.OldOverall != 80 || change.NewOverall != 83.3 {
		t.Errorf("overall change = %v -> %v, want 80 -> 83.3", change.OldOverall, change.NewOverall)
	}
	if s.Metrics.Phase != "optimization" {
		t.Errorf("phase = %q, want optimization", s.Metrics.Phase)
	}
	if s.Metadata.LastUpdated != "2026-03-01T12:00:00Z" {
		t.Errorf("last_updated = %q, want 2026-03-01T12:00:00Z", s.Metadata.LastUpdated)
	}
}

func TestUpdateComponentMeanForAllValues(t *testing.T) {
	tr := fixedTracker()
	for value := 0; value <= 100; value++ {
		s := scenarioState()
		if _, err := tr.UpdateComponent(s, "backend", "c", value); err != nil {
			t.Fatalf("UpdateComponent(%d) failed: %v", value, err)
		}
		want := roundTenth(float64(80+100+value) / 3)
		if s.Metrics.OverallCompletion != want {
			t.Errorf("value %d: overall = %v, want %v", value, s.Metrics.OverallCompletion, want)
		}
	}
}

func TestUpdateComponentRejected(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		component string
		value     int
		want      error
	}{
		{"unknown category", "mobile", "a", 50, ErrUnknownCategory},
		{"unknown component", "frontend", "zzz", 50, ErrUnknownComponent},
		{"negative", "frontend", "a", -1, ErrOutOfRange},
		{"above max", "frontend", "a", 101, ErrOutOfRange},
		{"far above", "backend", "c", 1000, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := fixedTracker()
			s := scenarioState()
			tr.Recompute(s)
			before, err := Marshal(s)
			if err != nil {
				t.Fatal(err)
			}

			_, err = tr.UpdateComponent(s, tt.category, tt.component, tt.value)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrValidationInput) {
				t.Errorf("error %v should wrap ErrValidationInput", err)
			}

			after, err := Marshal(s)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(before, after) {
				t.Errorf("document changed after rejected update:\nbefore: %s\nafter: %s", before, after)
			}
		})
	}
}

func TestUpdateComponentErrorListsChoices(t *testing.T) {
	tr := fixedTracker()
	s := scenarioState()

	_, err := tr.UpdateComponent(s, "mobile", "a", 50)
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("error %v is not an InputError", err)
	}
	if len(inputErr.Choices) != 2 || inputErr.Choices[0] != "backend" || inputErr.Choices[1] != "frontend" {
		t.Errorf("choices = %v, want [backend frontend]", inputErr.Choices)
	}
}

func TestSetPhaseOverrideIsRederived(t *testing.T) {
	tr := fixedTracker()
	s := scenarioState()
	tr.Recompute(s)

	old, err := tr.SetPhase(s, "production-ready")
	if err != nil {
		t.Fatalf("SetPhase failed: %v", err)
	}
	if old != "optimization" {
		t.Errorf("old phase = %q, want optimization", old)
	}
	if s.Metrics.Phase != "production-ready" {
		t.Errorf("phase = %q, want production-ready", s.Metrics.Phase)
	}

	if _, err := tr.UpdateComponent(s, "backend", "c", 10); err != nil {
		t.Fatal(err)
	}
	if s.Metrics.Phase != "integration" {
		t.Errorf("phase after update = %q, want integration", s.Metrics.Phase)
	}

	if _, err := tr.SetPhase(s, ""); !errors.Is(err, ErrValidationInput) {
		t.Errorf("empty phase error = %v, want ErrValidationInput", err)
	}
}

func TestBlockers(t *testing.T) {
	tr := fixedTracker()
	s := scenarioState()

	changed, err := tr.AddBlocker(s, "CI is red")
	if err != nil || !changed {
		t.Fatalf("AddBlocker = %v, %v; want true, nil", changed, err)
	}
	changed, _ = tr.AddBlocker(s, "CI is red")
	if changed {
		t.Error("duplicate blocker should not change the list")
	}
	if len(s.Metrics.Blockers) != 1 {
		t.Errorf("blockers = %v, want one entry", s.Metrics.Blockers)
	}

	if n := tr.ClearBlockers(s); n != 1 {
		t.Errorf("ClearBlockers = %d, want 1", n)
	}
	if s.Metrics.Blockers == nil || len(s.Metrics.Blockers) != 0 {
		t.Errorf("blockers = %#v, want empty slice", s.Metrics.Blockers)
	}
}

func TestSetHealth(t *testing.T) {
	tr := fixedTracker()
	s := scenarioState()
	s.Metrics.Health = "green"

	old, err := tr.SetHealth(s, "yellow")
	if err != nil {
		t.Fatal(err)
	}
	if old != "green" || s.Metrics.Health != "yellow" {
		t.Errorf("health %q -> %q, want green -> yellow", old, s.Metrics.Health)
	}
}
