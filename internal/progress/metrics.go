package progress

import (
	"fmt"
	"strconv"
	"time"
)

// MinScore and MaxScore bound every component score.
const (
	MinScore = 0
	MaxScore = 100
)

// Breakpoint maps every completion strictly below Below to Label.
type Breakpoint struct {
	Below float64
	Label string
}

// Phases is an ordered partition of [0,100] into phase labels: each
// breakpoint covers completions below its bound, Final covers the rest.
type Phases struct {
	Breakpoints []Breakpoint
	Final       string
}

// DefaultPhases returns the stock partition.
func DefaultPhases() Phases {
	return Phases{
		Breakpoints: []Breakpoint{
			{Below: 25, Label: "planning"},
			{Below: 50, Label: "foundation"},
			{Below: 75, Label: "integration"},
			{Below: 95, Label: "optimization"},
		},
		Final: "complete",
	}
}

// Classify returns the phase label for an overall completion.
func (p Phases) Classify(overall float64) string {
	for _, bp := range p.Breakpoints {
		if overall < bp.Below {
			return bp.Label
		}
	}
	return p.Final
}

// Labels returns every label in ascending order.
func (p Phases) Labels() []string {
	labels := make([]string, 0, len(p.Breakpoints)+1)
	for _, bp := range p.Breakpoints {
		labels = append(labels, bp.Label)
	}
	return append(labels, p.Final)
}

// Validate checks that the breakpoints form an ordered, non-overlapping
// partition of [0,100].
func (p Phases) Validate() error {
	if p.Final == "" {
		return fmt.Errorf("phases: final label is required")
	}
	prev := 0.0
	for i, bp := range p.Breakpoints {
		if bp.Label == "" {
			return fmt.Errorf("phases: breakpoint %d has an empty label", i)
		}
		if bp.Below <= prev || bp.Below > MaxScore {
			return fmt.Errorf("phases: breakpoint %q below %.1f must be in (%.1f, 100]", bp.Label, bp.Below, prev)
		}
		prev = bp.Below
	}
	return nil
}

// RecomputeOverall returns the mean of every leaf score rounded to one
// decimal, or 0 when there are no components.
func RecomputeOverall(components Components) float64 {
	total, count := 0, 0
	for _, items := range components {
		for _, score := range items {
			total += score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return roundTenth(float64(total) / float64(count))
}

// roundTenth rounds the exact binary value of v to one decimal, ties to
// even. Scaling by 10 first would turn 0.15 (stored just below) into a tie.
func roundTenth(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Tracker applies mutations to a State and keeps its derived fields
// current.
type Tracker struct {
	Phases Phases
	Now    func() time.Time
}

// NewTracker creates a tracker using the wall clock.
func NewTracker(phases Phases) *Tracker {
	return &Tracker{Phases: phases, Now: time.Now}
}

// Change reports the effect of a successful component update.
type Change struct {
	Category   string
	Component  string
	OldValue   int
	NewValue   int
	OldOverall float64
	NewOverall float64
	OldPhase   string
	NewPhase   string
}

// Recompute refreshes overall completion and phase from the components.
func (t *Tracker) Recompute(s *State) {
	s.Metrics.OverallCompletion = RecomputeOverall(s.Components)
	s.Metrics.Phase = t.Phases.Classify(s.Metrics.OverallCompletion)
}

// UpdateComponent sets one score. Nothing is modified unless every check
// passes.
func (t *Tracker) UpdateComponent(s *State, category, component string, value int) (Change, error) {
	items, ok := s.Components[category]
	if !ok {
		return Change{}, inputError(ErrUnknownCategory, category, s.Components.Categories())
	}
	old, ok := items[component]
	if !ok {
		return Change{}, inputError(ErrUnknownComponent, category+"."+component, s.Components.Names(category))
	}
	if value < MinScore || value > MaxScore {
		return Change{}, inputError(ErrOutOfRange, fmt.Sprint(value), nil)
	}

	change := Change{
		Category:   category,
		Component:  component,
		OldValue:   old,
		NewValue:   value,
		OldOverall: s.Metrics.OverallCompletion,
		OldPhase:   s.Metrics.Phase,
	}
	items[component] = value
	t.Recompute(s)
	t.stamp(s)

	change.NewOverall = s.Metrics.OverallCompletion
	change.NewPhase = s.Metrics.Phase
	return change, nil
}

// SetPhase overrides the phase label. The next component update derives
// it again from overall completion.
func (t *Tracker) SetPhase(s *State, label string) (string, error) {
	if label == "" {
		return "", inputError(ErrEmptyName, "phase", t.Phases.Labels())
	}
	old := s.Metrics.Phase
	s.Metrics.Phase = label
	t.stamp(s)
	return old, nil
}

// SetHealth records the operator-assessed health.
func (t *Tracker) SetHealth(s *State, health string) (string, error) {
	if health == "" {
		return "", inputError(ErrEmptyName, "health", nil)
	}
	old := s.Metrics.Health
	s.Metrics.Health = health
	t.stamp(s)
	return old, nil
}

// AddBlocker appends a blocker unless it is already listed. It reports
// whether the list changed.
func (t *Tracker) AddBlocker(s *State, blocker string) (bool, error) {
	if blocker == "" {
		return false, inputError(ErrEmptyName, "blocker", nil)
	}
	for _, b := range s.Metrics.Blockers {
		if b == blocker {
			return false, nil
		}
	}
	s.Metrics.Blockers = append(s.Metrics.Blockers, blocker)
	t.stamp(s)
	return true, nil
}

// ClearBlockers empties the blocker list and returns how many were removed.
func (t *Tracker) ClearBlockers(s *State) int {
	n := len(s.Metrics.Blockers)
	s.Metrics.Blockers = []string{}
	t.stamp(s)
	return n
}

func (t *Tracker) stamp(s *State) {
	s.Metadata.LastUpdated = Timestamp(t.now())
}

func (t *Tracker) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// Timestamp formats a time the way last_updated is stored.
func Timestamp(at time.Time) string {
	return at.UTC().Format(time.RFC3339)
}
