// Package report renders markdown reports from a progress document and a
// context supplied by the caller. Renderers are pure: they never touch the
// filesystem and never mutate the state.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rtmx-ai/agentkit/internal/progress"
	"github.com/rtmx-ai/agentkit/internal/validate"
)

// Kind identifies a report template.
type Kind string

const (
	KindHandoff    Kind = "handoff"
	KindDashboard  Kind = "metrics_dashboard"
	KindValidation Kind = "validation_report"
)

var (
	ErrUnknownKind     = errors.New("unknown report kind")
	ErrNoState         = errors.New("report requires a progress document")
	ErrNoValidation    = errors.New("validation report requires a validation result")
	completedMarker    = "✅"
	inProgressMarker   = "🔄"
	maxChangedFiles    = 10
	maxRecentCompleted = 5
	maxNextSteps       = 5
)

// Kinds returns every template kind.
func Kinds() []Kind {
	return []Kind{KindHandoff, KindDashboard, KindValidation}
}

// Context carries everything a renderer does not compute itself.
type Context struct {
	Project      string
	Branch       string
	ChangedFiles []string
	SessionID    string
	GeneratedAt  time.Time

	// SessionNotes is free text from the operator.
	SessionNotes string
	// StateNotes is the content of the current-state notes file.
	StateNotes string
	// BlockerNotes are the list items of the blocker notes file.
	BlockerNotes []string

	Stats      Stats
	Trend      []TrendPoint
	Validation *validate.Report
	// Adoption is the evaluation of the configured scan rules.
	Adoption []progress.ScanResult
}

// Stats are the filesystem facts shown on the metrics dashboard.
type Stats struct {
	HandoffReports    int
	ValidationReports int
	StateNotesPresent bool
	BlockersPresent   bool
	DocsPresent       bool
	// StateModified is the modification time of the state file; zero when
	// the document has never been saved.
	StateModified time.Time
}

// TrendPoint is one historical snapshot shown on the dashboard.
type TrendPoint struct {
	RecordedAt time.Time
	Overall    float64
	Phase      string
	Reason     string
}

// Render dispatches to the renderer for kind.
func Render(kind Kind, state *progress.State, ctx Context) (string, error) {
	switch kind {
	case KindHandoff:
		if state == nil {
			return "", ErrNoState
		}
		return Handoff(state, ctx), nil
	case KindDashboard:
		if state == nil {
			return "", ErrNoState
		}
		return Dashboard(state, ctx), nil
	case KindValidation:
		if ctx.Validation == nil {
			return "", ErrNoValidation
		}
		return Validation(ctx.Validation, ctx), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NewSessionID returns a new time-ordered session identifier. Ids minted in
// the same process are strictly increasing.
func NewSessionID() string {
	return ulid.Make().String()
}

// ParseSessionNotes extracts the completed (✅) and in-progress (🔄) items
// from free-text notes. A marker may follow a "- " list prefix.
func ParseSessionNotes(notes string) (completed, inProgress []string) {
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		switch {
		case strings.HasPrefix(line, completedMarker):
			if item := noteItem(line, completedMarker); item != "" {
				completed = append(completed, item)
			}
		case strings.HasPrefix(line, inProgressMarker):
			if item := noteItem(line, inProgressMarker); item != "" {
				inProgress = append(inProgress, item)
			}
		}
	}
	return completed, inProgress
}

func noteItem(line, marker string) string {
	item := strings.TrimSpace(strings.TrimPrefix(line, marker))
	return strings.TrimSpace(strings.TrimPrefix(item, "- "))
}

// ParseBlockerNotes returns the "- " list items of a blockers file.
func ParseBlockerNotes(content string) []string {
	var blockers []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		if item := strings.TrimSpace(line[2:]); item != "" {
			blockers = append(blockers, item)
		}
	}
	return blockers
}

// blockers merges recorded blockers with blocker notes, dropping duplicates.
func blockers(state *progress.State, ctx Context) []string {
	seen := make(map[string]bool)
	var all []string
	for _, group := range [][]string{state.Metrics.Blockers, ctx.BlockerNotes} {
		for _, b := range group {
			if !seen[b] {
				seen[b] = true
				all = append(all, b)
			}
		}
	}
	return all
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
