// Package progress holds the persisted progress document and the
// operations that keep its derived metrics and task buckets consistent.
package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FormatVersion is written into new documents.
const FormatVersion = "1.0"

// Components maps category → component → score in [0,100].
type Components map[string]map[string]int

// State is the single persisted progress document.
type State struct {
	Components Components `json:"components"`
	Metrics    Metrics    `json:"metrics"`
	Tasks      Tasks      `json:"tasks"`
	Metadata   Metadata   `json:"metadata"`
}

// Metrics are the cached and operator-set summary fields.
type Metrics struct {
	OverallCompletion float64  `json:"overall_completion"`
	Phase             string   `json:"phase"`
	Health            string   `json:"health"`
	Blockers          []string `json:"blockers"`
}

// Tasks are the three mutually exclusive task buckets.
type Tasks struct {
	Completed  []string `json:"completed"`
	InProgress []string `json:"in_progress"`
	Pending    []string `json:"pending"`
}

// Metadata is the bookkeeping section. Keys other than the known ones are
// kept in Extra and written back unchanged.
type Metadata struct {
	FormatVersion string
	LastUpdated   string
	Project       string
	StateID       string
	Extra         map[string]json.RawMessage
}

// Categories returns category names sorted.
func (c Components) Categories() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns the component names of a category sorted.
func (c Components) Names(category string) []string {
	items := c[category]
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of leaf components.
func (c Components) Count() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// CategoryAverage returns the mean score of one category, 0 when empty.
func (c Components) CategoryAverage(category string) float64 {
	items := c[category]
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, score := range items {
		total += score
	}
	return float64(total) / float64(len(items))
}

// Clone returns a deep copy.
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for category, items := range c {
		copied := make(map[string]int, len(items))
		for name, score := range items {
			copied[name] = score
		}
		out[category] = copied
	}
	return out
}

// Total returns the number of tasks across buckets.
func (t Tasks) Total() int {
	return len(t.Completed) + len(t.InProgress) + len(t.Pending)
}

// In returns the tasks of one bucket.
func (t Tasks) In(b Bucket) []string {
	switch b {
	case BucketCompleted:
		return t.Completed
	case BucketInProgress:
		return t.InProgress
	case BucketPending:
		return t.Pending
	default:
		return nil
	}
}

func (t *Tasks) slot(b Bucket) *[]string {
	switch b {
	case BucketCompleted:
		return &t.Completed
	case BucketInProgress:
		return &t.InProgress
	case BucketPending:
		return &t.Pending
	default:
		return nil
	}
}

func (t Tasks) clone() Tasks {
	return Tasks{
		Completed:  append([]string{}, t.Completed...),
		InProgress: append([]string{}, t.InProgress...),
		Pending:    append([]string{}, t.Pending...),
	}
}

var knownMetadataKeys = map[string]bool{
	"format_version": true,
	"last_updated":   true,
	"project":        true,
	"state_id":       true,
}

// MarshalJSON merges the known fields with Extra.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for key, raw := range m.Extra {
		if knownMetadataKeys[key] {
			continue
		}
		out[key] = raw
	}
	out["format_version"] = m.FormatVersion
	out["last_updated"] = m.LastUpdated
	out["project"] = m.Project
	if m.StateID != "" {
		out["state_id"] = m.StateID
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits known fields from free-form ones.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Metadata{}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metadata must be an object: %w", err)
	}
	var md Metadata
	fields := map[string]*string{
		"format_version": &md.FormatVersion,
		"last_updated":   &md.LastUpdated,
		"project":        &md.Project,
		"state_id":       &md.StateID,
	}
	for key, value := range raw {
		if dst, ok := fields[key]; ok {
			if err := json.Unmarshal(value, dst); err != nil {
				return fmt.Errorf("metadata.%s must be a string: %w", key, err)
			}
			continue
		}
		if md.Extra == nil {
			md.Extra = make(map[string]json.RawMessage)
		}
		md.Extra[key] = value
	}
	*m = md
	return nil
}

// normalize replaces nil slices with empty ones so the document always
// serializes lists as [].
func (s *State) normalize() {
	if s.Metrics.Blockers == nil {
		s.Metrics.Blockers = []string{}
	}
	if s.Tasks.Completed == nil {
		s.Tasks.Completed = []string{}
	}
	if s.Tasks.InProgress == nil {
		s.Tasks.InProgress = []string{}
	}
	if s.Tasks.Pending == nil {
		s.Tasks.Pending = []string{}
	}
}
