package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store loads and persists the progress document at a fixed path.
type Store struct {
	path     string
	scaffold Scaffold
	tracker  *Tracker
	newID    func() string
	created  bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithScaffold sets the document created when the file is absent.
func WithScaffold(sc Scaffold) StoreOption {
	return func(s *Store) {
		s.scaffold = sc
	}
}

// WithTracker sets the tracker used to derive metrics for the scaffold.
func WithTracker(tr *Tracker) StoreOption {
	return func(s *Store) {
		s.tracker = tr
	}
}

// WithIDGenerator replaces the state id generator (uuid by default).
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore creates a store for the document at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:     path,
		scaffold: DefaultScaffold(),
		tracker:  NewTracker(DefaultPhases()),
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file path of the document.
func (s *Store) Path() string {
	return s.path
}

// Created reports whether the last Load returned a new scaffold because
// the file did not exist.
func (s *Store) Created() bool {
	return s.created
}

// Load reads the document, or builds the scaffold when the file is absent.
// A file that exists but is not a valid document yields ErrMalformedState.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.created = true
			slog.Debug("state file absent, using scaffold", "path", s.path)
			return s.scaffold.Build(s.tracker, s.newID(), s.tracker.now()), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	s.created = false

	state, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	slog.Debug("state loaded", "path", s.path, "components", state.Components.Count())
	return state, nil
}

// Save overwrites the document, creating parent directories as needed.
func (s *Store) Save(state *State) error {
	data, err := Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	slog.Debug("state saved", "path", s.path)
	return nil
}

// Marshal serializes a document the way Save writes it.
func Marshal(state *State) ([]byte, error) {
	state.normalize()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse decodes and validates a document.
func Parse(data []byte) (*State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformed("", "invalid JSON: %v", err)
	}
	if _, ok := raw["components"]; !ok {
		return nil, malformed("", "missing components")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var state State
	if err := dec.Decode(&state); err != nil {
		return nil, malformed("", "%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed("", "trailing data after document")
	}
	if err := state.validate(); err != nil {
		return nil, err
	}
	state.normalize()
	return &state, nil
}

func (s *State) validate() error {
	if s.Components == nil {
		return malformed("", "components must be an object")
	}
	for _, category := range s.Components.Categories() {
		items := s.Components[category]
		if items == nil {
			return malformed("", "category %q must be an object", category)
		}
		for _, name := range s.Components.Names(category) {
			if score := items[name]; score < MinScore || score > MaxScore {
				return malformed("", "%s.%s score %d out of range", category, name, score)
			}
		}
	}
	return nil
}
