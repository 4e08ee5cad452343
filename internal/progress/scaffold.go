package progress

import (
	"encoding/json"
	"time"
)

// Scaffold is the document created when no state file exists yet. The
// default scores and task names are example configuration; only the shape
// matters.
type Scaffold struct {
	Project    string
	Health     string
	Components Components
	Tasks      Tasks
	Extra      map[string]string
}

// DefaultScaffold returns the built-in scaffold.
func DefaultScaffold() Scaffold {
	return Scaffold{
		Health: "green",
		Components: Components{
			"frontend": {
				"app_shell":      95,
				"authentication": 90,
				"editor":         85,
				"real_time_sync": 80,
				"ui_components":  90,
			},
			"backend": {
				"api_routes":         85,
				"auth":               90,
				"middleware":         90,
				"sync_service":       85,
				"websocket_handling": 80,
			},
			"shared": {
				"auth_utilities":     90,
				"logging":            80,
				"type_definitions":   90,
				"validation_schemas": 85,
			},
			"infrastructure": {
				"ci_cd_pipeline": 70,
				"docker_config":  80,
				"documentation":  85,
				"testing_setup":  85,
			},
		},
		Tasks: Tasks{
			Completed: []string{
				"Basic app setup",
				"Authentication",
				"Real-time sync integration",
			},
			InProgress: []string{
				"Agent system setup",
				"Comprehensive testing",
			},
			Pending: []string{
				"Performance optimization",
				"Production deployment",
				"Monitoring setup",
			},
		},
	}
}

// Build creates a fresh state from the scaffold.
func (sc Scaffold) Build(tr *Tracker, stateID string, now time.Time) *State {
	s := &State{
		Components: sc.Components.Clone(),
		Metrics: Metrics{
			Health:   sc.Health,
			Blockers: []string{},
		},
		Tasks: sc.Tasks.clone(),
		Metadata: Metadata{
			FormatVersion: FormatVersion,
			LastUpdated:   Timestamp(now),
			Project:       sc.Project,
			StateID:       stateID,
		},
	}
	if len(sc.Extra) > 0 {
		s.Metadata.Extra = make(map[string]json.RawMessage, len(sc.Extra))
		for key, value := range sc.Extra {
			raw, _ := json.Marshal(value)
			s.Metadata.Extra[key] = raw
		}
	}
	tr.Recompute(s)
	s.normalize()
	return s
}
