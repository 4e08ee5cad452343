package progress

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rtmx-ai/agentkit/internal/workspace"
)

// ErrNoScanPaths rejects a scan rule that lists nothing to look for.
var ErrNoScanPaths = errors.New("scan rule has no paths")

// ScanRule derives the score of one component from how many of its paths
// exist under the project root. A path containing glob metacharacters is
// present when it matches at least one file.
type ScanRule struct {
	Category  string
	Component string
	Paths     []string
}

// Key returns "category.component".
func (r ScanRule) Key() string {
	return r.Category + "." + r.Component
}

// ScanResult is the evaluation of one rule.
type ScanResult struct {
	Rule    ScanRule
	Present []string
	Missing []string
}

// Score is the share of present paths as a whole percentage, truncated.
func (r ScanResult) Score() int {
	total := len(r.Present) + len(r.Missing)
	if total == 0 {
		return 0
	}
	return len(r.Present) * MaxScore / total
}

// EvaluateScan checks every rule against fsys without touching any state.
func EvaluateScan(fsys workspace.FileSystem, root string, rules []ScanRule) []ScanResult {
	results := make([]ScanResult, 0, len(rules))
	for _, rule := range rules {
		res := ScanResult{Rule: rule}
		for _, p := range rule.Paths {
			if pathPresent(fsys, root, p) {
				res.Present = append(res.Present, p)
			} else {
				res.Missing = append(res.Missing, p)
			}
		}
		results = append(results, res)
	}
	return results
}

func pathPresent(fsys workspace.FileSystem, root, p string) bool {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	if strings.ContainsAny(p, "*?[") {
		matches, err := fsys.Glob(p)
		return err == nil && len(matches) > 0
	}
	return fsys.Exists(p)
}

// ApplyScan writes every result's score into s. The rules are checked
// first, so either all scores change or none do.
func (t *Tracker) ApplyScan(s *State, results []ScanResult) ([]Change, error) {
	for _, res := range results {
		rule := res.Rule
		if len(rule.Paths) == 0 {
			return nil, inputError(ErrNoScanPaths, rule.Key(), nil)
		}
		items, ok := s.Components[rule.Category]
		if !ok {
			return nil, inputError(ErrUnknownCategory, rule.Category, s.Components.Categories())
		}
		if _, ok := items[rule.Component]; !ok {
			return nil, inputError(ErrUnknownComponent, rule.Key(), s.Components.Names(rule.Category))
		}
	}

	changes := make([]Change, 0, len(results))
	for _, res := range results {
		change, err := t.UpdateComponent(s, res.Rule.Category, res.Rule.Component, res.Score())
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}
