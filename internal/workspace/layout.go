// Package workspace describes where agentkit reads and writes files for a
// single project root.
package workspace

import "path/filepath"

// Layout holds every path agentkit touches, resolved once against a
// project root. Core packages receive a Layout instead of consulting the
// working directory.
type Layout struct {
	Root string

	StateFile    string
	StateNotes   string
	BlockersFile string
	MetricsFile  string

	HistoryDir        string
	HandoffDir        string
	MetricsHistoryDir string
	ValidationDir     string
	LatestHandoff     string
	LatestValidation  string

	DocsDir    string
	LedgerFile string
}

// NewLayout resolves a layout from paths relative to root. Absolute paths
// are kept as given.
func NewLayout(root string, rel Paths) Layout {
	history := resolve(root, rel.HistoryDir)
	return Layout{
		Root:              root,
		StateFile:         resolve(root, rel.StateFile),
		StateNotes:        resolve(root, rel.StateNotes),
		BlockersFile:      resolve(root, rel.BlockersFile),
		MetricsFile:       resolve(root, rel.MetricsFile),
		HistoryDir:        history,
		HandoffDir:        filepath.Join(history, "handoffs"),
		MetricsHistoryDir: filepath.Join(history, "metrics"),
		ValidationDir:     filepath.Join(history, "validation"),
		LatestHandoff:     filepath.Join(history, "latest-handoff.md"),
		LatestValidation:  filepath.Join(history, "latest-validation.md"),
		DocsDir:           resolve(root, rel.DocsDir),
		LedgerFile:        resolve(root, rel.LedgerFile),
	}
}

// Paths are the configurable, root-relative inputs to NewLayout.
type Paths struct {
	StateFile    string
	StateNotes   string
	BlockersFile string
	MetricsFile  string
	HistoryDir   string
	DocsDir      string
	LedgerFile   string
}

// Join resolves a root-relative path.
func (l Layout) Join(rel string) string {
	return resolve(l.Root, rel)
}

func resolve(root, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Dirs returns the directories agentkit writes into, parents first.
func (l Layout) Dirs() []string {
	return []string{
		filepath.Dir(l.StateFile),
		l.HistoryDir,
		l.HandoffDir,
		l.MetricsHistoryDir,
		l.ValidationDir,
	}
}

// HistoryFile returns the path of a report in dir named prefix-session.md.
func HistoryFile(dir, prefix, session string) string {
	return filepath.Join(dir, prefix+"-"+session+".md")
}
