package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rtmx-ai/agentkit/internal/config"
	"github.com/rtmx-ai/agentkit/internal/ledger"
	"github.com/rtmx-ai/agentkit/internal/progress"
	"github.com/rtmx-ai/agentkit/internal/report"
	"github.com/rtmx-ai/agentkit/internal/vcs"
	"github.com/rtmx-ai/agentkit/internal/workspace"
)

// trendLimit is how many ledger snapshots the dashboard shows.
const trendLimit = 10

var (
	// now is the clock for timestamps and session ids.
	now = time.Now
	// newStateID mints metadata.state_id for documents created by init.
	newStateID = uuid.NewString
	// newRepository opens the version-control collaborator for a root.
	newRepository = func(dir string) vcs.Repository { return vcs.NewGit(dir) }
)

// project is the environment of one invocation, resolved by setup.
type project struct {
	root   string
	cfg    *config.Config
	layout workspace.Layout
	fs     workspace.FileSystem
}

var proj *project

func newProject(root string, cfg *config.Config) *project {
	return &project{
		root:   root,
		cfg:    cfg,
		layout: cfg.Layout(root),
		fs:     workspace.NewOSFileSystem(),
	}
}

func (p *project) tracker() *progress.Tracker {
	tr := progress.NewTracker(p.cfg.PhaseTable())
	tr.Now = now
	return tr
}

func (p *project) store() *progress.Store {
	tr := p.tracker()
	return progress.NewStore(p.layout.StateFile,
		progress.WithScaffold(p.cfg.ScaffoldFor(p.root)),
		progress.WithTracker(tr),
	)
}

// projectName prefers the name recorded in the document.
func (p *project) projectName(state *progress.State) string {
	if state != nil && state.Metadata.Project != "" {
		return state.Metadata.Project
	}
	return p.cfg.ProjectName(p.root)
}

// openLedger returns nil when the ledger is disabled.
func (p *project) openLedger() (*ledger.Ledger, error) {
	if !p.cfg.Agentkit.Ledger.Enabled {
		return nil, nil
	}
	return ledger.Open(p.layout.LedgerFile)
}

// withLedger runs fn against the ledger. Ledger failures are logged and
// never fail the command.
func (p *project) withLedger(fn func(*ledger.Ledger) error) {
	l, err := p.openLedger()
	if err != nil {
		slog.Warn("ledger unavailable", "path", p.layout.LedgerFile, "error", err)
		return
	}
	if l == nil {
		return
	}
	defer l.Close()

	if err := fn(l); err != nil {
		slog.Warn("ledger write failed", "path", p.layout.LedgerFile, "error", err)
	}
}

// save persists state and appends a ledger snapshot.
func (p *project) save(ctx context.Context, store *progress.Store, state *progress.State, reason string) error {
	if err := store.Save(state); err != nil {
		return err
	}
	p.withLedger(func(l *ledger.Ledger) error {
		snap, err := l.RecordSnapshot(ctx, ledger.NewSnapshot(state, reason, now()))
		if err == nil {
			slog.Debug("snapshot recorded", "id", snap.ID, "reason", reason)
		}
		return err
	})
	return nil
}

// readOptional returns the content of an optional file, "" when absent.
func (p *project) readOptional(path string) string {
	if path == "" {
		return ""
	}
	data, err := p.fs.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("optional file unreadable", "path", path, "error", err)
		}
		return ""
	}
	return string(data)
}

func (p *project) countReports(dir, prefix string) int {
	matches, err := p.fs.Glob(filepath.Join(dir, prefix+"-*.md"))
	if err != nil {
		return 0
	}
	return len(matches)
}

func (p *project) stats() report.Stats {
	stats := report.Stats{
		HandoffReports:    p.countReports(p.layout.HandoffDir, "handoff"),
		ValidationReports: p.countReports(p.layout.ValidationDir, "validation"),
		StateNotesPresent: p.fs.Exists(p.layout.StateNotes),
		BlockersPresent:   p.fs.Exists(p.layout.BlockersFile),
		DocsPresent:       p.fs.IsDir(p.layout.DocsDir),
	}
	if info, err := p.fs.Stat(p.layout.StateFile); err == nil {
		stats.StateModified = info.ModTime()
	}
	return stats
}

func (p *project) trend(ctx context.Context) []report.TrendPoint {
	var points []report.TrendPoint
	p.withLedger(func(l *ledger.Ledger) error {
		snaps, err := l.Recent(ctx, trendLimit)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			points = append(points, report.TrendPoint{
				RecordedAt: s.RecordedAt,
				Overall:    s.Overall,
				Phase:      s.Phase,
				Reason:     s.Reason,
			})
		}
		return nil
	})
	return points
}

// reportContext gathers everything the renderers need besides the state.
func (p *project) reportContext(ctx context.Context, state *progress.State, notes string) report.Context {
	repo := newRepository(p.root)
	return report.Context{
		Project:      p.projectName(state),
		Branch:       repo.Branch(),
		ChangedFiles: vcs.ChangedFiles(repo),
		SessionID:    report.NewSessionID(),
		GeneratedAt:  now().UTC(),
		SessionNotes: notes,
		StateNotes:   p.readOptional(p.layout.StateNotes),
		BlockerNotes: report.ParseBlockerNotes(p.readOptional(p.layout.BlockersFile)),
		Stats:        p.stats(),
		Trend:        p.trend(ctx),
		Adoption:     progress.EvaluateScan(p.fs, p.root, p.cfg.ScanRules()),
	}
}

// writeReport writes content to the history file and every copy in also,
// then records the report in the ledger. It returns the history path.
func (p *project) writeReport(ctx context.Context, kind report.Kind, rc report.Context, dir, prefix, content string, also ...string) (string, error) {
	path := workspace.HistoryFile(dir, prefix, rc.SessionID)
	for _, target := range append([]string{path}, also...) {
		if err := p.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
		if err := p.fs.WriteFile(target, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		slog.Debug("report written", "kind", kind, "path", target)
	}

	p.withLedger(func(l *ledger.Ledger) error {
		return l.RecordReport(ctx, ledger.Report{
			SessionID:   rc.SessionID,
			Kind:        string(kind),
			Path:        p.relative(path),
			GeneratedAt: rc.GeneratedAt,
		})
	})
	return path, nil
}

// relative shortens path for display when it lies under the root.
func (p *project) relative(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func fprintln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
