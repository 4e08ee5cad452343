package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/progress"
)

const (
	barWidth        = 20
	healthyOverall  = 90.0
	nearlyDone      = 95.0
	recentWindow    = 24 * time.Hour
	minHandoffCount = 3
)

// Indicator is one health check on the dashboard.
type Indicator struct {
	Label  string
	OK     bool
	Detail string
}

// Indicators evaluates the dashboard health checks.
func Indicators(state *progress.State, ctx Context) []Indicator {
	overall := state.Metrics.OverallCompletion
	all := blockers(state, ctx)
	recent := recentActivity(ctx)

	activity := "no recorded updates"
	if !ctx.Stats.StateModified.IsZero() {
		activity = "last update " + ctx.Stats.StateModified.UTC().Format("2006-01-02 15:04")
	}

	docs := "documentation directory missing"
	if ctx.Stats.DocsPresent {
		docs = "documentation directory present"
	}

	return []Indicator{
		{Label: "Overall Health", OK: overall >= healthyOverall, Detail: percent(overall) + " complete"},
		{Label: "Blockers", OK: len(all) == 0, Detail: fmt.Sprintf("%d reported", len(all))},
		{Label: "Recent Activity", OK: recent, Detail: activity},
		{Label: "Documentation", OK: ctx.Stats.DocsPresent, Detail: docs},
	}
}

func recentActivity(ctx Context) bool {
	if ctx.Stats.StateModified.IsZero() {
		return false
	}
	return ctx.GeneratedAt.Sub(ctx.Stats.StateModified) < recentWindow
}

// DashboardRecommendations returns the follow-ups suggested by the
// dashboard.
func DashboardRecommendations(state *progress.State, ctx Context) []string {
	overall := state.Metrics.OverallCompletion
	var recs []string
	if overall < nearlyDone {
		recs = append(recs, "Complete remaining components")
	}
	if !recentActivity(ctx) {
		recs = append(recs, "Check on progress - no recent updates")
	}
	if ctx.Stats.HandoffReports < minHandoffCount {
		recs = append(recs, "Generate more handoff reports for better continuity")
	}
	if overall >= nearlyDone {
		recs = append(recs,
			"Nearly complete - run a final validation",
			"Archive session artifacts",
		)
	}
	return recs
}

// Dashboard renders the metrics dashboard.
func Dashboard(state *progress.State, ctx Context) string {
	var b strings.Builder
	m := state.Metrics

	b.WriteString("# Metrics Dashboard\n\n")
	fmt.Fprintf(&b, "**Project**: %s\n", orUnknown(ctx.Project))
	fmt.Fprintf(&b, "**Generated**: %s\n", ctx.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Session**: %s\n", ctx.SessionID)

	b.WriteString("\n## 📊 Progress Overview\n\n")
	fmt.Fprintf(&b, "**Overall Completion**: %s\n", percent(m.OverallCompletion))
	fmt.Fprintf(&b, "**Current Phase**: %s\n", orUnknown(m.Phase))
	fmt.Fprintf(&b, "**Health**: %s\n", orUnknown(m.Health))

	b.WriteString("\n### Component Progress\n")
	for _, category := range state.Components.Categories() {
		fmt.Fprintf(&b, "\n#### %s\n\n", output.Humanize(category))
		for _, name := range state.Components.Names(category) {
			v := state.Components[category][name]
			fmt.Fprintf(&b, "- %s: `%s` %d%%\n", output.Humanize(name), output.Bar(float64(v), barWidth), v)
		}
	}

	if categories := state.Components.Categories(); len(categories) > 0 {
		b.WriteString("\n### Category Averages\n\n")
		for _, category := range categories {
			avg := state.Components.CategoryAverage(category)
			fmt.Fprintf(&b, "- %s: `%s` %s\n", output.Humanize(category), output.Bar(avg, barWidth), percent(avg))
		}
	}

	b.WriteString("\n## ✅ Tasks\n\n")
	fmt.Fprintf(&b, "- Completed: %d\n", len(state.Tasks.Completed))
	fmt.Fprintf(&b, "- In Progress: %d\n", len(state.Tasks.InProgress))
	fmt.Fprintf(&b, "- Pending: %d\n", len(state.Tasks.Pending))

	b.WriteString("\n## 📁 File Statistics\n\n")
	fmt.Fprintf(&b, "- Handoff Reports: %d\n", ctx.Stats.HandoffReports)
	fmt.Fprintf(&b, "- Validation Reports: %d\n", ctx.Stats.ValidationReports)
	fmt.Fprintf(&b, "- State Notes: %s\n", presence(ctx.Stats.StateNotesPresent))
	fmt.Fprintf(&b, "- Blocker Notes: %s\n", presence(ctx.Stats.BlockersPresent))

	if len(ctx.Adoption) > 0 {
		b.WriteString("\n## 🧭 Adoption\n\n")
		b.WriteString("| Component | Paths | Derived | Recorded |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, res := range ctx.Adoption {
			recorded := "-"
			if v, ok := state.Components[res.Rule.Category][res.Rule.Component]; ok {
				recorded = fmt.Sprintf("%d%%", v)
			}
			fmt.Fprintf(&b, "| %s | %d/%d | %d%% | %s |\n", res.Rule.Key(),
				len(res.Present), len(res.Present)+len(res.Missing), res.Score(), recorded)
		}
	}

	b.WriteString("\n## 🏥 Health Indicators\n\n")
	for _, ind := range Indicators(state, ctx) {
		icon := "✅"
		if !ind.OK {
			icon = "⚠️"
		}
		fmt.Fprintf(&b, "- %s %s: %s\n", icon, ind.Label, ind.Detail)
	}

	b.WriteString("\n## 📈 Trend\n\n")
	if len(ctx.Trend) == 0 {
		b.WriteString("No history recorded yet.\n")
	} else {
		b.WriteString("| Recorded | Overall | Phase | Reason |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, p := range ctx.Trend {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				p.RecordedAt.UTC().Format("2006-01-02 15:04"), percent(p.Overall), orUnknown(p.Phase), p.Reason)
		}
	}

	b.WriteString("\n## 💡 Recommendations\n\n")
	if recs := DashboardRecommendations(state, ctx); len(recs) > 0 {
		writeItems(&b, "- ", recs)
	} else {
		b.WriteString("- Keep up the current pace\n")
	}
	return b.String()
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
