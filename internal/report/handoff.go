package report

import (
	"fmt"
	"strings"

	"github.com/rtmx-ai/agentkit/internal/output"
	"github.com/rtmx-ai/agentkit/internal/progress"
)

// Handoff renders the end-of-session handoff report.
func Handoff(state *progress.State, ctx Context) string {
	var b strings.Builder
	m := state.Metrics

	b.WriteString("# Handoff Report\n\n")
	fmt.Fprintf(&b, "**Project**: %s\n", orUnknown(ctx.Project))
	fmt.Fprintf(&b, "**Date**: %s\n", ctx.GeneratedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "**Session**: %s\n", ctx.SessionID)
	fmt.Fprintf(&b, "**Branch**: `%s`\n", orUnknown(ctx.Branch))

	completedNotes, inProgressNotes := ParseSessionNotes(ctx.SessionNotes)

	b.WriteString("\n## Session Summary\n\n### What I Worked On\n\n")
	if notes := strings.TrimSpace(ctx.SessionNotes); notes != "" {
		b.WriteString(notes + "\n")
	} else {
		b.WriteString("- General development and improvements\n")
	}

	b.WriteString("\n### What I Completed\n\n")
	switch {
	case len(completedNotes) > 0:
		writeItems(&b, "- ✅ ", completedNotes)
	case len(state.Tasks.Completed) > 0:
		writeItems(&b, "- ✅ ", lastN(state.Tasks.Completed, maxRecentCompleted))
	default:
		b.WriteString("- No completed items recorded\n")
	}

	b.WriteString("\n### What's In Progress\n\n")
	switch {
	case len(inProgressNotes) > 0:
		writeItems(&b, "- 🔄 ", inProgressNotes)
	case len(state.Tasks.InProgress) > 0:
		writeItems(&b, "- 🔄 ", state.Tasks.InProgress)
	default:
		b.WriteString("- No work in progress\n")
	}

	b.WriteString("\n## Current State\n\n")
	if notes := strings.TrimSpace(ctx.StateNotes); notes != "" {
		b.WriteString(notes + "\n")
	} else {
		b.WriteString("No current state information available.\n")
	}

	b.WriteString("\n### Code Changes\n\n")
	if len(ctx.ChangedFiles) == 0 {
		b.WriteString("- No significant file modifications detected\n")
	} else {
		shown := ctx.ChangedFiles
		if len(shown) > maxChangedFiles {
			shown = shown[:maxChangedFiles]
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		if extra := len(ctx.ChangedFiles) - len(shown); extra > 0 {
			fmt.Fprintf(&b, "- ... and %d more\n", extra)
		}
	}

	b.WriteString("\n## Project Status\n\n### Overall Progress\n\n")
	fmt.Fprintf(&b, "- **Completion**: %s\n", percent(m.OverallCompletion))
	fmt.Fprintf(&b, "- **Phase**: %s\n", orUnknown(m.Phase))
	fmt.Fprintf(&b, "- **Health**: %s\n", orUnknown(m.Health))
	fmt.Fprintf(&b, "- **Last Updated**: %s\n", orUnknown(state.Metadata.LastUpdated))

	b.WriteString("\n### Component Status\n")
	for _, category := range state.Components.Categories() {
		fmt.Fprintf(&b, "\n**%s**:\n", output.Humanize(category))
		for _, name := range state.Components.Names(category) {
			fmt.Fprintf(&b, "- %s: %d%%\n", output.Humanize(name), state.Components[category][name])
		}
	}

	b.WriteString("\n## Active Blockers\n\n")
	if all := blockers(state, ctx); len(all) > 0 {
		writeItems(&b, "- 🚧 ", all)
	} else {
		b.WriteString("No blockers reported.\n")
	}

	b.WriteString("\n## Next Steps\n\n")
	if pending := state.Tasks.Pending; len(pending) > 0 {
		if len(pending) > maxNextSteps {
			pending = pending[:maxNextSteps]
		}
		for i, task := range pending {
			fmt.Fprintf(&b, "%d. %s\n", i+1, task)
		}
	} else {
		b.WriteString("- No pending tasks\n")
	}

	b.WriteString("\n## Recommendations\n\n")
	writeItems(&b, "- ", HandoffRecommendations(m.OverallCompletion))

	b.WriteString("\n## Session Metrics\n\n")
	fmt.Fprintf(&b, "- **Files Modified**: %d\n", len(ctx.ChangedFiles))
	fmt.Fprintf(&b, "- **Overall Progress**: %s\n", percent(m.OverallCompletion))
	fmt.Fprintf(&b, "- **Tasks**: %d completed, %d in progress, %d pending\n",
		len(state.Tasks.Completed), len(state.Tasks.InProgress), len(state.Tasks.Pending))

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "_Generated by `agentctl handoff` at %s_\n", progress.Timestamp(ctx.GeneratedAt))
	return b.String()
}

// HandoffRecommendations returns advice for the next session by completion
// band: below 25, below 50, below 75, and the rest.
func HandoffRecommendations(overall float64) []string {
	switch {
	case overall < 25:
		return []string{
			"Focus on completing the agent system setup first",
			"Make sure everyone on the team knows the plan",
			"Create a backup branch before making large changes",
		}
	case overall < 50:
		return []string{
			"Start documenting decisions as they are made",
			"Reorganize scripts while the team adapts to the workflow",
			"Schedule a walkthrough of the new workflow",
		}
	case overall < 75:
		return []string{
			"Focus on integration and testing",
			"Gather feedback on the new workflows",
			"Update CI/CD pipelines",
		}
	default:
		return []string{
			"Complete final testing and validation",
			"Document lessons learned",
			"Plan the release",
		}
	}
}

func writeItems(b *strings.Builder, prefix string, items []string) {
	for _, item := range items {
		b.WriteString(prefix + item + "\n")
	}
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
