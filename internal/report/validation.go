package report

import (
	"fmt"
	"strings"

	"github.com/rtmx-ai/agentkit/internal/validate"
)

func statusEmoji(s validate.Status) string {
	switch s {
	case validate.StatusPass:
		return "✅"
	case validate.StatusWarn:
		return "⚠️"
	default:
		return "❌"
	}
}

// Validation renders a validation run as markdown.
func Validation(r *validate.Report, ctx Context) string {
	var b strings.Builder

	b.WriteString("# Validation Report\n\n")
	fmt.Fprintf(&b, "**Project**: %s\n", orUnknown(ctx.Project))
	fmt.Fprintf(&b, "**Generated**: %s\n", ctx.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Session**: %s\n", ctx.SessionID)

	for _, c := range r.Categories {
		fmt.Fprintf(&b, "\n## %s %s\n\n", statusEmoji(c.Status), c.Title())
		for _, check := range c.Checks {
			fmt.Fprintf(&b, "- ✓ %s\n", check)
		}
		if len(c.Issues) > 0 {
			if len(c.Checks) > 0 {
				b.WriteString("\n")
			}
			b.WriteString("**Issues**:\n\n")
			for _, issue := range c.Issues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
		}
	}

	verdict := "✅"
	switch {
	case r.HasErrors:
		verdict = "❌"
	case r.Warnings() > 0:
		verdict = "⚠️"
	}
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "**%s %s**\n", verdict, r.Summary())
	return b.String()
}
