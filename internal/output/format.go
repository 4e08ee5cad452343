// Package output provides formatting and display utilities for agentkit.
package output

import (
	"fmt"
	"os"
	"strings"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Cyan      = "\033[36m"
	White     = "\033[37m"
	BoldRed   = "\033[1;31m"
	BoldGreen = "\033[1;32m"
)

var useColor = true

// DisableColor disables colored output.
func DisableColor() {
	useColor = false
}

// EnableColor enables colored output.
func EnableColor() {
	useColor = true
}

// IsColorEnabled returns whether color output is enabled.
func IsColorEnabled() bool {
	return useColor && isTerminal()
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Color applies a color to text if color is enabled.
func Color(text, color string) string {
	if !IsColorEnabled() {
		return text
	}
	return color + text + Reset
}

// StatusColor returns the color for a validation status, task bucket or
// health value.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "pass", "completed", "green":
		return Green
	case "warn", "in_progress", "yellow":
		return Yellow
	case "fail", "red":
		return Red
	case "pending":
		return Dim
	default:
		return White
	}
}

// StatusIcon returns a colored icon for a status.
func StatusIcon(status string) string {
	switch strings.ToLower(status) {
	case "pass", "completed":
		return Color("✓", Green)
	case "warn", "in_progress":
		return Color("⚠", Yellow)
	case "fail":
		return Color("✗", Red)
	case "pending":
		return Color("○", Dim)
	default:
		return "?"
	}
}

// barColor picks the completion color: >=80 green, >=50 yellow, else red.
func barColor(percent float64) string {
	switch {
	case percent >= 80:
		return Green
	case percent >= 50:
		return Yellow
	default:
		return Red
	}
}

// Bar renders an uncolored bar such as [████░░░░], for markdown output.
func Bar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// ProgressBar creates a visual progress bar.
func ProgressBar(percent float64, width int) string {
	return Color(Bar(percent, width), barColor(percent))
}

// Header creates a formatted header line.
func Header(text string, width int) string {
	padding := (width - len(text) - 2) / 2
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("=", padding) + " " + text + " " + strings.Repeat("=", padding)
	for len(line) < width {
		line += "="
	}
	return Color(line, Bold)
}

// SubHeader creates a formatted subheader line.
func SubHeader(text string, width int) string {
	padding := (width - len(text) - 2) / 2
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding) + " " + text + " " + strings.Repeat("-", padding)
	for len(line) < width {
		line += "-"
	}
	return Color(line, Dim)
}

// Checkmark returns a colored checkmark or X.
func Checkmark(ok bool) string {
	if ok {
		return Color("✓", Green)
	}
	return Color("✗", Red)
}

// FormatPercent formats a percentage with color.
func FormatPercent(percent float64) string {
	return Color(fmt.Sprintf("%.1f%%", percent), barColor(percent))
}

// Truncate truncates text to a maximum width with ellipsis.
func Truncate(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

// Humanize turns a snake_case key into title words ("real_time_sync" ->
// "Real Time Sync").
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
