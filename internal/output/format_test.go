package output

import (
	"strings"
	"testing"
)

func TestColorScheme(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"pass", Green},
		{"warn", Yellow},
		{"fail", Red},
		{"completed", Green},
		{"in_progress", Yellow},
		{"pending", Dim},
		{"GREEN", Green},
		{"red", Red},
		{"other", White},
	}

	for _, tt := range tests {
		got := StatusColor(tt.status)
		if got != tt.expected {
			t.Errorf("StatusColor(%q) = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status string
		icon   string
	}{
		{"pass", "✓"},
		{"warn", "⚠"},
		{"fail", "✗"},
		{"completed", "✓"},
		{"in_progress", "⚠"},
		{"pending", "○"},
		{"bogus", "?"},
	}

	DisableColor()
	defer EnableColor()
	for _, tt := range tests {
		if got := StatusIcon(tt.status); got != tt.icon {
			t.Errorf("StatusIcon(%q) without color = %q, want %q", tt.status, got, tt.icon)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent float64
		width   int
		want    string
	}{
		{0, 10, "[░░░░░░░░░░]"},
		{50, 10, "[█████░░░░░]"},
		{85, 20, "[" + strings.Repeat("█", 17) + strings.Repeat("░", 3) + "]"},
		{100, 4, "[████]"},
		{150, 4, "[████]"},
		{-5, 4, "[░░░░]"},
	}

	for _, tt := range tests {
		if got := Bar(tt.percent, tt.width); got != tt.want {
			t.Errorf("Bar(%v, %d) = %q, want %q", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestProgressBarWithoutColor(t *testing.T) {
	DisableColor()
	defer EnableColor()

	for _, pct := range []float64{100, 85, 80, 75, 50, 49, 25, 0} {
		bar := ProgressBar(pct, 20)
		if bar != Bar(pct, 20) {
			t.Errorf("ProgressBar(%v) = %q, want plain bar", pct, bar)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	DisableColor()
	defer EnableColor()

	tests := []struct {
		percent float64
		want    string
	}{
		{83.3, "83.3%"},
		{100, "100.0%"},
		{0, "0.0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.percent); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestHeader(t *testing.T) {
	DisableColor()
	defer EnableColor()

	h := Header("Progress", 30)
	if len(h) != 30 || !strings.Contains(h, " Progress ") {
		t.Errorf("Header = %q", h)
	}
	s := SubHeader("Tasks", 20)
	if len(s) != 20 || !strings.HasPrefix(s, "-") {
		t.Errorf("SubHeader = %q", s)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"✅ unicode text", 6, "✅ u..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.text, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"real_time_sync", "Real Time Sync"},
		{"api", "Api"},
		{"to_migrate", "To Migrate"},
		{"ci-cd", "Ci Cd"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Humanize(tt.key); got != tt.want {
			t.Errorf("Humanize(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

