package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var updateGolden = flag.Bool("update", false, "rewrite golden files under testdata/")

// Update reports whether golden files should be rewritten (go test -update).
func Update() bool {
	return *updateGolden
}

// Golden compares a rendered report against testdata/<name>.golden.
// Line endings are normalized and ANSI escapes stripped before comparing,
// so colored terminal output and markdown can share the helper.
func Golden(t *testing.T, name, actual string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	actual = Normalize(actual)

	if Update() {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create testdata: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
		t.Logf("updated %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s (run go test -update to create it): %v", path, err)
	}
	if expected := Normalize(string(want)); actual != expected {
		t.Errorf("%s mismatch (go test -update rewrites it)\n--- got\n%s\n--- want\n%s", path, actual, expected)
	}
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// StripANSI removes terminal color escapes.
func StripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}

// Normalize strips ANSI escapes and converts CRLF line endings.
func Normalize(s string) string {
	return strings.ReplaceAll(StripANSI(s), "\r\n", "\n")
}
