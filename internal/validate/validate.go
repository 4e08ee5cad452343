// Package validate checks a project tree against the expected agent
// workflow setup and aggregates pass/warn/fail results per category.
package validate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/rtmx-ai/agentkit/internal/workspace"
)

// Status is the outcome of one category.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Category names in battery order.
const (
	CategoryPackageManager = "package_manager"
	CategoryRules          = "rules"
	CategoryDependencies   = "dependencies"
	CategoryScripts        = "scripts"
	CategoryAgentSystem    = "agent_system"
	CategoryDocumentation  = "documentation"
	CategoryTesting        = "testing"
)

// Categories returns every category name in battery order.
func Categories() []string {
	return []string{
		CategoryPackageManager,
		CategoryRules,
		CategoryDependencies,
		CategoryScripts,
		CategoryAgentSystem,
		CategoryDocumentation,
		CategoryTesting,
	}
}

// CategoryResult holds the checks that passed and the issues found for one
// category.
type CategoryResult struct {
	Name   string   `json:"name"`
	Status Status   `json:"status"`
	Checks []string `json:"checks"`
	Issues []string `json:"issues"`
}

// Title returns the display name ("package_manager" -> "Package Manager").
func (r *CategoryResult) Title() string {
	words := strings.Split(r.Name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (r *CategoryResult) pass(format string, args ...any) {
	r.Checks = append(r.Checks, fmt.Sprintf(format, args...))
}

// warn records an optional miss. It never downgrades a failure.
func (r *CategoryResult) warn(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
	if r.Status != StatusFail {
		r.Status = StatusWarn
	}
}

func (r *CategoryResult) fail(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
	r.Status = StatusFail
}

// Report is the result of one validation run.
type Report struct {
	Categories []*CategoryResult `json:"categories"`
	HasErrors  bool              `json:"has_errors"`
}

// Get returns the result for a category, or nil if it was skipped.
func (r *Report) Get(name string) *CategoryResult {
	for _, c := range r.Categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Warnings counts the categories with status warn.
func (r *Report) Warnings() int {
	n := 0
	for _, c := range r.Categories {
		if c.Status == StatusWarn {
			n++
		}
	}
	return n
}

// Passed reports whether no required check failed.
func (r *Report) Passed() bool {
	return !r.HasErrors
}

// Summary returns the one-line verdict of the run.
func (r *Report) Summary() string {
	if r.HasErrors {
		return "Validation FAILED - Critical issues found"
	}
	if w := r.Warnings(); w > 0 {
		return fmt.Sprintf("Validation PASSED with %d warning(s)", w)
	}
	return "Validation PASSED - All checks successful!"
}

// Options configures the battery. Paths are relative to the project root.
type Options struct {
	Skip []string

	PackageManager     string
	Lockfile           string
	ForbiddenLockfiles []string

	RulesDir     string
	RulesPattern string
	MinRules     int

	Dependencies []string
	Scripts      []string

	AgentDirs  []string
	AgentTools []string

	DocsDir     string
	DocSections []string

	TestDirs    []string
	TestConfigs []string
}

// DefaultOptions returns the stock battery for a pnpm-managed TypeScript
// project with a Cursor rule set.
func DefaultOptions() Options {
	return Options{
		PackageManager:     "pnpm",
		Lockfile:           "pnpm-lock.yaml",
		ForbiddenLockfiles: []string{"package-lock.json", "npm-shrinkwrap.json"},
		RulesDir:           ".cursor/rules",
		RulesPattern:       "*.mdc",
		MinRules:           34,
		Dependencies: []string{
			"vitest",
			"pino",
			"@tanstack/react-start",
			"drizzle-orm",
			"tailwindcss",
		},
		Scripts: []string{
			"dev", "build", "preview", "test", "lint",
			"type-check", "format", "test:safe", "lint:safe",
		},
		AgentDirs: []string{
			".agent/current",
			".agent/history",
			".agent/tools",
			".agent/templates",
		},
		AgentTools: []string{
			".agent/tools/update-progress.py",
			".agent/tools/generate-handoff.py",
			".agent/tools/validate-state.py",
		},
		DocsDir: "docs",
		DocSections: []string{
			"00_INDEX.md",
			"01_getting-started",
			"02_architecture",
			"03_development",
		},
		TestDirs:    []string{"test", "e2e"},
		TestConfigs: []string{"vitest.config.ts", "playwright.config.ts", "vitest.bdd.config.ts"},
	}
}

// Validator runs the battery against one project root.
type Validator struct {
	fs   workspace.FileSystem
	root string
	opts Options

	pkg *packageFile
}

// New creates a validator for root.
func New(fs workspace.FileSystem, root string, opts Options) *Validator {
	return &Validator{fs: fs, root: root, opts: opts}
}

type check struct {
	name string
	run  func(*CategoryResult)
}

func (v *Validator) battery() []check {
	return []check{
		{CategoryPackageManager, v.checkPackageManager},
		{CategoryRules, v.checkRules},
		{CategoryDependencies, v.checkDependencies},
		{CategoryScripts, v.checkScripts},
		{CategoryAgentSystem, v.checkAgentSystem},
		{CategoryDocumentation, v.checkDocumentation},
		{CategoryTesting, v.checkTesting},
	}
}

// Run evaluates every category that is not skipped.
func (v *Validator) Run() *Report {
	skip := make(map[string]bool, len(v.opts.Skip))
	for _, name := range v.opts.Skip {
		skip[strings.TrimSpace(name)] = true
	}

	v.pkg = v.loadPackageFile()
	report := &Report{}
	for _, c := range v.battery() {
		if skip[c.name] {
			slog.Debug("validation category skipped", "category", c.name)
			continue
		}
		result := &CategoryResult{Name: c.name, Status: StatusPass, Checks: []string{}, Issues: []string{}}
		c.run(result)
		if result.Status == StatusFail {
			report.HasErrors = true
		}
		report.Categories = append(report.Categories, result)
	}
	return report
}

// UnknownSkips returns the names in skip that are not categories.
func UnknownSkips(skip []string) []string {
	known := make(map[string]bool)
	for _, name := range Categories() {
		known[name] = true
	}
	var unknown []string
	for _, name := range skip {
		if !known[strings.TrimSpace(name)] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

func (v *Validator) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(v.root, rel)
}
