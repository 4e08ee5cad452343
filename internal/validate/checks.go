package validate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// packageFile is the subset of package.json the battery reads.
type packageFile struct {
	exists bool
	err    error

	PackageManager  string            `json:"packageManager"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

func (v *Validator) loadPackageFile() *packageFile {
	data, err := v.fs.ReadFile(v.path("package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &packageFile{}
		}
		return &packageFile{exists: true, err: err}
	}
	pkg := &packageFile{exists: true}
	if err := json.Unmarshal(data, pkg); err != nil {
		pkg.err = err
	}
	return pkg
}

// usable reports whether package.json can be consulted, recording a failure
// when it exists but cannot be parsed.
func (p *packageFile) usable(r *CategoryResult) bool {
	if !p.exists {
		r.warn("package.json not found")
		return false
	}
	if p.err != nil {
		r.fail("package.json could not be parsed: %v", p.err)
		return false
	}
	return true
}

func (v *Validator) checkPackageManager(r *CategoryResult) {
	if v.opts.Lockfile != "" {
		if v.fs.Exists(v.path(v.opts.Lockfile)) {
			r.pass("%s exists", v.opts.Lockfile)
		} else {
			r.fail("Missing %s", v.opts.Lockfile)
		}
	}

	for _, artifact := range v.opts.ForbiddenLockfiles {
		if v.fs.Exists(v.path(artifact)) {
			r.fail("Found forbidden artifact: %s", artifact)
		} else {
			r.pass("No %s found", artifact)
		}
	}

	if !v.pkg.exists {
		return
	}
	if v.pkg.err != nil {
		r.fail("package.json could not be parsed: %v", v.pkg.err)
		return
	}
	if v.pkg.PackageManager == "" || v.opts.PackageManager == "" {
		return
	}
	if strings.Contains(v.pkg.PackageManager, v.opts.PackageManager) {
		r.pass("packageManager specifies %s", v.opts.PackageManager)
	} else {
		r.warn("packageManager does not specify %s", v.opts.PackageManager)
	}
}

func (v *Validator) checkRules(r *CategoryResult) {
	dir := v.path(v.opts.RulesDir)
	if !v.fs.IsDir(dir) {
		r.fail("%s directory not found", v.opts.RulesDir)
		return
	}

	count := 0
	err := v.fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(v.opts.RulesPattern, filepath.Base(path)); ok {
			count++
		}
		return nil
	})
	if err != nil {
		r.fail("failed to scan %s: %v", v.opts.RulesDir, err)
		return
	}

	if count >= v.opts.MinRules {
		r.pass("Found %d rule files (expected %d+)", count, v.opts.MinRules)
	} else {
		r.warn("Found only %d rule files (expected %d)", count, v.opts.MinRules)
	}
}

func (v *Validator) checkDependencies(r *CategoryResult) {
	if !v.pkg.usable(r) {
		return
	}
	for _, dep := range v.opts.Dependencies {
		_, inDeps := v.pkg.Dependencies[dep]
		_, inDev := v.pkg.DevDependencies[dep]
		if inDeps || inDev {
			r.pass("Dependency %s found", dep)
		} else {
			r.warn("Missing dependency: %s", dep)
		}
	}
}

func (v *Validator) checkScripts(r *CategoryResult) {
	if !v.pkg.usable(r) {
		return
	}
	for _, script := range v.opts.Scripts {
		if _, ok := v.pkg.Scripts[script]; ok {
			r.pass("Script %q exists", script)
		} else {
			r.warn("Missing script: %s", script)
		}
	}
}

func (v *Validator) checkAgentSystem(r *CategoryResult) {
	for _, dir := range v.opts.AgentDirs {
		if v.fs.IsDir(v.path(dir)) {
			r.pass("%s exists", dir)
		} else {
			r.fail("Missing %s", dir)
		}
	}

	for _, tool := range v.opts.AgentTools {
		name := filepath.Base(tool)
		info, err := v.fs.Stat(v.path(tool))
		if err != nil {
			r.warn("Missing tool: %s", name)
			continue
		}
		r.pass("Tool %s exists", name)
		if info.Mode()&0111 != 0 {
			r.pass("Tool %s is executable", name)
		} else {
			r.warn("Tool %s is not executable", name)
		}
	}
}

func (v *Validator) checkDocumentation(r *CategoryResult) {
	docs := v.path(v.opts.DocsDir)
	if !v.fs.IsDir(docs) {
		r.fail("%s/ directory not found", v.opts.DocsDir)
		return
	}
	r.pass("%s/ directory exists", v.opts.DocsDir)

	for _, section := range v.opts.DocSections {
		if v.fs.Exists(filepath.Join(docs, section)) {
			r.pass("%s exists", section)
		} else {
			r.warn("Missing documentation: %s", section)
		}
	}
}

func (v *Validator) checkTesting(r *CategoryResult) {
	for _, dir := range v.opts.TestDirs {
		if v.fs.IsDir(v.path(dir)) {
			r.pass("%s/ directory exists", dir)
		} else {
			r.warn("Missing %s/ directory", dir)
		}
	}
	for _, cfg := range v.opts.TestConfigs {
		if v.fs.Exists(v.path(cfg)) {
			r.pass("%s exists", cfg)
		} else {
			r.warn("Missing %s", cfg)
		}
	}
}
