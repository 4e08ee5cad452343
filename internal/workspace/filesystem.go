package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileSystem abstracts the file operations agentkit performs against a
// project so validators and report writers can be tested without touching
// the real filesystem.
type FileSystem interface {
	// ReadFile reads a file and returns its contents.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file with the given permissions.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file info.
	Stat(path string) (fs.FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Exists checks if a path exists.
	Exists(path string) bool

	// IsDir checks if a path is a directory.
	IsDir(path string) bool

	// Glob returns file paths matching a pattern.
	Glob(pattern string) ([]string, error)

	// Walk walks a directory tree.
	Walk(root string, fn filepath.WalkFunc) error
}

// OSFileSystem implements FileSystem using the real OS filesystem.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile reads a file.
func (f *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file.
func (f *OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Stat returns file info.
func (f *OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates a directory and parents.
func (f *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Exists checks if a path exists.
func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory.
func (f *OSFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Glob returns matching paths.
func (f *OSFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// Walk walks a directory tree.
func (f *OSFileSystem) Walk(root string, fn filepath.WalkFunc) error {
	return filepath.Walk(root, fn)
}

// MemoryFileSystem implements FileSystem using an in-memory map.
// Use this for testing to avoid touching the real filesystem.
type MemoryFileSystem struct {
	files    map[string][]byte
	dirs     map[string]bool
	modes    map[string]fs.FileMode
	modTimes map[string]time.Time
}

// NewMemoryFileSystem creates a new in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		modes:    make(map[string]fs.FileMode),
		modTimes: make(map[string]time.Time),
	}
}

// ReadFile reads from memory.
func (m *MemoryFileSystem) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// WriteFile writes to memory.
func (m *MemoryFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	m.files[path] = data
	m.modes[path] = perm
	return nil
}

// Stat returns fake file info.
func (m *MemoryFileSystem) Stat(path string) (fs.FileInfo, error) {
	if m.dirs[path] {
		return &memFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	if data, ok := m.files[path]; ok {
		mode, ok := m.modes[path]
		if !ok {
			mode = 0644
		}
		return &memFileInfo{
			name:    filepath.Base(path),
			size:    int64(len(data)),
			mode:    mode,
			modTime: m.modTimes[path],
		}, nil
	}
	return nil, os.ErrNotExist
}

// MkdirAll marks directories as existing.
func (m *MemoryFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	m.dirs[path] = true
	return nil
}

// Exists checks if path exists.
func (m *MemoryFileSystem) Exists(path string) bool {
	if m.dirs[path] {
		return true
	}
	_, ok := m.files[path]
	return ok
}

// IsDir checks if path is a directory.
func (m *MemoryFileSystem) IsDir(path string) bool {
	return m.dirs[path]
}

// Glob matches file paths only.
func (m *MemoryFileSystem) Glob(pattern string) ([]string, error) {
	var matches []string
	for path := range m.files {
		if matched, _ := filepath.Match(pattern, path); matched {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

// Walk walks the in-memory tree.
func (m *MemoryFileSystem) Walk(root string, fn filepath.WalkFunc) error {
	for path := range m.dirs {
		if path == root || hasPrefix(path, root+"/") {
			info := &memFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}
			if err := fn(path, info, nil); err != nil {
				return err
			}
		}
	}
	for path := range m.files {
		if hasPrefix(path, root+"/") || path == root {
			info, _ := m.Stat(path)
			if err := fn(path, info, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddFile adds a file to the memory filesystem (test helper).
func (m *MemoryFileSystem) AddFile(path string, content string) {
	m.files[path] = []byte(content)
	delete(m.modes, path)
}

// AddExecutable adds a file with the executable bits set (test helper).
func (m *MemoryFileSystem) AddExecutable(path string, content string) {
	m.files[path] = []byte(content)
	m.modes[path] = 0755
}

// AddDir adds a directory to the memory filesystem (test helper).
func (m *MemoryFileSystem) AddDir(path string) {
	m.dirs[path] = true
}

// Remove deletes a file or directory entry (test helper).
func (m *MemoryFileSystem) Remove(path string) {
	delete(m.files, path)
	delete(m.modes, path)
	delete(m.modTimes, path)
	delete(m.dirs, path)
}

// Touch sets the modification time of a file (test helper).
func (m *MemoryFileSystem) Touch(path string, at time.Time) {
	m.modTimes[path] = at
}

// memFileInfo implements fs.FileInfo for memory files.
type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return i.size }
func (i *memFileInfo) Mode() fs.FileMode  { return i.mode }
func (i *memFileInfo) ModTime() time.Time { return i.modTime }
func (i *memFileInfo) IsDir() bool        { return i.isDir }
func (i *memFileInfo) Sys() interface{}   { return nil }

// hasPrefix checks if s starts with prefix.
func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
