package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestFileSystemInterface(t *testing.T) {
	var _ FileSystem = &OSFileSystem{}
	var _ FileSystem = &MemoryFileSystem{}
}

func TestOSFileSystem(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()
	testPath := filepath.Join(dir, "test.txt")

	content := []byte("test content")
	if err := fs.WriteFile(testPath, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", data, content)
	}

	if !fs.Exists(testPath) {
		t.Error("Exists returned false for existing file")
	}

	info, err := fs.Stat(testPath)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("Size mismatch: got %d, want %d", info.Size(), len(content))
	}

	if fs.IsDir(testPath) {
		t.Error("IsDir returned true for file")
	}
	if !fs.IsDir(dir) {
		t.Error("IsDir returned false for directory")
	}
	if fs.Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists returned true for missing file")
	}
}

func TestOSFileSystemMkdirAllAndWalk(t *testing.T) {
	fs := NewOSFileSystem()
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b", "c")
	if err := fs.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if !fs.IsDir(nested) {
		t.Error("Nested directory was not created")
	}

	if err := os.WriteFile(filepath.Join(nested, "rule.mdc"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	var files []string
	err := fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(files) != 1 || files[0] != "rule.mdc" {
		t.Errorf("Walk found %v, want [rule.mdc]", files)
	}
}

func TestMemoryFileSystem(t *testing.T) {
	fs := NewMemoryFileSystem()

	path := "/test/file.txt"
	content := []byte("memory content")
	if err := fs.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", data, content)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != int64(len(content)) {
		t.Errorf("Size mismatch: got %d, want %d", info.Size(), len(content))
	}

	fs.Remove(path)
	if fs.Exists(path) {
		t.Error("Exists returned true after Remove")
	}
	if _, err := fs.ReadFile(path); !os.IsNotExist(err) {
		t.Errorf("ReadFile after Remove = %v, want not exist", err)
	}
}

func TestMemoryFileSystemModes(t *testing.T) {
	fs := NewMemoryFileSystem()
	fs.AddExecutable("/tools/run.sh", "#!/bin/sh")

	info, err := fs.Stat("/tools/run.sh")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("AddExecutable should set executable bits")
	}

	fs.AddFile("/tools/run.sh", "plain")
	info, _ = fs.Stat("/tools/run.sh")
	if info.Mode()&0111 != 0 {
		t.Error("AddFile should reset the mode")
	}
}

func TestMemoryFileSystemTouch(t *testing.T) {
	fs := NewMemoryFileSystem()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fs.AddFile("/state.json", "{}")
	fs.Touch("/state.json", at)

	info, _ := fs.Stat("/state.json")
	if !info.ModTime().Equal(at) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), at)
	}
}

func TestMemoryFileSystemGlobAndWalk(t *testing.T) {
	fs := NewMemoryFileSystem()
	fs.AddDir("/rules")
	fs.AddDir("/rules/sub")
	fs.AddFile("/rules/a.mdc", "")
	fs.AddFile("/rules/sub/b.mdc", "")
	fs.AddFile("/other/c.mdc", "")

	matches, _ := fs.Glob("/rules/*.mdc")
	if len(matches) != 1 || matches[0] != "/rules/a.mdc" {
		t.Errorf("Glob = %v, want [/rules/a.mdc]", matches)
	}

	var files []string
	_ = fs.Walk("/rules", func(path string, info os.FileInfo, err error) error {
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	if len(files) != 2 || files[0] != "/rules/a.mdc" || files[1] != "/rules/sub/b.mdc" {
		t.Errorf("Walk = %v", files)
	}
}
