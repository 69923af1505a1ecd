package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates path and any missing parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// testTree lays out a dist root and its mirrored src root under a temp dir.
func testTree(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		DistDir: filepath.Join(root, "dist", "src"),
		SrcDir:  filepath.Join(root, "lib"),
		Pattern: defaultPattern,
	}
	require.NoError(t, os.MkdirAll(cfg.DistDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.SrcDir, 0o755))
	return cfg
}

// fakeMinifier returns canned text per absolute path and fails for anything
// it does not know.
type fakeMinifier struct {
	assets map[string]string

	mu    sync.Mutex
	calls []string
}

func (f *fakeMinifier) MinifyTemplate(path string) (Asset, error) { return f.lookup(path) }
func (f *fakeMinifier) MinifyStyle(path string) (Asset, error)    { return f.lookup(path) }

func (f *fakeMinifier) lookup(path string) (Asset, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	text, ok := f.assets[path]
	if !ok {
		return Asset{}, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return Asset{Path: path, Text: text}, nil
}

func (f *fakeMinifier) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := append([]string(nil), f.calls...)
	sort.Strings(calls)
	return calls
}

// recordingHandler collects every file handed to it by the walker.
type recordingHandler struct {
	mu    sync.Mutex
	files []string
	fail  map[string]error
}

func (r *recordingHandler) Inline(file string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, file)
	return r.fail[file]
}

func (r *recordingHandler) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := append([]string(nil), r.files...)
	sort.Strings(files)
	return files
}
