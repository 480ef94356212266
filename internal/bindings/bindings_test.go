//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrarySearchPaths(t *testing.T) {
	assert.NotEmpty(t, LibrarySearchPaths(), "LibrarySearchPaths should return at least one path")
}

func TestSearchPathEnvComesFirst(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(SearchPathEnv, dir)

	paths := LibrarySearchPaths()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths, dir)
}

func TestAddSearchPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	AddSearchPath("", dir)
	assert.Contains(t, LibrarySearchPaths(), dir)
}

func TestFindLibraryMissing(t *testing.T) {
	_, err := FindLibrary("definitely-not-a-real-lib-2.0", 0)
	assert.True(t, errors.Is(err, ErrLibraryNotFound))
}

func TestFindGObject(t *testing.T) {
	path, err := FindLibrary("gobject-2.0", glibABI)
	if err != nil {
		t.Logf("GObject not found (expected if GLib is not installed): %v", err)
		return
	}
	assert.NotEmpty(t, path)
}

// Integration test - only runs if GLib is available
func TestLoadGLib(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GLib load test in short mode")
	}

	if err := Load(); err != nil {
		t.Skipf("GLib not available: %v", err)
	}

	assert.True(t, IsLoaded())
	assert.NotZero(t, LibGLib())
	assert.NotZero(t, LibGObject())
	assert.Equal(t, "loaded", Status())

	_, err := LoadLibrary("definitely-not-a-real-lib-2.0", 0)
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}
