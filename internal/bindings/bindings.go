//go:build !ios && !android && (amd64 || arm64)

// Package bindings locates and loads the GLib shared libraries with purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gobj/internal/platform"
)

// ErrNotLoaded is returned when GLib functions are called before Load().
var ErrNotLoaded = errors.New("gobj: GLib libraries not loaded; call gobj.Init() first")

// ErrLibraryNotFound is returned when a required library cannot be found.
var ErrLibraryNotFound = errors.New("gobj: library not found")

// SearchPathEnv names the environment variable holding extra library
// directories, in the platform's list separator format.
const SearchPathEnv = "GOBJ_LIBRARY_PATH"

// GLib keeps ABI version 0 for the whole 2.x series.
const glibABI = 0

// Library handles
var (
	libGLib    uintptr
	libGObject uintptr

	loaded  atomic.Bool
	loadMu  sync.Mutex
	loadErr error

	pathsMu    sync.Mutex
	extraPaths []string

	extraMu   sync.Mutex
	extraLibs = map[string]uintptr{}
)

// IsLoaded returns true if the GLib libraries have been successfully loaded.
func IsLoaded() bool {
	return loaded.Load()
}

// Load loads libglib-2.0 and libgobject-2.0.
// It is safe to call multiple times. Once loading succeeds later calls are
// no-ops; after a failure the next call searches again, so directories added
// with AddSearchPath are picked up.
func Load() error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded.Load() {
		return nil
	}
	loadErr = doLoad()
	if loadErr == nil {
		loaded.Store(true)
	}
	return loadErr
}

func doLoad() error {
	var err error

	// gobject links against glib; load glib first so its symbols are global.
	libGLib, err = loadLibrary("glib-2.0", glibABI)
	if err != nil {
		return fmt.Errorf("loading libglib-2.0: %w", err)
	}

	libGObject, err = loadLibrary("gobject-2.0", glibABI)
	if err != nil {
		return fmt.Errorf("loading libgobject-2.0: %w", err)
	}
	return nil
}

// loadLibrary tries each candidate file name in every search path, then
// lets the system loader resolve the bare names.
func loadLibrary(name string, abi int) (uintptr, error) {
	names := platform.CandidateNames(name, abi)

	for _, dir := range LibrarySearchPaths() {
		for _, n := range names {
			if lib, err := tryOpen(filepath.Join(dir, n)); err == nil {
				return lib, nil
			}
		}
	}

	for _, n := range names {
		if lib, err := tryOpen(n); err == nil {
			return lib, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL so that type
// registrations in one library are visible to the others.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// FindLibrary searches for a library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string, abi int) (string, error) {
	names := platform.CandidateNames(name, abi)
	for _, dir := range LibrarySearchPaths() {
		for _, n := range names {
			p := filepath.Join(dir, n)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// AddSearchPath prepends directories to the library search order.
// It only affects libraries loaded after the call.
func AddSearchPath(dirs ...string) {
	pathsMu.Lock()
	defer pathsMu.Unlock()
	for _, d := range dirs {
		if d != "" {
			extraPaths = append(extraPaths, d)
		}
	}
}

// LibrarySearchPaths returns the directories searched for libraries, in order:
// AddSearchPath entries, GOBJ_LIBRARY_PATH, the platform loader variable,
// then standard install locations.
func LibrarySearchPaths() []string {
	pathsMu.Lock()
	paths := append([]string(nil), extraPaths...)
	pathsMu.Unlock()

	if p := os.Getenv(SearchPathEnv); p != "" {
		paths = append(paths, filepath.SplitList(p)...)
	}

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib64",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/lib",            // Apple Silicon
			"/usr/local/lib",               // Intel
			"/opt/homebrew/opt/glib/lib",   // Homebrew GLib
			"/usr/local/opt/glib/lib",      // Homebrew GLib (Intel)
			"/opt/local/lib",               // MacPorts
		)

	case "windows":
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			"C:\\msys64\\mingw64\\bin",
			"C:\\msys64\\ucrt64\\bin",
			"C:\\gtk\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// LibGLib returns the libglib-2.0 handle.
func LibGLib() uintptr {
	return libGLib
}

// LibGObject returns the libgobject-2.0 handle.
func LibGObject() uintptr {
	return libGObject
}

// LoadLibrary loads an additional GLib-family library such as "gio-2.0".
// The core libraries are loaded first. Repeated calls return the cached handle.
func LoadLibrary(name string, abi int) (uintptr, error) {
	if err := Load(); err != nil {
		return 0, err
	}

	extraMu.Lock()
	defer extraMu.Unlock()
	if lib, ok := extraLibs[name]; ok {
		return lib, nil
	}
	lib, err := loadLibrary(name, abi)
	if err != nil {
		return 0, err
	}
	extraLibs[name] = lib
	return lib, nil
}

// Status returns a human-readable description of the load state.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()

	switch {
	case loaded.Load():
		return "loaded"
	case loadErr != nil:
		return fmt.Sprintf("not loaded: %s", loadErr)
	default:
		return "not loaded (Load() not called)"
	}
}
