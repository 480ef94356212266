//go:build !ios && !android && (amd64 || arm64)

// Package platform describes how the GLib shared libraries are named and
// laid out on the current operating system.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// gobj only supports 64-bit platforms due to purego limitations.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LongIs32Bit reports whether the C long type is 32 bits wide (LLP64).
// GLib's glong/gulong follow the C long, so accessors have to truncate.
const LongIs32Bit = runtime.GOOS == "windows"

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefixes are the file name prefixes tried for shared libraries.
// Windows builds of GLib ship both "libgobject-2.0-0.dll" (MSYS2) and
// "gobject-2.0-0.dll" (MSVC / gvsbuild).
var LibraryPrefixes []string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefixes = []string{"lib"}
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefixes = []string{"lib", ""}
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefixes = []string{"lib"}
	}
}

// FormatLibraryName returns the platform-specific library filename for
// a GLib-style library such as "gobject-2.0" with the given ABI version.
// A negative abi returns the unversioned development name.
//
// Examples:
//   - Linux:   FormatLibraryName("lib", "gobject-2.0", 0) -> "libgobject-2.0.so.0"
//   - macOS:   FormatLibraryName("lib", "gobject-2.0", 0) -> "libgobject-2.0.0.dylib"
//   - Windows: FormatLibraryName("", "gobject-2.0", 0)    -> "gobject-2.0-0.dll"
func FormatLibraryName(prefix, name string, abi int) string {
	return formatLibraryName(runtime.GOOS, prefix, name, abi)
}

func formatLibraryName(goos, prefix, name string, abi int) string {
	ext := ".so"
	switch goos {
	case "darwin":
		ext = ".dylib"
	case "windows":
		ext = ".dll"
	}
	if abi < 0 {
		return prefix + name + ext
	}
	switch goos {
	case "darwin":
		return fmt.Sprintf("%s%s.%d%s", prefix, name, abi, ext)
	case "windows":
		return fmt.Sprintf("%s%s-%d%s", prefix, name, abi, ext)
	default: // linux, freebsd
		return fmt.Sprintf("%s%s%s.%d", prefix, name, ext, abi)
	}
}

// CandidateNames returns every file name worth trying for a library,
// versioned names first.
func CandidateNames(name string, abi int) []string {
	var names []string
	for _, p := range LibraryPrefixes {
		names = append(names, FormatLibraryName(p, name, abi))
	}
	for _, p := range LibraryPrefixes {
		names = append(names, FormatLibraryName(p, name, -1))
	}
	return names
}
