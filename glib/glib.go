//go:build !ios && !android && (amd64 || arm64)

// Package glib provides bindings to the parts of libglib-2.0 that the
// object layer needs: allocation, C strings, version checks and the
// default log handler.
package glib

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gobj/internal/bindings"
)

// Function bindings - registered when init() is called
var (
	gMalloc0           func(size uintptr) uintptr
	gFree              func(mem uintptr)
	glibCheckVersion   func(major, minor, micro uint32) uintptr
	gLogSetDefaultHndl func(fn uintptr, userData uintptr) uintptr

	defaultLogHandler uintptr
	majorVersion      uintptr
	minorVersion      uintptr
	microVersion      uintptr

	bindingsRegistered bool
	registerMu         sync.Mutex
)

func init() {
	registerBindings()
}

// Load loads the GLib libraries if needed and registers this package's
// function bindings. Package initialization already tries once; call Load
// after changing the library search path.
func Load() error {
	if err := bindings.Load(); err != nil {
		return err
	}
	registerBindings()
	if !Available() {
		return bindings.ErrNotLoaded
	}
	return nil
}

func registerBindings() {
	registerMu.Lock()
	defer registerMu.Unlock()

	if bindingsRegistered {
		return
	}

	if err := bindings.Load(); err != nil {
		return // Will fail later when functions are called
	}

	lib := bindings.LibGLib()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&gMalloc0, lib, "g_malloc0")
	purego.RegisterLibFunc(&gFree, lib, "g_free")
	purego.RegisterLibFunc(&glibCheckVersion, lib, "glib_check_version")
	purego.RegisterLibFunc(&gLogSetDefaultHndl, lib, "g_log_set_default_handler")

	// Data symbols: the addresses of the exported version variables.
	majorVersion, _ = purego.Dlsym(lib, "glib_major_version")
	minorVersion, _ = purego.Dlsym(lib, "glib_minor_version")
	microVersion, _ = purego.Dlsym(lib, "glib_micro_version")
	defaultLogHandler, _ = purego.Dlsym(lib, "g_log_default_handler")

	bindingsRegistered = true
}

// Available reports whether libglib-2.0 bindings are registered.
func Available() bool {
	registerMu.Lock()
	defer registerMu.Unlock()
	return bindingsRegistered
}

// Malloc0 allocates size zeroed bytes with g_malloc0.
// The memory must be released with Free. Returns 0 if GLib is not loaded.
func Malloc0(size uintptr) uintptr {
	if gMalloc0 == nil {
		return 0
	}
	return gMalloc0(size)
}

// Free releases memory allocated by GLib. Safe to call with 0.
func Free(mem uintptr) {
	if mem == 0 || gFree == nil {
		return
	}
	gFree(mem)
}

// GoString copies a NUL-terminated C string into Go memory.
// A zero pointer yields the empty string.
func GoString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

// TakeString copies a GLib-allocated string and frees the original.
func TakeString(p uintptr) string {
	s := GoString(p)
	Free(p)
	return s
}

// Version returns the version of the loaded libglib-2.0.
// Returns zeros if GLib is not loaded.
func Version() (major, minor, micro uint32) {
	if majorVersion == 0 || minorVersion == 0 || microVersion == 0 {
		return 0, 0, 0
	}
	return *(*uint32)(unsafe.Pointer(majorVersion)),
		*(*uint32)(unsafe.Pointer(minorVersion)),
		*(*uint32)(unsafe.Pointer(microVersion))
}

// CheckVersion returns an error if the loaded GLib is older than
// major.minor.micro or has an incompatible major version.
func CheckVersion(major, minor, micro uint32) error {
	if glibCheckVersion == nil {
		return bindings.ErrNotLoaded
	}
	if msg := glibCheckVersion(major, minor, micro); msg != 0 {
		return fmt.Errorf("gobj: GLib %d.%d.%d required: %s", major, minor, micro, GoString(msg))
	}
	return nil
}

// LogLevel mirrors GLogLevelFlags.
type LogLevel uint32

// Log level flags matching GLib's G_LOG_* values.
const (
	LogFlagRecursion LogLevel = 1 << 0
	LogFlagFatal     LogLevel = 1 << 1
	LogLevelError    LogLevel = 1 << 2 // always fatal
	LogLevelCritical LogLevel = 1 << 3
	LogLevelWarning  LogLevel = 1 << 4
	LogLevelMessage  LogLevel = 1 << 5
	LogLevelInfo     LogLevel = 1 << 6
	LogLevelDebug    LogLevel = 1 << 7

	logLevelMask LogLevel = ^(LogFlagRecursion | LogFlagFatal)
)

// Severity strips the recursion and fatal flags.
func (l LogLevel) Severity() LogLevel {
	return l & logLevelMask
}

// Fatal reports whether GLib will abort after the handler returns.
func (l LogLevel) Fatal() bool {
	return l&LogFlagFatal != 0 || l.Severity()&LogLevelError != 0
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	s := l.Severity()
	switch {
	case s&LogLevelError != 0:
		return "error"
	case s&LogLevelCritical != 0:
		return "critical"
	case s&LogLevelWarning != 0:
		return "warning"
	case s&LogLevelMessage != 0:
		return "message"
	case s&LogLevelInfo != 0:
		return "info"
	case s&LogLevelDebug != 0:
		return "debug"
	default:
		return "unknown"
	}
}

// LogHandler receives every message GLib would print through its default
// handler. domain is empty for messages logged without a domain.
type LogHandler func(domain string, level LogLevel, message string)

var (
	logHandlerMu sync.Mutex
	logHandler   LogHandler
	logCBHandle  uintptr
)

// SetLogHandler routes GLib's default log output to h.
// Pass nil to restore g_log_default_handler.
func SetLogHandler(h LogHandler) error {
	if gLogSetDefaultHndl == nil {
		return bindings.ErrNotLoaded
	}

	logHandlerMu.Lock()
	defer logHandlerMu.Unlock()

	if h == nil {
		logHandler = nil
		gLogSetDefaultHndl(defaultLogHandler, 0)
		return nil
	}

	logHandler = h

	// Create a purego callback if we haven't yet; callbacks are never freed.
	if logCBHandle == 0 {
		logCBHandle = purego.NewCallback(logTrampoline)
	}

	gLogSetDefaultHndl(logCBHandle, 0)
	return nil
}

// logTrampoline is called by GLib and forwards to the Go handler.
// Signature: void (*GLogFunc)(const gchar *log_domain, GLogLevelFlags log_level,
// const gchar *message, gpointer user_data)
func logTrampoline(_ purego.CDecl, domain *byte, level uint32, message *byte, _ unsafe.Pointer) {
	logHandlerMu.Lock()
	h := logHandler
	logHandlerMu.Unlock()

	if h == nil {
		return
	}
	h(GoString(uintptr(unsafe.Pointer(domain))), LogLevel(level), GoString(uintptr(unsafe.Pointer(message))))
}
