//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"errors"

	"github.com/obinnaokechukwu/gobj/internal/bindings"
)

// Errors reported by the checks this package performs before calling into
// GObject. GObject itself only prints a warning and carries on for most of
// these conditions, so they have to be caught up front.
var (
	// ErrNotLoaded indicates libgobject-2.0 is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrInvalidObject indicates a zero handle or a handle that is not a GObject.
	ErrInvalidObject = errors.New("gobject: not a GObject instance")

	// ErrUnknownProperty indicates the class has no property with that name.
	ErrUnknownProperty = errors.New("gobject: unknown property")

	// ErrNotReadable indicates a write-only property was read.
	ErrNotReadable = errors.New("gobject: property is not readable")

	// ErrNotWritable indicates a read-only property was written.
	ErrNotWritable = errors.New("gobject: property is not writable")

	// ErrConstructOnly indicates a construct-only property was written after construction.
	ErrConstructOnly = errors.New("gobject: property can only be set at construction")

	// ErrTypeMismatch indicates a value cannot be converted to the required type.
	ErrTypeMismatch = errors.New("gobject: value type mismatch")

	// ErrUnknownType indicates a type name that is not registered.
	ErrUnknownType = errors.New("gobject: unknown type")

	// ErrAbstractType indicates an attempt to instantiate an abstract type.
	ErrAbstractType = errors.New("gobject: cannot instantiate abstract type")

	// ErrUnsupportedType indicates a GValue type this package cannot marshal.
	ErrUnsupportedType = errors.New("gobject: unsupported value type")

	// ErrOutOfMemory indicates a native allocation failed.
	ErrOutOfMemory = errors.New("gobject: out of memory")
)
