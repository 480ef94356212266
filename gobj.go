//go:build !ios && !android && (amd64 || arm64)

// Package gobj maps native GObject instances onto Go wrapper values without
// cgo.
//
// A Binding owns an identity registry from native handles to wrappers, so a
// native object seen twice yields the same Go value. Properties are read
// and written through the wrapper, with explicit ownership of the native
// values that cross the boundary:
//
//	native, err := gobj.GLib()
//	if err != nil {
//		return err
//	}
//	b := gobj.NewBinding(native)
//	obj := b.Bind(h)
//	defer b.Unregister(obj.Handle())
//
//	v, err := obj.Property("name")
//	if err != nil {
//		return err
//	}
//	defer v.Release()
//
// The GLib libraries are located at runtime; see Init.
package gobj

import (
	"github.com/obinnaokechukwu/gobj/glib"
	"github.com/obinnaokechukwu/gobj/gobject"
	"github.com/obinnaokechukwu/gobj/internal/bindings"
)

// Init loads libglib-2.0 and libgobject-2.0. It is called by GLib and can be
// called explicitly to check for errors. It is safe to call multiple times;
// after a failure, directories added with AddLibraryPath are searched on the
// next call.
func Init() error {
	return gobject.Load()
}

// IsLoaded returns true if the GLib libraries have been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded() && gobject.Available()
}

// Version returns the version of the loaded GLib.
func Version() (major, minor, micro uint32) {
	return glib.Version()
}

// AddLibraryPath adds directories searched before the system defaults.
func AddLibraryPath(dirs ...string) {
	bindings.AddSearchPath(dirs...)
}

// LoadLibrary loads another GLib-based library, such as "gio-2.0", so its
// types can be registered with EnsureType.
func LoadLibrary(name string) (uintptr, error) {
	return bindings.LoadLibrary(name, 0)
}

// EnsureType calls getTypeFunc (for example "g_binding_group_get_type") in
// lib, or in libgobject-2.0 when lib is 0, and returns the type name it
// registers.
func EnsureType(lib uintptr, getTypeFunc string) (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	if lib == 0 {
		lib = bindings.LibGObject()
	}
	t, err := gobject.EnsureType(lib, getTypeFunc)
	if err != nil {
		return "", err
	}
	return t.Name(), nil
}
