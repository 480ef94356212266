//go:build !ios && !android && (amd64 || arm64)

// Package gobject provides bindings to libgobject-2.0: the GType system,
// GParamSpec introspection, GValue containers and GObject instances.
//
// Object and value handles are plain uintptr values owned by the native
// side. This package never retains them.
package gobject

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gobj/glib"
	"github.com/obinnaokechukwu/gobj/internal/bindings"
)

// Function bindings - registered when init() is called
var (
	gTypeFromName            func(name string) uintptr
	gTypeName                func(t uintptr) string
	gTypeParent              func(t uintptr) uintptr
	gTypeFundamental         func(t uintptr) uintptr
	gTypeIsA                 func(t, isA uintptr) int32
	gTypeTestFlags           func(t uintptr, flags uint32) int32
	gTypeClassRef            func(t uintptr) uintptr
	gTypeClassUnref          func(class uintptr)
	gTypeCheckInstanceIsA    func(instance, ifaceType uintptr) int32
	gObjectClassFindProperty func(class uintptr, name string) uintptr
	gObjectClassListProps    func(class uintptr, nProps *uint32) uintptr
	gParamSpecGetNick        func(pspec uintptr) string
	gParamSpecGetBlurb       func(pspec uintptr) string

	gObjectNewWithProperties func(t uintptr, nProps uint32, names, values uintptr) uintptr
	gObjectRef               func(obj uintptr) uintptr
	gObjectUnref             func(obj uintptr)
	gObjectRefSink           func(obj uintptr) uintptr
	gObjectIsFloating        func(obj uintptr) int32
	gObjectGetProperty       func(obj uintptr, name string, value uintptr)
	gObjectSetProperty       func(obj uintptr, name string, value uintptr)
	gObjectWeakRef           func(obj, notify, data uintptr)
	gObjectWeakUnref         func(obj, notify, data uintptr)

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
	if err := glib.Load(); err != nil {
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

	lib := bindings.LibGObject()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&gTypeFromName, lib, "g_type_from_name")
	purego.RegisterLibFunc(&gTypeName, lib, "g_type_name")
	purego.RegisterLibFunc(&gTypeParent, lib, "g_type_parent")
	purego.RegisterLibFunc(&gTypeFundamental, lib, "g_type_fundamental")
	purego.RegisterLibFunc(&gTypeIsA, lib, "g_type_is_a")
	purego.RegisterLibFunc(&gTypeTestFlags, lib, "g_type_test_flags")
	purego.RegisterLibFunc(&gTypeClassRef, lib, "g_type_class_ref")
	purego.RegisterLibFunc(&gTypeClassUnref, lib, "g_type_class_unref")
	purego.RegisterLibFunc(&gTypeCheckInstanceIsA, lib, "g_type_check_instance_is_a")
	purego.RegisterLibFunc(&gObjectClassFindProperty, lib, "g_object_class_find_property")
	purego.RegisterLibFunc(&gObjectClassListProps, lib, "g_object_class_list_properties")
	purego.RegisterLibFunc(&gParamSpecGetNick, lib, "g_param_spec_get_nick")
	purego.RegisterLibFunc(&gParamSpecGetBlurb, lib, "g_param_spec_get_blurb")

	purego.RegisterLibFunc(&gObjectNewWithProperties, lib, "g_object_new_with_properties")
	purego.RegisterLibFunc(&gObjectRef, lib, "g_object_ref")
	purego.RegisterLibFunc(&gObjectUnref, lib, "g_object_unref")
	purego.RegisterLibFunc(&gObjectRefSink, lib, "g_object_ref_sink")
	purego.RegisterLibFunc(&gObjectIsFloating, lib, "g_object_is_floating")
	purego.RegisterLibFunc(&gObjectGetProperty, lib, "g_object_get_property")
	purego.RegisterLibFunc(&gObjectSetProperty, lib, "g_object_set_property")
	purego.RegisterLibFunc(&gObjectWeakRef, lib, "g_object_weak_ref")
	purego.RegisterLibFunc(&gObjectWeakUnref, lib, "g_object_weak_unref")

	registerValueBindings(lib)

	bindingsRegistered = true
}

// Available reports whether libgobject-2.0 bindings are registered.
func Available() bool {
	registerMu.Lock()
	defer registerMu.Unlock()
	return bindingsRegistered
}

// Struct layout of the GTypeInstance / GTypeClass headers (64-bit).
// Every instance starts with a pointer to its class, and every class starts
// with its GType.
const (
	offsetInstanceClass = 0 // GTypeClass *g_class
	offsetClassType     = 0 // GType g_type
)

// instanceClass returns the class pointer of a type instance.
func instanceClass(instance uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(instance + offsetInstanceClass))
}

// InstanceType returns the GType of a type instance (G_TYPE_FROM_INSTANCE).
// instance must point to a live GTypeInstance.
func InstanceType(instance uintptr) Type {
	if instance == 0 {
		return TypeInvalid
	}
	class := instanceClass(instance)
	if class == 0 {
		return TypeInvalid
	}
	return Type(*(*uintptr)(unsafe.Pointer(class + offsetClassType)))
}
