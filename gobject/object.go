//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gobj/internal/handles"
)

// IsObject reports whether obj points to a GObject instance.
// obj must be zero or a pointer to some live GTypeInstance; arbitrary
// addresses are dereferenced.
func IsObject(obj uintptr) bool {
	if obj == 0 || gTypeCheckInstanceIsA == nil {
		return false
	}
	return gTypeCheckInstanceIsA(obj, uintptr(TypeObject)) != 0
}

// ObjectNew instantiates type t with default property values and returns an
// owned (non-floating) reference, to be dropped with ObjectUnref.
func ObjectNew(t Type) (uintptr, error) {
	if gObjectNewWithProperties == nil {
		return 0, ErrNotLoaded
	}
	if t == TypeInvalid {
		return 0, ErrUnknownType
	}
	if !t.IsA(TypeObject) {
		return 0, fmt.Errorf("%w: %s is not an object type", ErrTypeMismatch, t)
	}
	if t.IsAbstract() {
		return 0, fmt.Errorf("%w: %s", ErrAbstractType, t)
	}

	obj := gObjectNewWithProperties(uintptr(t), 0, 0, 0)
	if obj == 0 {
		return 0, ErrOutOfMemory
	}
	// GInitiallyUnowned descendants start with a floating reference.
	if gObjectIsFloating(obj) != 0 {
		gObjectRefSink(obj)
	}
	return obj, nil
}

// ObjectNewByName instantiates the type registered under name.
func ObjectNewByName(name string) (uintptr, error) {
	t := TypeFromName(name)
	if t == TypeInvalid {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return ObjectNew(t)
}

// ObjectRef acquires a reference on obj.
func ObjectRef(obj uintptr) {
	if obj == 0 || gObjectRef == nil {
		return
	}
	gObjectRef(obj)
}

// ObjectUnref drops a reference on obj. Dropping the last reference
// finalizes the object and fires its weak references.
func ObjectUnref(obj uintptr) {
	if obj == 0 || gObjectUnref == nil {
		return
	}
	gObjectUnref(obj)
}

// ObjectGetProperty reads a property into a freshly allocated GValue of the
// property's type. The caller owns the value and must release it with
// ValueFree.
func ObjectGetProperty(obj uintptr, name string) (uintptr, error) {
	if gObjectGetProperty == nil {
		return 0, ErrNotLoaded
	}
	pspec, err := FindProperty(obj, name)
	if err != nil {
		return 0, err
	}
	if !pspec.Readable() {
		return 0, fmt.Errorf("%w: %s", ErrNotReadable, name)
	}

	v, err := ValueNew(pspec.ValueType)
	if err != nil {
		return 0, err
	}
	gObjectGetProperty(obj, name, v)
	return v, nil
}

// ObjectSetProperty writes value to a property. value stays owned by the caller.
func ObjectSetProperty(obj uintptr, name string, value uintptr) error {
	if gObjectSetProperty == nil {
		return ErrNotLoaded
	}
	pspec, err := FindProperty(obj, name)
	if err != nil {
		return err
	}
	if pspec.Flags&ParamConstructOnly != 0 {
		return fmt.Errorf("%w: %s", ErrConstructOnly, name)
	}
	if pspec.Flags&ParamWritable == 0 {
		return fmt.Errorf("%w: %s", ErrNotWritable, name)
	}
	if src := ValueType(value); !ValueConvertible(src, pspec.ValueType) {
		return fmt.Errorf("%w: cannot set %s property %q from %s", ErrTypeMismatch, pspec.ValueType, name, src)
	}

	gObjectSetProperty(obj, name, value)
	return nil
}

var (
	weakOnce     sync.Once
	weakNotifyCB uintptr
)

func initWeakNotify() {
	weakOnce.Do(func() {
		// Signature: void (*GWeakNotify)(gpointer data, GObject *where_the_object_was)
		weakNotifyCB = purego.NewCallback(func(_ purego.CDecl, data uintptr, _ uintptr) {
			v, ok := handles.Take(data)
			if !ok {
				return
			}
			if fn, ok := v.(func()); ok {
				fn()
			}
		})
	})
}

// WeakRef arranges for fn to run once when obj is finalized, without
// keeping obj alive. The returned cancel function removes the weak reference
// if it has not fired yet; it must only be called while obj is still alive.
func WeakRef(obj uintptr, fn func()) (cancel func(), err error) {
	if gObjectWeakRef == nil {
		return nil, ErrNotLoaded
	}
	if !IsObject(obj) {
		return nil, ErrInvalidObject
	}
	initWeakNotify()

	token := handles.Put(fn)
	gObjectWeakRef(obj, weakNotifyCB, token)

	return func() {
		if _, ok := handles.Take(token); ok {
			gObjectWeakUnref(obj, weakNotifyCB, token)
		}
	}, nil
}
