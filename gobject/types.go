//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Type is a GType.
type Type uintptr

const fundamentalShift = 2

// Fundamental types (G_TYPE_*).
const (
	TypeInvalid   Type = 0 << fundamentalShift
	TypeNone      Type = 1 << fundamentalShift
	TypeInterface Type = 2 << fundamentalShift
	TypeChar      Type = 3 << fundamentalShift
	TypeUChar     Type = 4 << fundamentalShift
	TypeBoolean   Type = 5 << fundamentalShift
	TypeInt       Type = 6 << fundamentalShift
	TypeUInt      Type = 7 << fundamentalShift
	TypeLong      Type = 8 << fundamentalShift
	TypeULong     Type = 9 << fundamentalShift
	TypeInt64     Type = 10 << fundamentalShift
	TypeUInt64    Type = 11 << fundamentalShift
	TypeEnum      Type = 12 << fundamentalShift
	TypeFlags     Type = 13 << fundamentalShift
	TypeFloat     Type = 14 << fundamentalShift
	TypeDouble    Type = 15 << fundamentalShift
	TypeString    Type = 16 << fundamentalShift
	TypePointer   Type = 17 << fundamentalShift
	TypeBoxed     Type = 18 << fundamentalShift
	TypeParam     Type = 19 << fundamentalShift
	TypeObject    Type = 20 << fundamentalShift
	TypeVariant   Type = 21 << fundamentalShift
)

// GTypeFlags tested with g_type_test_flags.
const (
	typeFlagAbstract = 1 << 4
)

// TypeFromName looks up a registered type by name.
// Returns TypeInvalid if no such type is registered (yet).
func TypeFromName(name string) Type {
	if gTypeFromName == nil {
		return TypeInvalid
	}
	return Type(gTypeFromName(name))
}

// Name returns the registered name of the type, or "" for an invalid type.
func (t Type) Name() string {
	if gTypeName == nil || t == TypeInvalid {
		return ""
	}
	return gTypeName(uintptr(t))
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if n := t.Name(); n != "" {
		return n
	}
	return fmt.Sprintf("GType(%d)", uintptr(t))
}

// Parent returns the parent type, or TypeInvalid for fundamental types.
func (t Type) Parent() Type {
	if gTypeParent == nil {
		return TypeInvalid
	}
	return Type(gTypeParent(uintptr(t)))
}

// Fundamental returns the fundamental type t derives from.
func (t Type) Fundamental() Type {
	if gTypeFundamental == nil {
		return TypeInvalid
	}
	return Type(gTypeFundamental(uintptr(t)))
}

// IsA reports whether t is other or derives from (or implements) it.
func (t Type) IsA(other Type) bool {
	if gTypeIsA == nil {
		return false
	}
	return gTypeIsA(uintptr(t), uintptr(other)) != 0
}

// IsAbstract reports whether t cannot be instantiated.
func (t Type) IsAbstract() bool {
	if gTypeTestFlags == nil {
		return false
	}
	return gTypeTestFlags(uintptr(t), typeFlagAbstract) != 0
}

// Ancestry returns the names of t and all its parents, most-derived first.
func (t Type) Ancestry() []string {
	var names []string
	for cur := t; cur != TypeInvalid; cur = cur.Parent() {
		names = append(names, cur.Name())
	}
	return names
}

// EnsureType calls a "*_get_type" function exported by lib so the type it
// registers becomes visible to TypeFromName. Types in GLib-based libraries
// are registered lazily, on first use of that function.
func EnsureType(lib uintptr, getTypeFunc string) (Type, error) {
	if lib == 0 {
		return TypeInvalid, ErrNotLoaded
	}
	addr, err := purego.Dlsym(lib, getTypeFunc)
	if err != nil {
		return TypeInvalid, fmt.Errorf("%w: %s: %v", ErrUnknownType, getTypeFunc, err)
	}
	var getType func() uintptr
	purego.RegisterFunc(&getType, addr)
	t := Type(getType())
	if t == TypeInvalid {
		return TypeInvalid, fmt.Errorf("%w: %s returned an invalid type", ErrUnknownType, getTypeFunc)
	}
	return t, nil
}
