//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/obinnaokechukwu/gobj/glib"
)

// ParamFlags mirrors GParamFlags.
type ParamFlags uint32

// Param flag constants matching GLib's G_PARAM_* values.
const (
	ParamReadable       ParamFlags = 1 << 0
	ParamWritable       ParamFlags = 1 << 1
	ParamConstruct      ParamFlags = 1 << 2
	ParamConstructOnly  ParamFlags = 1 << 3
	ParamExplicitNotify ParamFlags = 1 << 30
	ParamDeprecated     ParamFlags = 1 << 31
)

// String renders the access flags compactly, e.g. "rw", "r", "w,construct-only".
func (f ParamFlags) String() string {
	var access string
	if f&ParamReadable != 0 {
		access += "r"
	}
	if f&ParamWritable != 0 {
		access += "w"
	}
	if access == "" {
		access = "-"
	}
	parts := []string{access}
	if f&ParamConstructOnly != 0 {
		parts = append(parts, "construct-only")
	} else if f&ParamConstruct != 0 {
		parts = append(parts, "construct")
	}
	if f&ParamDeprecated != 0 {
		parts = append(parts, "deprecated")
	}
	return strings.Join(parts, ",")
}

// GParamSpec field offsets (64-bit):
//
//	GTypeInstance g_type_instance; // 0
//	const gchar  *name;            // 8
//	GParamFlags   flags;           // 16
//	GType         value_type;      // 24
//	GType         owner_type;      // 32
const (
	offsetParamName      = 8
	offsetParamFlags     = 16
	offsetParamValueType = 24
	offsetParamOwnerType = 32
)

// ParamSpec describes one property of an object class.
type ParamSpec struct {
	Name      string
	Nick      string
	Blurb     string
	Flags     ParamFlags
	ValueType Type
	OwnerType Type
}

// Readable reports whether the property can be read.
func (p ParamSpec) Readable() bool { return p.Flags&ParamReadable != 0 }

// Writable reports whether the property can be written after construction.
func (p ParamSpec) Writable() bool {
	return p.Flags&ParamWritable != 0 && p.Flags&ParamConstructOnly == 0
}

func readParamSpec(pspec uintptr) ParamSpec {
	p := ParamSpec{
		Name:      glib.GoString(*(*uintptr)(unsafe.Pointer(pspec + offsetParamName))),
		Flags:     ParamFlags(*(*uint32)(unsafe.Pointer(pspec + offsetParamFlags))),
		ValueType: Type(*(*uintptr)(unsafe.Pointer(pspec + offsetParamValueType))),
		OwnerType: Type(*(*uintptr)(unsafe.Pointer(pspec + offsetParamOwnerType))),
	}
	if gParamSpecGetNick != nil {
		p.Nick = gParamSpecGetNick(pspec)
	}
	if gParamSpecGetBlurb != nil {
		p.Blurb = gParamSpecGetBlurb(pspec)
	}
	return p
}

// FindProperty returns the property description for name on obj's class.
func FindProperty(obj uintptr, name string) (ParamSpec, error) {
	if gObjectClassFindProperty == nil {
		return ParamSpec{}, ErrNotLoaded
	}
	if !IsObject(obj) {
		return ParamSpec{}, ErrInvalidObject
	}
	pspec := gObjectClassFindProperty(instanceClass(obj), name)
	if pspec == 0 {
		return ParamSpec{}, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, InstanceType(obj), name)
	}
	return readParamSpec(pspec), nil
}

// ListProperties describes every property of the object type t, including
// inherited ones, in class order.
func ListProperties(t Type) ([]ParamSpec, error) {
	if gTypeClassRef == nil || gObjectClassListProps == nil {
		return nil, ErrNotLoaded
	}
	if t == TypeInvalid {
		return nil, ErrUnknownType
	}
	if !t.IsA(TypeObject) {
		return nil, fmt.Errorf("%w: %s is not an object type", ErrTypeMismatch, t)
	}

	class := gTypeClassRef(uintptr(t))
	if class == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	defer gTypeClassUnref(class)

	var n uint32
	arr := gObjectClassListProps(class, &n)
	if arr == 0 {
		return nil, nil
	}
	defer glib.Free(arr)

	specs := make([]ParamSpec, 0, n)
	for _, pspec := range unsafe.Slice((*uintptr)(unsafe.Pointer(arr)), n) {
		specs = append(specs, readParamSpec(pspec))
	}
	return specs, nil
}
