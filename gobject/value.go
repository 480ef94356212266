//go:build !ios && !android && (amd64 || arm64)

package gobject

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/gobj/glib"
	"github.com/obinnaokechukwu/gobj/internal/platform"
)

// ValueSize is sizeof(GValue) on 64-bit platforms: a GType followed by a
// two-word data union.
const ValueSize = 24

const offsetValueType = 0 // GType g_type

var (
	gValueInit              func(value, t uintptr) uintptr
	gValueUnset             func(value uintptr)
	gValueTypeCompatible    func(src, dst uintptr) int32
	gValueTypeTransformable func(src, dst uintptr) int32
	gStrdupValueContents    func(value uintptr) uintptr

	gValueGetBoolean func(value uintptr) int32
	gValueSetBoolean func(value uintptr, v int32)
	gValueGetSchar   func(value uintptr) int8
	gValueSetSchar   func(value uintptr, v int8)
	gValueGetUchar   func(value uintptr) uint8
	gValueSetUchar   func(value uintptr, v uint8)
	gValueGetInt     func(value uintptr) int32
	gValueSetInt     func(value uintptr, v int32)
	gValueGetUint    func(value uintptr) uint32
	gValueSetUint    func(value uintptr, v uint32)
	gValueGetLong    func(value uintptr) int64
	gValueSetLong    func(value uintptr, v int64)
	gValueGetUlong   func(value uintptr) uint64
	gValueSetUlong   func(value uintptr, v uint64)
	gValueGetInt64   func(value uintptr) int64
	gValueSetInt64   func(value uintptr, v int64)
	gValueGetUint64  func(value uintptr) uint64
	gValueSetUint64  func(value uintptr, v uint64)
	gValueGetFloat   func(value uintptr) float32
	gValueSetFloat   func(value uintptr, v float32)
	gValueGetDouble  func(value uintptr) float64
	gValueSetDouble  func(value uintptr, v float64)
	gValueGetString  func(value uintptr) uintptr
	gValueSetString  func(value uintptr, v string)
	gValueGetEnum    func(value uintptr) int32
	gValueSetEnum    func(value uintptr, v int32)
	gValueGetFlags   func(value uintptr) uint32
	gValueSetFlags   func(value uintptr, v uint32)
	gValueGetObject  func(value uintptr) uintptr
	gValueSetObject  func(value uintptr, v uintptr)
)

func registerValueBindings(lib uintptr) {
	purego.RegisterLibFunc(&gValueInit, lib, "g_value_init")
	purego.RegisterLibFunc(&gValueUnset, lib, "g_value_unset")
	purego.RegisterLibFunc(&gValueTypeCompatible, lib, "g_value_type_compatible")
	purego.RegisterLibFunc(&gValueTypeTransformable, lib, "g_value_type_transformable")
	purego.RegisterLibFunc(&gStrdupValueContents, lib, "g_strdup_value_contents")

	purego.RegisterLibFunc(&gValueGetBoolean, lib, "g_value_get_boolean")
	purego.RegisterLibFunc(&gValueSetBoolean, lib, "g_value_set_boolean")
	purego.RegisterLibFunc(&gValueGetSchar, lib, "g_value_get_schar")
	purego.RegisterLibFunc(&gValueSetSchar, lib, "g_value_set_schar")
	purego.RegisterLibFunc(&gValueGetUchar, lib, "g_value_get_uchar")
	purego.RegisterLibFunc(&gValueSetUchar, lib, "g_value_set_uchar")
	purego.RegisterLibFunc(&gValueGetInt, lib, "g_value_get_int")
	purego.RegisterLibFunc(&gValueSetInt, lib, "g_value_set_int")
	purego.RegisterLibFunc(&gValueGetUint, lib, "g_value_get_uint")
	purego.RegisterLibFunc(&gValueSetUint, lib, "g_value_set_uint")
	purego.RegisterLibFunc(&gValueGetLong, lib, "g_value_get_long")
	purego.RegisterLibFunc(&gValueSetLong, lib, "g_value_set_long")
	purego.RegisterLibFunc(&gValueGetUlong, lib, "g_value_get_ulong")
	purego.RegisterLibFunc(&gValueSetUlong, lib, "g_value_set_ulong")
	purego.RegisterLibFunc(&gValueGetInt64, lib, "g_value_get_int64")
	purego.RegisterLibFunc(&gValueSetInt64, lib, "g_value_set_int64")
	purego.RegisterLibFunc(&gValueGetUint64, lib, "g_value_get_uint64")
	purego.RegisterLibFunc(&gValueSetUint64, lib, "g_value_set_uint64")
	purego.RegisterLibFunc(&gValueGetFloat, lib, "g_value_get_float")
	purego.RegisterLibFunc(&gValueSetFloat, lib, "g_value_set_float")
	purego.RegisterLibFunc(&gValueGetDouble, lib, "g_value_get_double")
	purego.RegisterLibFunc(&gValueSetDouble, lib, "g_value_set_double")
	purego.RegisterLibFunc(&gValueGetString, lib, "g_value_get_string")
	purego.RegisterLibFunc(&gValueSetString, lib, "g_value_set_string")
	purego.RegisterLibFunc(&gValueGetEnum, lib, "g_value_get_enum")
	purego.RegisterLibFunc(&gValueSetEnum, lib, "g_value_set_enum")
	purego.RegisterLibFunc(&gValueGetFlags, lib, "g_value_get_flags")
	purego.RegisterLibFunc(&gValueSetFlags, lib, "g_value_set_flags")
	purego.RegisterLibFunc(&gValueGetObject, lib, "g_value_get_object")
	purego.RegisterLibFunc(&gValueSetObject, lib, "g_value_set_object")
}

// ValueNew allocates a GValue with g_malloc0 and initializes it to type t.
// The value must be released with ValueFree.
func ValueNew(t Type) (uintptr, error) {
	if gValueInit == nil {
		return 0, ErrNotLoaded
	}
	if t == TypeInvalid {
		return 0, ErrUnknownType
	}
	v := glib.Malloc0(ValueSize)
	if v == 0 {
		return 0, ErrOutOfMemory
	}
	gValueInit(v, uintptr(t))
	return v, nil
}

// ValueFree unsets and frees a GValue allocated by ValueNew.
// Safe to call with 0.
func ValueFree(v uintptr) {
	if v == 0 || gValueUnset == nil {
		return
	}
	if ValueType(v) != TypeInvalid {
		gValueUnset(v)
	}
	glib.Free(v)
}

// ValueType returns the type a GValue holds (G_VALUE_TYPE).
func ValueType(v uintptr) Type {
	if v == 0 {
		return TypeInvalid
	}
	return Type(*(*uintptr)(unsafe.Pointer(v + offsetValueType)))
}

// ValueConvertible reports whether a value of type src can be stored in a
// property of type dst, directly or through a registered transform.
func ValueConvertible(src, dst Type) bool {
	if gValueTypeCompatible == nil || gValueTypeTransformable == nil {
		return false
	}
	return gValueTypeCompatible(uintptr(src), uintptr(dst)) != 0 ||
		gValueTypeTransformable(uintptr(src), uintptr(dst)) != 0
}

// ValueContents returns GLib's human-readable rendering of a value.
func ValueContents(v uintptr) string {
	if v == 0 || gStrdupValueContents == nil {
		return ""
	}
	return glib.TakeString(gStrdupValueContents(v))
}

// ValueGet decodes a GValue into a Go value. Object values are returned as
// the uintptr instance handle (0 for NULL).
func ValueGet(v uintptr) (any, error) {
	if gValueGetInt == nil {
		return nil, ErrNotLoaded
	}
	t := ValueType(v)
	switch t.Fundamental() {
	case TypeBoolean:
		return gValueGetBoolean(v) != 0, nil
	case TypeChar:
		return gValueGetSchar(v), nil
	case TypeUChar:
		return gValueGetUchar(v), nil
	case TypeInt:
		return gValueGetInt(v), nil
	case TypeUInt:
		return gValueGetUint(v), nil
	case TypeLong:
		l := gValueGetLong(v)
		if platform.LongIs32Bit {
			l = int64(int32(l))
		}
		return l, nil
	case TypeULong:
		ul := gValueGetUlong(v)
		if platform.LongIs32Bit {
			ul = uint64(uint32(ul))
		}
		return ul, nil
	case TypeInt64:
		return gValueGetInt64(v), nil
	case TypeUInt64:
		return gValueGetUint64(v), nil
	case TypeFloat:
		return gValueGetFloat(v), nil
	case TypeDouble:
		return gValueGetDouble(v), nil
	case TypeString:
		return glib.GoString(gValueGetString(v)), nil
	case TypeEnum:
		return gValueGetEnum(v), nil
	case TypeFlags:
		return gValueGetFlags(v), nil
	case TypeObject:
		return gValueGetObject(v), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// ValueSet stores x into an initialized GValue, converting between Go
// numeric types with range checks. Object values accept a uintptr handle.
func ValueSet(v uintptr, x any) error {
	if gValueSetInt == nil {
		return ErrNotLoaded
	}
	t := ValueType(v)
	mismatch := func() error {
		return fmt.Errorf("%w: cannot store %T in %s", ErrTypeMismatch, x, t)
	}

	switch t.Fundamental() {
	case TypeBoolean:
		b, ok := x.(bool)
		if !ok {
			return mismatch()
		}
		var i int32
		if b {
			i = 1
		}
		gValueSetBoolean(v, i)
	case TypeChar:
		i, ok := toInt64(x)
		if !ok || i < math.MinInt8 || i > math.MaxInt8 {
			return mismatch()
		}
		gValueSetSchar(v, int8(i))
	case TypeUChar:
		u, ok := toUint64(x)
		if !ok || u > math.MaxUint8 {
			return mismatch()
		}
		gValueSetUchar(v, uint8(u))
	case TypeInt, TypeEnum:
		i, ok := toInt64(x)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return mismatch()
		}
		if t.Fundamental() == TypeEnum {
			gValueSetEnum(v, int32(i))
		} else {
			gValueSetInt(v, int32(i))
		}
	case TypeUInt, TypeFlags:
		u, ok := toUint64(x)
		if !ok || u > math.MaxUint32 {
			return mismatch()
		}
		if t.Fundamental() == TypeFlags {
			gValueSetFlags(v, uint32(u))
		} else {
			gValueSetUint(v, uint32(u))
		}
	case TypeLong:
		i, ok := toInt64(x)
		if !ok || (platform.LongIs32Bit && (i < math.MinInt32 || i > math.MaxInt32)) {
			return mismatch()
		}
		gValueSetLong(v, i)
	case TypeULong:
		u, ok := toUint64(x)
		if !ok || (platform.LongIs32Bit && u > math.MaxUint32) {
			return mismatch()
		}
		gValueSetUlong(v, u)
	case TypeInt64:
		i, ok := toInt64(x)
		if !ok {
			return mismatch()
		}
		gValueSetInt64(v, i)
	case TypeUInt64:
		u, ok := toUint64(x)
		if !ok {
			return mismatch()
		}
		gValueSetUint64(v, u)
	case TypeFloat:
		f, ok := toFloat64(x)
		if !ok {
			return mismatch()
		}
		gValueSetFloat(v, float32(f))
	case TypeDouble:
		f, ok := toFloat64(x)
		if !ok {
			return mismatch()
		}
		gValueSetDouble(v, f)
	case TypeString:
		s, ok := x.(string)
		if !ok {
			return mismatch()
		}
		gValueSetString(v, s)
	case TypeObject:
		var h uintptr
		switch o := x.(type) {
		case nil:
		case uintptr:
			h = o
		default:
			return mismatch()
		}
		if h != 0 && !InstanceType(h).IsA(t) {
			return mismatch()
		}
		gValueSetObject(v, h)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}

// ValueFromGo allocates a GValue of type t holding x.
// The value must be released with ValueFree.
func ValueFromGo(t Type, x any) (uintptr, error) {
	v, err := ValueNew(t)
	if err != nil {
		return 0, err
	}
	if err := ValueSet(v, x); err != nil {
		ValueFree(v)
		return 0, err
	}
	return v, nil
}

func toInt64(x any) (int64, bool) {
	switch n := x.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		// JSON and YAML decoders produce float64 for plain numbers.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func toUint64(x any) (uint64, bool) {
	switch n := x.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n < 0 || n >= math.MaxUint64 {
			return 0, false
		}
		return uint64(n), true
	default:
		i, ok := toInt64(x)
		if !ok || i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
}

func toFloat64(x any) (float64, bool) {
	switch n := x.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		if i, ok := toInt64(x); ok {
			return float64(i), true
		}
		if u, ok := toUint64(x); ok {
			return float64(u), true
		}
		return 0, false
	}
}
