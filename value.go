package gobj

import (
	"fmt"
	"sync/atomic"
)

// Value is a native value handle with explicit ownership.
//
// An owned value (from Object.Property or Object.NewValue) must be released
// exactly once with Release. A borrowed value (Binding.BorrowValue) belongs
// to someone else; Release only invalidates the Go side.
type Value struct {
	binding  *Binding
	raw      uintptr
	owned    bool
	released atomic.Bool
}

func newValue(b *Binding, raw uintptr, owned bool) *Value {
	return &Value{binding: b, raw: raw, owned: owned}
}

// Raw returns the native value handle, or 0 once released.
func (v *Value) Raw() uintptr {
	if v == nil || v.released.Load() {
		return 0
	}
	return v.raw
}

// Owned reports whether Release frees the native value.
func (v *Value) Owned() bool { return v != nil && v.owned }

// Released reports whether Release has been called.
func (v *Value) Released() bool { return v == nil || v.released.Load() }

// Release frees an owned native value. Only the first call has an effect.
func (v *Value) Release() {
	if v == nil || !v.released.CompareAndSwap(false, true) {
		return
	}
	if v.owned && v.raw != 0 {
		v.binding.native.ReleaseValue(v.raw)
	}
}

// Get decodes the value into a Go value. Object values decode to Handle.
func (v *Value) Get() (any, error) {
	if v.Released() {
		return nil, ErrValueReleased
	}
	codec, ok := v.binding.native.(ValueCodec)
	if !ok {
		return nil, ErrNoCodec
	}
	x, err := codec.DecodeValue(v.raw)
	if err != nil {
		v.binding.callFailed(OpDecodeValue)
		return nil, &NativeCallError{Op: OpDecodeValue, Err: err}
	}
	return x, nil
}

func (v *Value) String() string {
	if v.Released() {
		return "<released>"
	}
	if codec, ok := v.binding.native.(ValueCodec); ok {
		return codec.FormatValue(v.raw)
	}
	return fmt.Sprintf("value(0x%x)", v.raw)
}
