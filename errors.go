package gobj

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/gobj/registry"
)

// Common errors
var (
	// ErrInvalidHandle indicates a native call was attempted on the null handle.
	ErrInvalidHandle = errors.New("gobj: invalid handle")

	// ErrObjectFinalized indicates the native object behind a wrapper is gone.
	ErrObjectFinalized = errors.New("gobj: native object finalized")

	// ErrUnbound indicates an object that was not created through a Binding.
	ErrUnbound = errors.New("gobj: object has no binding")

	// ErrValueReleased indicates use of a value after Release.
	ErrValueReleased = errors.New("gobj: value already released")

	// ErrNilValue indicates a nil *Value was passed where one is required.
	ErrNilValue = errors.New("gobj: nil value")

	// ErrNoCodec indicates the native implementation cannot convert values.
	ErrNoCodec = errors.New("gobj: native does not support value conversion")

	// ErrWrapperMismatch indicates a constructor returned a wrapper for a different handle.
	ErrWrapperMismatch = errors.New("gobj: constructor returned wrapper for another handle")

	// ErrAmbiguousRegistration is returned by RegisterUnique when the handle
	// already has a different wrapper.
	ErrAmbiguousRegistration = registry.ErrAmbiguousRegistration
)

// Native operation names, used in NativeCallError and metrics.
const (
	OpGetProperty    = "get_property"
	OpSetProperty    = "set_property"
	OpTypeNames      = "type_names"
	OpNotifyFinalize = "notify_finalize"
	OpDecodeValue    = "decode_value"
	OpEncodeValue    = "encode_value"
)

var nativeOps = []string{
	OpGetProperty,
	OpSetProperty,
	OpTypeNames,
	OpNotifyFinalize,
	OpDecodeValue,
	OpEncodeValue,
}

// NativeCallError reports a failed call across the native boundary.
type NativeCallError struct {
	Op       string
	Handle   Handle
	Property string
	Err      error
}

func (e *NativeCallError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("gobj: %s %s on %s: %v", e.Op, e.Property, e.Handle, e.Err)
	}
	return fmt.Sprintf("gobj: %s on %s: %v", e.Op, e.Handle, e.Err)
}

func (e *NativeCallError) Unwrap() error {
	return e.Err
}

func errNotObject(x any) error {
	return fmt.Errorf("property holds %T, not an object", x)
}
