package gobj

import (
	"sync"
	"sync/atomic"
)

// Object is the base wrapper for a native object. User types extend it by
// embedding *Object and registering a Constructor with Binding.RegisterType.
//
// Equality and hashing depend only on the handle. Everything else an Object
// carries, such as its data table, is Go-side state.
type Object struct {
	binding *Binding
	handle  Handle

	mu   sync.Mutex
	data map[string]any

	finalized atomic.Bool
}

// NewObject creates an unregistered wrapper for h. Use Binding.Bind to
// create and register in one step.
func NewObject(b *Binding, h Handle) *Object {
	return &Object{binding: b, handle: h}
}

// Handle returns the wrapped native handle. A nil *Object wraps the null handle.
func (o *Object) Handle() Handle {
	if o == nil {
		return 0
	}
	return o.handle
}

// Key returns a value usable as a Go map key with the same identity as Equal.
func (o *Object) Key() Handle { return o.Handle() }

// Equal reports whether w wraps the same handle as o. A nil w stands for
// the null handle, as in the package-level Equal.
func (o *Object) Equal(w Wrapper) bool {
	return o.Handle() == handleOf(w)
}

// Hash returns the handle-derived hash, consistent with Equal.
func (o *Object) Hash() uint64 { return hashHandle(o.Handle()) }

// Binding returns the binding o was created with.
func (o *Object) Binding() *Binding { return o.binding }

func (o *Object) object() *Object { return o }

// Data returns the auxiliary value stored under key.
func (o *Object) Data(key string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.data[key]
	return v, ok
}

// SetData stores v under key, replacing any previous value.
func (o *Object) SetData(key string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.data == nil {
		o.data = make(map[string]any)
	}
	o.data[key] = v
}

// DeleteData removes key from the data table.
func (o *Object) DeleteData(key string) {
	o.mu.Lock()
	delete(o.data, key)
	o.mu.Unlock()
}

// Finalized reports whether the native object has been destroyed.
func (o *Object) Finalized() bool { return o.finalized.Load() }

func (o *Object) markFinalized() { o.finalized.Store(true) }

// Dispose ends the wrapper's registered lifetime: if the wrapper registered
// for its handle is o, or a user type embedding o, it is removed from the
// binding and the finalization watch is dropped. A successor registered
// under the same handle is left alone. Dispose does not touch the native
// reference count. It is idempotent, and a wrapper registered again after
// Dispose can be disposed again.
func (o *Object) Dispose() {
	if o == nil || o.binding == nil {
		return
	}
	o.binding.release(o.handle, o)
}

// check reports why o cannot reach its native object, as a NativeCallError
// for op.
func (o *Object) check(op, name string) error {
	var err error
	switch {
	case o.binding == nil:
		err = ErrUnbound
	case o.finalized.Load():
		err = ErrObjectFinalized
	case o.handle == 0:
		err = ErrInvalidHandle
	default:
		return nil
	}
	return &NativeCallError{Op: op, Handle: o.handle, Property: name, Err: err}
}

// Property reads the named property. The caller owns the returned value and
// must Release it.
func (o *Object) Property(name string) (*Value, error) {
	if err := o.check(OpGetProperty, name); err != nil {
		return nil, err
	}
	raw, err := o.binding.native.GetProperty(o.handle, name)
	if err != nil {
		o.binding.callFailed(OpGetProperty)
		return nil, &NativeCallError{Op: OpGetProperty, Handle: o.handle, Property: name, Err: err}
	}
	return newValue(o.binding, raw, true), nil
}

// SetProperty writes v to the named property. Ownership of v stays with the
// caller.
func (o *Object) SetProperty(name string, v *Value) error {
	if err := o.check(OpSetProperty, name); err != nil {
		return err
	}
	if v == nil {
		return ErrNilValue
	}
	if v.Released() {
		return ErrValueReleased
	}
	if err := o.binding.native.SetProperty(o.handle, name, v.raw); err != nil {
		o.binding.callFailed(OpSetProperty)
		return &NativeCallError{Op: OpSetProperty, Handle: o.handle, Property: name, Err: err}
	}
	return nil
}

// WithProperty reads the named property, passes it to fn and releases it
// when fn returns.
func (o *Object) WithProperty(name string, fn func(*Value) error) error {
	v, err := o.Property(name)
	if err != nil {
		return err
	}
	defer v.Release()
	return fn(v)
}

// Get reads and decodes the named property.
func (o *Object) Get(name string) (any, error) {
	var out any
	err := o.WithProperty(name, func(v *Value) error {
		x, err := v.Get()
		out = x
		return err
	})
	return out, err
}

// GetObject reads an object-valued property and returns the wrapper for the
// object it refers to, creating one through Binding.Wrap when needed.
// A null object property yields (nil, nil).
//
// The property value is held until the wrapper is registered and watched,
// so a value that carried the only reference keeps the object alive for
// Wrap; finalization then reaches the returned wrapper as usual.
func (o *Object) GetObject(name string) (Wrapper, error) {
	var w Wrapper
	err := o.WithProperty(name, func(v *Value) error {
		x, err := v.Get()
		if err != nil {
			return err
		}
		h, ok := x.(Handle)
		if !ok {
			return &NativeCallError{Op: OpDecodeValue, Handle: o.handle, Property: name, Err: errNotObject(x)}
		}
		if h == 0 {
			return nil
		}
		w, err = o.binding.Wrap(h)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewValue encodes x as a native value suitable for the named property. The
// caller owns the result. Wrappers are passed as their handles.
func (o *Object) NewValue(name string, x any) (*Value, error) {
	if err := o.check(OpEncodeValue, name); err != nil {
		return nil, err
	}
	codec, ok := o.binding.native.(ValueCodec)
	if !ok {
		return nil, ErrNoCodec
	}
	if w, ok := x.(Wrapper); ok {
		x = w.Handle()
	}
	raw, err := codec.EncodeValue(o.handle, name, x)
	if err != nil {
		o.binding.callFailed(OpEncodeValue)
		return nil, &NativeCallError{Op: OpEncodeValue, Handle: o.handle, Property: name, Err: err}
	}
	return newValue(o.binding, raw, true), nil
}

// Set encodes x and writes it to the named property.
func (o *Object) Set(name string, x any) error {
	v, err := o.NewValue(name, x)
	if err != nil {
		return err
	}
	defer v.Release()
	return o.SetProperty(name, v)
}
