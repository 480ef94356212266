package gobj

import (
	"errors"
	"fmt"
	"sync"
)

var (
	errFakeUnknownProperty = errors.New("fake: unknown property")
	errFakeNoObject        = errors.New("fake: no such object")
)

// fakeNative is an in-memory object system. Objects are property maps keyed
// by handle; values are entries in a table of live value handles.
type fakeNative struct {
	mu sync.Mutex

	objects map[Handle]map[string]any
	types   map[Handle][]string

	values    map[uintptr]any
	nextValue uintptr
	releases  map[uintptr]int

	// transient objects are destroyed when a value referring to them is
	// released, as when a getter hands out the only reference.
	transient map[Handle]bool

	finalizers  map[Handle]map[int]func()
	nextWatch   int
	notifyCalls int
	notifyErr   error
	typeErr     error
}

func newFakeNative() *fakeNative {
	return &fakeNative{
		objects:    make(map[Handle]map[string]any),
		types:      make(map[Handle][]string),
		values:     make(map[uintptr]any),
		nextValue:  0x100,
		releases:   make(map[uintptr]int),
		transient:  make(map[Handle]bool),
		finalizers: make(map[Handle]map[int]func()),
	}
}

// addObject creates a native object with the given type ancestry.
func (f *fakeNative) addObject(h Handle, props map[string]any, types ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if props == nil {
		props = make(map[string]any)
	}
	f.objects[h] = props
	f.types[h] = types
}

// destroy finalizes a native object, running its finalization callbacks.
func (f *fakeNative) destroy(h Handle) {
	f.mu.Lock()
	delete(f.objects, h)
	fns := f.finalizers[h]
	delete(f.finalizers, h)
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// dropWithValue makes the value read from a property the only reference to h.
func (f *fakeNative) dropWithValue(h Handle) {
	f.mu.Lock()
	f.transient[h] = true
	f.mu.Unlock()
}

func (f *fakeNative) prop(h Handle, name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[h][name]
}

func (f *fakeNative) newValue(x any) uintptr {
	f.nextValue++
	f.values[f.nextValue] = x
	return f.nextValue
}

func (f *fakeNative) liveValues() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.values)
}

func (f *fakeNative) releaseCount(v uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases[v]
}

func (f *fakeNative) watchers(h Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.finalizers[h])
}

func (f *fakeNative) GetProperty(obj Handle, name string) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	props, ok := f.objects[obj]
	if !ok {
		return 0, errFakeNoObject
	}
	x, ok := props[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errFakeUnknownProperty, name)
	}
	return f.newValue(x), nil
}

func (f *fakeNative) SetProperty(obj Handle, name string, value uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	props, ok := f.objects[obj]
	if !ok {
		return errFakeNoObject
	}
	if _, ok := props[name]; !ok {
		return fmt.Errorf("%w: %q", errFakeUnknownProperty, name)
	}
	x, ok := f.values[value]
	if !ok {
		return fmt.Errorf("fake: dead value 0x%x", value)
	}
	props[name] = x
	return nil
}

func (f *fakeNative) ReleaseValue(value uintptr) {
	f.mu.Lock()
	f.releases[value]++
	x := f.values[value]
	delete(f.values, value)
	h, isHandle := x.(Handle)
	drop := isHandle && f.transient[h]
	if drop {
		delete(f.transient, h)
	}
	f.mu.Unlock()

	if drop {
		f.destroy(h)
	}
}

func (f *fakeNative) TypeNames(obj Handle) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typeErr != nil {
		return nil, f.typeErr
	}
	names, ok := f.types[obj]
	if !ok {
		return nil, errFakeNoObject
	}
	return names, nil
}

func (f *fakeNative) NotifyFinalize(obj Handle, fn func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifyCalls++
	if f.notifyErr != nil {
		return nil, f.notifyErr
	}
	if _, ok := f.objects[obj]; !ok {
		return nil, errFakeNoObject
	}
	if f.finalizers[obj] == nil {
		f.finalizers[obj] = make(map[int]func())
	}
	f.nextWatch++
	id := f.nextWatch
	f.finalizers[obj][id] = fn
	return func() {
		f.mu.Lock()
		delete(f.finalizers[obj], id)
		f.mu.Unlock()
	}, nil
}

func (f *fakeNative) DecodeValue(value uintptr) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.values[value]
	if !ok {
		return nil, fmt.Errorf("fake: dead value 0x%x", value)
	}
	return x, nil
}

func (f *fakeNative) EncodeValue(obj Handle, name string, x any) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	props, ok := f.objects[obj]
	if !ok {
		return 0, errFakeNoObject
	}
	cur, ok := props[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errFakeUnknownProperty, name)
	}
	if cur != nil && fmt.Sprintf("%T", cur) != fmt.Sprintf("%T", x) {
		return 0, fmt.Errorf("fake: %q holds %T, got %T", name, cur, x)
	}
	return f.newValue(x), nil
}

func (f *fakeNative) FormatValue(value uintptr) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("%v", f.values[value])
}

// plainNative implements only the required Native methods.
type plainNative struct {
	f *fakeNative
}

func (p plainNative) GetProperty(obj Handle, name string) (uintptr, error) {
	return p.f.GetProperty(obj, name)
}

func (p plainNative) SetProperty(obj Handle, name string, value uintptr) error {
	return p.f.SetProperty(obj, name, value)
}

func (p plainNative) ReleaseValue(value uintptr) {
	p.f.ReleaseValue(value)
}
