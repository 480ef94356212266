// Package registry provides an identity registry: a concurrency-safe map
// from opaque native handles to the single wrapper value that represents
// each of them.
//
// A Registry is an owned value. Create one per binding and pass it to the
// code that needs it; nothing in this package is global.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrAmbiguousRegistration is returned by RegisterUnique when the key is
// already bound to a different value.
var ErrAmbiguousRegistration = errors.New("registry: handle already has a registered wrapper")

// Stats are monotonic operation counters.
type Stats struct {
	Registrations   uint64
	Replacements    uint64
	Unregistrations uint64
	Hits            uint64
	Misses          uint64
}

// Registry maps keys to values with last-write-wins registration.
// All methods are safe for concurrent use.
//
// V may be an interface type. Values whose dynamic type cannot be compared
// are never considered equal to anything, including themselves: registering
// one always counts as a replacement, RegisterUnique rejects a second one
// and CompareAndUnregister never matches it. Use Unregister to remove them.
type Registry[K comparable, V comparable] struct {
	mu      sync.RWMutex
	entries map[K]V

	name string
	log  *zap.Logger

	registrations   atomic.Uint64
	replacements    atomic.Uint64
	unregistrations atomic.Uint64
	hits            atomic.Uint64
	misses          atomic.Uint64
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	name string
	log  *zap.Logger
}

// WithLogger sets the logger used to report replaced registrations.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithName labels the registry in log output and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New creates an empty registry.
func New[K comparable, V comparable](opts ...Option) *Registry[K, V] {
	o := options{name: "default", log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[K, V]{
		entries: make(map[K]V),
		name:    o.name,
		log:     o.log.With(zap.String("registry", o.name)),
	}
}

// Name returns the registry's label.
func (r *Registry[K, V]) Name() string {
	return r.name
}

// Register binds v to k, replacing any existing binding. It cannot fail.
// A displaced value is no longer reachable through the registry and is
// not notified.
func (r *Registry[K, V]) Register(k K, v V) {
	r.Swap(k, v)
}

// Swap binds v to k and returns the value it displaced, if any.
func (r *Registry[K, V]) Swap(k K, v V) (prev V, replaced bool) {
	r.mu.Lock()
	prev, loaded := r.entries[k]
	r.entries[k] = v
	r.mu.Unlock()

	r.registrations.Add(1)
	if loaded && !same(prev, v) {
		r.replacements.Add(1)
		r.log.Warn("replaced registered wrapper",
			zap.Any("handle", k),
			zap.String("previous", fmt.Sprintf("%T", prev)),
			zap.String("wrapper", fmt.Sprintf("%T", v)))
		return prev, true
	}
	var zero V
	return zero, false
}

// RegisterUnique binds v to k unless k is already bound to a different
// value. Registering the value k is already bound to is a no-op.
func (r *Registry[K, V]) RegisterUnique(k K, v V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[k]; ok {
		if same(cur, v) {
			return nil
		}
		return ErrAmbiguousRegistration
	}
	r.entries[k] = v
	r.registrations.Add(1)
	return nil
}

// LoadOrRegister returns the value bound to k if there is one. Otherwise it
// binds v and returns it. loaded reports whether an existing value was found.
func (r *Registry[K, V]) LoadOrRegister(k K, v V) (actual V, loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[k]; ok {
		r.hits.Add(1)
		return cur, true
	}
	r.entries[k] = v
	r.registrations.Add(1)
	return v, false
}

// Lookup returns the value bound to k. It never creates anything; a miss
// is reported through ok and is not an error.
func (r *Registry[K, V]) Lookup(k K) (v V, ok bool) {
	r.mu.RLock()
	v, ok = r.entries[k]
	r.mu.RUnlock()

	if ok {
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
	}
	return v, ok
}

// Unregister removes any binding for k.
func (r *Registry[K, V]) Unregister(k K) {
	r.mu.Lock()
	_, ok := r.entries[k]
	delete(r.entries, k)
	r.mu.Unlock()

	if ok {
		r.unregistrations.Add(1)
	}
}

// CompareAndUnregister removes the binding for k only if k is bound to v.
// A wrapper reaching end-of-life uses this so it cannot evict a successor
// registered under the same handle.
func (r *Registry[K, V]) CompareAndUnregister(k K, v V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[k]
	if !ok || !same(cur, v) {
		return false
	}
	delete(r.entries, k)
	r.unregistrations.Add(1)
	return true
}

// UnregisterFunc removes the binding for k only if match reports true for
// the value k is bound to. match runs under the registry lock and must not
// call back into the registry.
func (r *Registry[K, V]) UnregisterFunc(k K, match func(V) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[k]
	if !ok || !match(cur) {
		return false
	}
	delete(r.entries, k)
	r.unregistrations.Add(1)
	return true
}

// Len returns the number of bound keys.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for each binding until fn returns false. It iterates over a
// snapshot taken under the lock, so fn may call back into the registry.
func (r *Registry[K, V]) Range(fn func(k K, v V) bool) {
	type entry struct {
		k K
		v V
	}
	r.mu.RLock()
	snapshot := make([]entry, 0, len(r.entries))
	for k, v := range r.entries {
		snapshot = append(snapshot, entry{k, v})
	}
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e.k, e.v) {
			return
		}
	}
}

// Clear removes every binding.
func (r *Registry[K, V]) Clear() {
	r.mu.Lock()
	n := len(r.entries)
	r.entries = make(map[K]V)
	r.mu.Unlock()

	r.unregistrations.Add(uint64(n))
}

// Stats returns a snapshot of the operation counters.
func (r *Registry[K, V]) Stats() Stats {
	return Stats{
		Registrations:   r.registrations.Load(),
		Replacements:    r.replacements.Load(),
		Unregistrations: r.unregistrations.Load(),
		Hits:            r.hits.Load(),
		Misses:          r.misses.Load(),
	}
}

// same reports whether a and b are equal without panicking on interface
// values that hold uncomparable dynamic types.
func same[V comparable](a, b V) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
