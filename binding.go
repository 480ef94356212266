package gobj

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/gobj/registry"
)

// Native is the foreign call boundary a Binding forwards to.
type Native interface {
	// GetProperty reads a property into a new native value owned by the
	// caller, to be freed with ReleaseValue.
	GetProperty(obj Handle, name string) (uintptr, error)

	// SetProperty writes value to a property. The callee does not take
	// ownership of value.
	SetProperty(obj Handle, name string, value uintptr) error

	// ReleaseValue frees a value returned by GetProperty or EncodeValue.
	ReleaseValue(value uintptr)
}

// TypeResolver is implemented by natives that can name an object's type.
type TypeResolver interface {
	// TypeNames returns the object's type name followed by its ancestors,
	// most derived first.
	TypeNames(obj Handle) ([]string, error)
}

// FinalizeNotifier is implemented by natives that can report object
// destruction.
type FinalizeNotifier interface {
	// NotifyFinalize arranges for fn to run once when obj is destroyed.
	// cancel must only be called while obj is still alive.
	NotifyFinalize(obj Handle, fn func()) (cancel func(), err error)
}

// ValueCodec is implemented by natives that convert between native values
// and Go values.
type ValueCodec interface {
	DecodeValue(value uintptr) (any, error)
	// EncodeValue builds a native value of the type the named property expects.
	EncodeValue(obj Handle, name string, x any) (uintptr, error)
	FormatValue(value uintptr) string
}

// Constructor builds a typed wrapper around a fresh *Object. The returned
// wrapper must report obj's handle.
type Constructor func(obj *Object) Wrapper

// Option configures a Binding.
type Option func(*config)

type config struct {
	log           *zap.Logger
	registryName  string
	trackFinalize bool
}

// WithLogger sets the binding's logger. The default is the package Logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRegistryName labels the binding's registry in logs and metrics.
func WithRegistryName(name string) Option {
	return func(c *config) { c.registryName = name }
}

// WithFinalizeTracking controls whether registered handles are watched for
// native finalization when the Native supports it. It is on by default.
// Turn it off when registering handles that are not live native objects.
func WithFinalizeTracking(enabled bool) Option {
	return func(c *config) { c.trackFinalize = enabled }
}

// Binding owns the identity registry for one native library and is the
// entry point for every operation that crosses into it.
type Binding struct {
	native Native
	reg    *registry.Registry[Handle, Wrapper]
	log    *zap.Logger

	watchMu  sync.Mutex
	watches  map[Handle]*watch
	finalize FinalizeNotifier

	typesMu      sync.RWMutex
	constructors map[string]Constructor

	callErrors map[string]*atomic.Uint64
}

// watch is the single finalization hook installed for a handle. It records
// the object of every wrapper registered under the handle while it was
// active so all of them observe finalization, including ones displaced by a
// later Register. Each object appears once.
type watch struct {
	cancel  func()
	objects []*Object
}

// NewBinding creates a binding over native with an empty registry.
func NewBinding(native Native, opts ...Option) *Binding {
	c := config{log: Logger(), registryName: "default", trackFinalize: true}
	for _, opt := range opts {
		opt(&c)
	}

	b := &Binding{
		native:       native,
		log:          c.log,
		watches:      make(map[Handle]*watch),
		constructors: make(map[string]Constructor),
		callErrors:   make(map[string]*atomic.Uint64, len(nativeOps)),
	}
	b.reg = registry.New[Handle, Wrapper](
		registry.WithLogger(c.log),
		registry.WithName(c.registryName),
	)
	if fn, ok := native.(FinalizeNotifier); ok && c.trackFinalize {
		b.finalize = fn
	}
	for _, op := range nativeOps {
		b.callErrors[op] = new(atomic.Uint64)
	}
	return b
}

// Native returns the native implementation the binding forwards to.
func (b *Binding) Native() Native { return b.native }

// Registry exposes the underlying identity registry.
func (b *Binding) Registry() *registry.Registry[Handle, Wrapper] { return b.reg }

// Len returns the number of registered handles.
func (b *Binding) Len() int { return b.reg.Len() }

// Bind creates a plain *Object for h and registers it.
func (b *Binding) Bind(h Handle) *Object {
	obj := NewObject(b, h)
	b.Register(obj)
	return obj
}

// Register makes w the wrapper for its handle, replacing any previous one.
func (b *Binding) Register(w Wrapper) {
	h := w.Handle()
	b.reg.Register(h, w)
	b.watch(h, w)
}

// RegisterUnique registers w unless its handle already has a different
// wrapper, in which case it returns ErrAmbiguousRegistration.
func (b *Binding) RegisterUnique(w Wrapper) error {
	h := w.Handle()
	if err := b.reg.RegisterUnique(h, w); err != nil {
		return fmt.Errorf("%w: %s", err, h)
	}
	b.watch(h, w)
	return nil
}

// Lookup returns the wrapper registered for h. It never creates one.
func (b *Binding) Lookup(h Handle) (Wrapper, bool) {
	return b.reg.Lookup(h)
}

// Unregister removes the wrapper for h and drops its finalization watch.
// Call it before releasing the last native reference to h.
func (b *Binding) Unregister(h Handle) {
	b.reg.Unregister(h)
	b.unwatch(h)
}

// release is the end-of-life path for the wrapper backed by obj. It only
// removes the entry for h if that entry is obj or embeds it.
func (b *Binding) release(h Handle, obj *Object) {
	backed := func(w Wrapper) bool { return objectOf(w) == obj }
	if b.reg.UnregisterFunc(h, backed) {
		b.unwatch(h)
	}
}

// RegisterType associates a constructor with a native type name for Wrap.
func (b *Binding) RegisterType(typeName string, ctor Constructor) {
	b.typesMu.Lock()
	b.constructors[typeName] = ctor
	b.typesMu.Unlock()
}

// Wrap returns the wrapper for h, creating and registering one if there is
// none. The wrapper's type is chosen by the most derived registered type
// name the native reports; without a match it is a plain *Object.
// Concurrent calls for the same handle agree on a single wrapper.
func (b *Binding) Wrap(h Handle) (Wrapper, error) {
	if w, ok := b.reg.Lookup(h); ok {
		return w, nil
	}
	if h == 0 {
		return nil, ErrInvalidHandle
	}

	w, err := b.construct(h)
	if err != nil {
		return nil, err
	}
	actual, loaded := b.reg.LoadOrRegister(h, w)
	if !loaded {
		b.watch(h, actual)
	}
	return actual, nil
}

func (b *Binding) construct(h Handle) (Wrapper, error) {
	obj := NewObject(b, h)

	resolver, ok := b.native.(TypeResolver)
	if !ok {
		return obj, nil
	}
	names, err := resolver.TypeNames(h)
	if err != nil {
		b.callFailed(OpTypeNames)
		return nil, &NativeCallError{Op: OpTypeNames, Handle: h, Err: err}
	}

	b.typesMu.RLock()
	var ctor Constructor
	for _, name := range names {
		if c, ok := b.constructors[name]; ok {
			ctor = c
			break
		}
	}
	b.typesMu.RUnlock()

	if ctor == nil {
		return obj, nil
	}
	w := ctor(obj)
	if w == nil || w.Handle() != h {
		return nil, fmt.Errorf("%w: %s", ErrWrapperMismatch, h)
	}
	return w, nil
}

type objectBacked interface {
	object() *Object
}

// objectOf returns the *Object backing w, or nil for wrappers that do not
// embed one.
func objectOf(w Wrapper) *Object {
	if ob, ok := w.(objectBacked); ok {
		return ob.object()
	}
	return nil
}

func (b *Binding) watch(h Handle, w Wrapper) {
	if b.finalize == nil || h == 0 {
		return
	}
	obj := objectOf(w)

	b.watchMu.Lock()
	defer b.watchMu.Unlock()

	if existing, ok := b.watches[h]; ok {
		if obj != nil && !slices.Contains(existing.objects, obj) {
			existing.objects = append(existing.objects, obj)
		}
		return
	}

	cancel, err := b.finalize.NotifyFinalize(h, func() { b.finalized(h) })
	if err != nil {
		b.callFailed(OpNotifyFinalize)
		b.log.Warn("cannot watch native object for finalization",
			zap.Stringer("handle", h), zap.Error(err))
		return
	}
	wt := &watch{cancel: cancel}
	if obj != nil {
		wt.objects = []*Object{obj}
	}
	b.watches[h] = wt
}

func (b *Binding) unwatch(h Handle) {
	b.watchMu.Lock()
	wt, ok := b.watches[h]
	delete(b.watches, h)
	b.watchMu.Unlock()

	if ok && wt.cancel != nil {
		wt.cancel()
	}
}

// finalized runs when the native object behind h is destroyed.
func (b *Binding) finalized(h Handle) {
	b.watchMu.Lock()
	wt, ok := b.watches[h]
	delete(b.watches, h)
	b.watchMu.Unlock()

	if !ok {
		return
	}
	for _, obj := range wt.objects {
		obj.markFinalized()
	}
	// The handle is dead, so whatever is registered under it is stale.
	b.reg.Unregister(h)
	b.log.Debug("native object finalized", zap.Stringer("handle", h))
}

func (b *Binding) callFailed(op string) {
	if c, ok := b.callErrors[op]; ok {
		c.Add(1)
	}
}

// NativeCallErrors returns the number of failed native calls per operation.
func (b *Binding) NativeCallErrors() map[string]uint64 {
	out := make(map[string]uint64, len(b.callErrors))
	for op, c := range b.callErrors {
		out[op] = c.Load()
	}
	return out
}

// BorrowValue wraps a native value handle the caller keeps ownership of.
// Releasing the result invalidates it without freeing the native value.
func (b *Binding) BorrowValue(raw uintptr) *Value {
	return newValue(b, raw, false)
}
