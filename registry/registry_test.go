package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type wrapper struct {
	handle uintptr
	tag    string
}

func TestRegisterThenLookupReturnsSameWrapper(t *testing.T) {
	r := New[uintptr, *wrapper]()
	w := &wrapper{handle: 0x1000}

	r.Register(0x1000, w)

	got, ok := r.Lookup(0x1000)
	require.True(t, ok)
	assert.Same(t, w, got)

	again, ok := r.Lookup(0x1000)
	require.True(t, ok)
	assert.Same(t, got, again)
}

func TestLookupMissIsNotAnError(t *testing.T) {
	r := New[uintptr, *wrapper]()

	got, ok := r.Lookup(0x2000)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Zero(t, r.Len(), "a miss must not create an entry")
	assert.Equal(t, uint64(1), r.Stats().Misses)
}

func TestRegisterOverwriteIsLastWriteWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New[uintptr, *wrapper](WithLogger(zap.New(core)), WithName("test"))

	first := &wrapper{handle: 0x1000, tag: "first"}
	second := &wrapper{handle: 0x1000, tag: "second"}

	r.Register(0x1000, first)
	r.Register(0x1000, second)

	got, ok := r.Lookup(0x1000)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())

	stats := r.Stats()
	assert.Equal(t, uint64(2), stats.Registrations)
	assert.Equal(t, uint64(1), stats.Replacements)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "replaced registered wrapper", entry.Message)
	assert.Equal(t, "test", entry.ContextMap()["registry"])
}

func TestRegisterSameWrapperTwiceIsNotAReplacement(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New[uintptr, *wrapper](WithLogger(zap.New(core)))
	w := &wrapper{handle: 0x1000}

	r.Register(0x1000, w)
	r.Register(0x1000, w)

	assert.Zero(t, r.Stats().Replacements)
	assert.Zero(t, logs.Len())
}

// tagged is a value-type wrapper that Go cannot compare with ==.
type tagged struct {
	handle uintptr
	tags   []string
}

type handler interface{ id() uintptr }

func (t tagged) id() uintptr   { return t.handle }
func (w *wrapper) id() uintptr { return w.handle }

func TestUncomparableValuesDoNotPanic(t *testing.T) {
	r := New[uintptr, handler]()
	a := tagged{handle: 0x1000, tags: []string{"a"}}

	require.NotPanics(t, func() {
		r.Register(0x1000, a)
		r.Register(0x1000, a)
	})
	assert.Equal(t, uint64(1), r.Stats().Replacements, "uncomparable values always replace")

	require.NotPanics(t, func() {
		assert.ErrorIs(t, r.RegisterUnique(0x1000, a), ErrAmbiguousRegistration)
		assert.False(t, r.CompareAndUnregister(0x1000, a))
	})
	assert.Equal(t, 1, r.Len())

	// Mixed dynamic types compare as different without panicking.
	p := &wrapper{handle: 0x1000}
	require.NotPanics(t, func() {
		prev, replaced := r.Swap(0x1000, p)
		assert.True(t, replaced)
		assert.Equal(t, a.tags, prev.(tagged).tags)
	})
	assert.True(t, r.CompareAndUnregister(0x1000, p))

	r.Register(0x2000, a)
	r.Unregister(0x2000)
	assert.Zero(t, r.Len())
}

func TestSwapReturnsDisplacedWrapper(t *testing.T) {
	r := New[uintptr, *wrapper]()
	first := &wrapper{tag: "first"}
	second := &wrapper{tag: "second"}

	prev, replaced := r.Swap(0x1000, first)
	assert.False(t, replaced)
	assert.Nil(t, prev)

	prev, replaced = r.Swap(0x1000, second)
	assert.True(t, replaced)
	assert.Same(t, first, prev)
}

func TestRegisterUnique(t *testing.T) {
	r := New[uintptr, *wrapper]()
	first := &wrapper{tag: "first"}
	second := &wrapper{tag: "second"}

	require.NoError(t, r.RegisterUnique(0x1000, first))
	require.NoError(t, r.RegisterUnique(0x1000, first), "re-registering the same wrapper is a no-op")

	err := r.RegisterUnique(0x1000, second)
	require.ErrorIs(t, err, ErrAmbiguousRegistration)

	got, _ := r.Lookup(0x1000)
	assert.Same(t, first, got, "a rejected registration must not change the binding")
}

func TestLoadOrRegister(t *testing.T) {
	r := New[uintptr, *wrapper]()
	first := &wrapper{tag: "first"}
	second := &wrapper{tag: "second"}

	got, loaded := r.LoadOrRegister(0x1000, first)
	assert.False(t, loaded)
	assert.Same(t, first, got)

	got, loaded = r.LoadOrRegister(0x1000, second)
	assert.True(t, loaded)
	assert.Same(t, first, got)
}

func TestUnregister(t *testing.T) {
	r := New[uintptr, *wrapper]()
	r.Register(0x1000, &wrapper{})

	r.Unregister(0x1000)
	_, ok := r.Lookup(0x1000)
	assert.False(t, ok)

	// Unregistering an unknown handle is a no-op.
	r.Unregister(0x1000)
	assert.Equal(t, uint64(1), r.Stats().Unregistrations)
}

func TestCompareAndUnregisterKeepsSuccessor(t *testing.T) {
	r := New[uintptr, *wrapper]()
	old := &wrapper{tag: "old"}
	successor := &wrapper{tag: "successor"}

	r.Register(0x1000, old)
	r.Register(0x1000, successor)

	assert.False(t, r.CompareAndUnregister(0x1000, old))
	got, ok := r.Lookup(0x1000)
	require.True(t, ok)
	assert.Same(t, successor, got)

	assert.True(t, r.CompareAndUnregister(0x1000, successor))
	assert.Zero(t, r.Len())
}

func TestUnregisterFuncMatchesCurrentValue(t *testing.T) {
	r := New[uintptr, handler]()
	a := tagged{handle: 0x1000, tags: []string{"a"}}
	r.Register(0x1000, a)

	owner := func(tag string) func(handler) bool {
		return func(v handler) bool {
			tv, ok := v.(tagged)
			return ok && len(tv.tags) > 0 && tv.tags[0] == tag
		}
	}
	assert.False(t, r.UnregisterFunc(0x1000, owner("b")))
	assert.False(t, r.UnregisterFunc(0x2000, owner("a")))
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.UnregisterFunc(0x1000, owner("a")))
	assert.Zero(t, r.Len())
	assert.Equal(t, uint64(1), r.Stats().Unregistrations)
}

func TestDistinctHandlesAreIndependent(t *testing.T) {
	r := New[uintptr, *wrapper]()
	a := &wrapper{handle: 0x1000}
	b := &wrapper{handle: 0x2000}

	r.Register(0x1000, a)
	r.Register(0x2000, b)

	gotA, _ := r.Lookup(0x1000)
	gotB, _ := r.Lookup(0x2000)
	assert.Same(t, a, gotA)
	assert.Same(t, b, gotB)
	assert.NotSame(t, gotA, gotB)

	r.Unregister(0x1000)
	_, ok := r.Lookup(0x2000)
	assert.True(t, ok)
}

func TestRangeAndClear(t *testing.T) {
	r := New[uintptr, int]()
	for i := 1; i <= 5; i++ {
		r.Register(uintptr(i), i*10)
	}

	sum := 0
	r.Range(func(k uintptr, v int) bool {
		assert.Equal(t, int(k)*10, v)
		sum += v
		// Re-entrant calls must not deadlock.
		r.Lookup(k)
		return true
	})
	assert.Equal(t, 150, sum)

	visited := 0
	r.Range(func(uintptr, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Equal(t, uint64(5), r.Stats().Unregistrations)
}

func TestConcurrentRegisterAndLookup(t *testing.T) {
	r := New[uintptr, *wrapper]()

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := uintptr(w*perWorker + i + 1)
				wr := &wrapper{handle: h}
				r.Register(h, wr)
				got, ok := r.Lookup(h)
				if assert.True(t, ok) {
					assert.Same(t, wr, got)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, r.Len())
}

func TestConcurrentLoadOrRegisterAgrees(t *testing.T) {
	r := New[uintptr, *wrapper]()

	const workers = 32
	results := make([]*wrapper, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.LoadOrRegister(0x1000, &wrapper{handle: 0x1000})
		}(i)
	}
	wg.Wait()

	for _, w := range results {
		assert.Same(t, results[0], w)
	}
	assert.Equal(t, 1, r.Len())
}
