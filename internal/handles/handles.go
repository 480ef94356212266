// Package handles maps small integer tokens to Go values so they can travel
// through native user_data pointers.
//
// Native code must never hold Go pointers. A callback registered with the
// native side (a weak-reference notify, for example) instead receives a
// token; the trampoline turns the token back into the Go value with Get or,
// for one-shot callbacks, Take.
package handles

import "sync"

// Table is a thread-safe token table. The zero token is never issued, so it
// stays usable as a NULL sentinel on the native side.
type Table struct {
	mu     sync.RWMutex
	values map[uintptr]any
	next   uintptr
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[uintptr]any), next: 1}
}

// Put stores v and returns its token.
func (t *Table) Put(v any) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.values[id] = v
	return id
}

// Get returns the value stored under id.
func (t *Table) Get(id uintptr) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[id]
	return v, ok
}

// Take removes and returns the value stored under id. Exactly one of any
// number of concurrent Take calls for the same token observes ok == true.
func (t *Table) Take(id uintptr) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[id]
	if ok {
		delete(t.values, id)
	}
	return v, ok
}

// Delete forgets id so its value can be garbage collected.
func (t *Table) Delete(id uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, id)
}

// Len returns the number of live tokens. Useful for leak checks in tests.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Default is the process-wide table used by native callback trampolines,
// which are created once and cannot carry a *Table of their own.
var Default = NewTable()

// Put stores v in Default.
func Put(v any) uintptr { return Default.Put(v) }

// Get reads id from Default.
func Get(id uintptr) (any, bool) { return Default.Get(id) }

// Take removes id from Default and returns its value.
func Take(id uintptr) (any, bool) { return Default.Take(id) }

// Delete removes id from Default.
func Delete(id uintptr) { Default.Delete(id) }
