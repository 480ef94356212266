package gobj

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Handle is an opaque native object handle. The registry never dereferences
// it; zero is a valid registry key but never a valid native object.
type Handle uintptr

// IsZero reports whether h is the null handle.
func (h Handle) IsZero() bool { return h == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// Wrapper is a Go value that represents one native object.
type Wrapper interface {
	Handle() Handle
}

// Equal reports whether a and b wrap the same native handle. A nil
// wrapper stands for the null handle, so nil, a typed nil and a wrapper
// of handle 0 are all equal to each other.
func Equal(a, b Wrapper) bool {
	return handleOf(a) == handleOf(b)
}

// Hash returns a hash derived only from the wrapped handle, so that
// Equal(a, b) implies Hash(a) == Hash(b).
func Hash(w Wrapper) uint64 {
	return hashHandle(handleOf(w))
}

func handleOf(w Wrapper) Handle {
	if w == nil {
		return 0
	}
	return w.Handle()
}

func hashHandle(h Handle) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(h))
	return xxhash.Sum64(buf[:])
}
