// Package shuffle provides copy-only Fisher–Yates permutation with an
// injectable random source, so tests can seed it and assert an exact
// order while production draws from a time-seeded source.
package shuffle

import (
	"math/rand"
	"time"
)

// Source yields integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// New returns a deterministic source for the given seed.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Time returns a source seeded from the wall clock. Not
// cryptographically secure, and not meant to be.
func Time() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Slice returns a shuffled copy; the input is never mutated.
func Slice[T any](src Source, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
