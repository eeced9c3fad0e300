package engine

import (
	"math/rand"
)

// Rand is the source of randomness for draws. *math/rand.Rand satisfies it,
// so tests inject a seeded (or scripted) source and get exact outcomes.
type Rand interface {
	// Intn returns a uniformly distributed int in [0, n).
	Intn(n int) int

	// Int63n returns a uniformly distributed int64 in [0, n).
	Int63n(n int64) int64
}

// lockedRand delegates to the top-level math/rand functions, which are
// safe for concurrent use.
type lockedRand struct{}

func (lockedRand) Intn(n int) int       { return rand.Intn(n) }     // #nosec G404 -- reward draws are not security sensitive
func (lockedRand) Int63n(n int64) int64 { return rand.Int63n(n) }   // #nosec G404

// DefaultRand returns a concurrency-safe randomness source backed by the
// shared math/rand generator.
func DefaultRand() Rand {
	return lockedRand{}
}

// SeededRand returns a deterministic source for tests and replay. It is not
// safe for concurrent use.
func SeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404
}
