package worker

import (
	"math/rand/v2"
	"sync/atomic"
)

// Generator returns the next item to produce.
// It may be called concurrently by several producers.
type Generator func() int

// RandomGenerator returns items uniformly distributed in [0, limit).
func RandomGenerator(limit int) Generator {
	return func() int {
		return rand.IntN(limit)
	}
}

// SequenceGenerator returns start, start+1, start+2, ...
// Every call returns a distinct value, even across producers.
func SequenceGenerator(start int) Generator {
	var next atomic.Int64
	next.Store(int64(start))

	return func() int {
		return int(next.Add(1) - 1)
	}
}
