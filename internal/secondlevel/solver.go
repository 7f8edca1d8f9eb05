// Package secondlevel builds the collision-free per-bucket tables of the
// FKS scheme.
//
// A bucket of m keys gets its own member of the universal family with
// p = m². With m² slots the expected number of colliding pairs is below 1/2,
// so a random hash is injective with probability above 1/2 and the solver
// needs O(1) expected attempts.
package secondlevel

import (
	"fmt"
	"math/rand/v2"

	seterrors "github.com/tamirms/perfectset/errors"
	intbits "github.com/tamirms/perfectset/internal/bits"
	"github.com/tamirms/perfectset/internal/universal"
)

// Solver searches for injective bucket hashes.
//
// A Solver is NOT safe for concurrent use. In parallel builds, each worker
// goroutine creates its own Solver. Internal buffers are retained and reused
// across buckets.
type Solver struct {
	src         rand.Source
	maxAttempts int

	taken intbits.Bitset // slots claimed during the current attempt
}

// NewSolver creates a solver drawing hash parameters from src.
// maxAttempts bounds the number of hash functions tried per bucket.
func NewSolver(src rand.Source, maxAttempts int) *Solver {
	return &Solver{src: src, maxAttempts: maxAttempts}
}

// NumSlots returns the slot table size for a bucket of m keys.
func NumSlots(m int) uint64 {
	return uint64(m) * uint64(m)
}

// Solve returns a hash with P = len(keys)² that maps keys to pairwise
// distinct slots, and the number of attempts it took. keys must not contain
// duplicates; a duplicated value can never be separated and ends in
// ErrBuildExhausted. An empty bucket needs no hash and reports zero attempts.
func (s *Solver) Solve(keys []uint32) (universal.Hash, int, error) {
	m := len(keys)
	if m == 0 {
		return universal.Hash{}, 0, nil
	}

	numSlots := NumSlots(m)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		h := universal.Sample(s.src, numSlots)
		if s.isInjective(keys, h) {
			return h, attempt, nil
		}
	}
	return universal.Hash{}, s.maxAttempts, fmt.Errorf("%w: second level bucket of %d keys gave up after %d attempts",
		seterrors.ErrBuildExhausted, m, s.maxAttempts)
}

// isInjective reports whether h is injective over keys.
func (s *Solver) isInjective(keys []uint32, h universal.Hash) bool {
	s.taken = s.taken.Reset(int(h.P))
	for _, k := range keys {
		slot := h.Calculate(k)
		if s.taken.Test(slot) {
			return false
		}
		s.taken.Set(slot)
	}
	return true
}

// Place writes keys into their slots under h. slots is the bucket's slot
// table (len(keys)² entries); occupied is a bitset shared by all buckets in
// which the bucket's table starts at bit base.
//
// Place does not check injectivity; h must come from Solve for these keys.
func Place(keys []uint32, h universal.Hash, slots []uint32, occupied intbits.Bitset, base uint64) {
	for _, k := range keys {
		slot := h.Calculate(k)
		slots[slot] = k
		occupied.Set(base + slot)
	}
}
