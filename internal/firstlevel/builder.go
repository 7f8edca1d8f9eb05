// Package firstlevel partitions a key set into n buckets for the FKS
// two-level scheme.
//
// A random member of the universal family maps every key to one of n
// buckets. The partition is accepted when the sum of squared bucket sizes is
// at most loadBound*n, which keeps the second-level tables (size² slots per
// bucket) linear in n. Universal hashing keeps E[Σ size²] near 2n, so each
// attempt is accepted with constant probability.
package firstlevel

import (
	"fmt"
	"math/rand/v2"
	"slices"

	seterrors "github.com/tamirms/perfectset/errors"
	"github.com/tamirms/perfectset/internal/universal"
)

const (
	// loadBound is the acceptance multiplier: Σ size² <= loadBound * n.
	loadBound = 3

	// pairwiseLimit is the largest bucket checked for duplicates by direct
	// pairwise comparison. Larger buckets are sorted into a scratch buffer.
	pairwiseLimit = 8
)

// Result is an accepted first-level partition.
type Result struct {
	// Hash maps a key to its bucket index in [0, n).
	Hash universal.Hash

	// Buckets[i] holds the keys assigned to bucket i. All buckets are
	// capacity-limited views into one backing array.
	Buckets [][]uint32

	// SumSquares is Σ len(Buckets[i])².
	SumSquares uint64

	// Attempts is the number of hash functions sampled, including the
	// accepted one.
	Attempts int
}

// Builder holds reusable buffers for partitioning.
// A Builder is NOT safe for concurrent use.
type Builder struct {
	src         rand.Source
	maxAttempts int

	bucketOf []uint64 // bucket index per input key for the current attempt
	offsets  []uint32 // bucket sizes, then start offsets (len = n+1)
	cursor   []uint32 // scatter write positions
	flat     []uint32 // scatter target for rejected partitions
	scratch  []uint32 // sort buffer for duplicate detection
}

// NewBuilder creates a partitioner drawing hash parameters from src.
// maxAttempts bounds the number of hash functions tried per Build.
func NewBuilder(src rand.Source, maxAttempts int) *Builder {
	return &Builder{src: src, maxAttempts: maxAttempts}
}

// Build partitions keys. It returns ErrDuplicateKey if keys contains a
// repeated value and ErrBuildExhausted if no acceptable partition was found
// within the attempt bound.
//
// The returned Result does not alias keys but does own its bucket storage;
// callers may keep it across later Build calls.
func (b *Builder) Build(keys []uint32) (*Result, error) {
	n := len(keys)
	if n == 0 {
		return &Result{}, nil
	}

	b.bucketOf = slices.Grow(b.bucketOf[:0], n)[:n]
	b.offsets = slices.Grow(b.offsets[:0], n+1)[:n+1]
	b.cursor = slices.Grow(b.cursor[:0], n)[:n]

	limit := uint64(loadBound) * uint64(n)
	var lastSum uint64
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		h := universal.Sample(b.src, uint64(n))
		sum, ok := b.assign(keys, h, limit)
		lastSum = sum

		// Equal values land in the same bucket under every hash, so one
		// check on the first partition covers all attempts.
		if attempt == 1 || ok {
			// A rejected partition is scattered into a reused buffer; only
			// an accepted one gets storage the Result can own.
			var flat []uint32
			if ok {
				flat = make([]uint32, n)
			} else {
				b.flat = slices.Grow(b.flat[:0], n)[:n]
				flat = b.flat
			}
			b.scatter(keys, flat)
			if attempt == 1 {
				if err := b.checkDuplicates(flat); err != nil {
					return nil, err
				}
			}
			if ok {
				return &Result{
					Hash:       h,
					Buckets:    b.split(flat),
					SumSquares: sum,
					Attempts:   attempt,
				}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: first level gave up after %d attempts (sum of squares %d > %d)",
		seterrors.ErrBuildExhausted, b.maxAttempts, lastSum, limit)
}

// assign computes the bucket of every key and the bucket sizes for h.
// It reports the sum of squared sizes and whether it is within limit.
// Summation stops early once the limit is exceeded.
func (b *Builder) assign(keys []uint32, h universal.Hash, limit uint64) (uint64, bool) {
	clear(b.offsets)
	for i, k := range keys {
		idx := h.Calculate(k)
		b.bucketOf[i] = idx
		b.offsets[idx+1]++
	}

	var sum uint64
	for _, c := range b.offsets[1:] {
		sum += uint64(c) * uint64(c)
		if sum > limit {
			return sum, false
		}
	}
	return sum, true
}

// scatter groups keys by bucket into flat, using the sizes left in offsets
// by assign. Afterwards offsets holds bucket start positions.
func (b *Builder) scatter(keys []uint32, flat []uint32) {
	n := len(keys)
	for i := 1; i <= n; i++ {
		b.offsets[i] += b.offsets[i-1]
	}
	copy(b.cursor, b.offsets[:n])

	for i, k := range keys {
		idx := b.bucketOf[i]
		flat[b.cursor[idx]] = k
		b.cursor[idx]++
	}
}

// split returns capacity-limited per-bucket views of a scattered flat array.
func (b *Builder) split(flat []uint32) [][]uint32 {
	buckets := make([][]uint32, len(flat))
	for i := range buckets {
		lo, hi := b.offsets[i], b.offsets[i+1]
		buckets[i] = flat[lo:hi:hi]
	}
	return buckets
}

// checkDuplicates compares every pair of keys within each bucket of a
// scattered flat array. Small buckets are compared directly; larger ones are
// sorted first so non-adjacent repeats are still found.
func (b *Builder) checkDuplicates(flat []uint32) error {
	for i := range len(flat) {
		bucket := flat[b.offsets[i]:b.offsets[i+1]]
		if k, found := b.findDuplicate(bucket); found {
			return fmt.Errorf("%w: key %d", seterrors.ErrDuplicateKey, k)
		}
	}
	return nil
}

func (b *Builder) findDuplicate(bucket []uint32) (uint32, bool) {
	if len(bucket) <= pairwiseLimit {
		for i := range bucket {
			for j := i + 1; j < len(bucket); j++ {
				if bucket[i] == bucket[j] {
					return bucket[i], true
				}
			}
		}
		return 0, false
	}

	b.scratch = append(b.scratch[:0], bucket...)
	slices.Sort(b.scratch)
	for i := 1; i < len(b.scratch); i++ {
		if b.scratch[i] == b.scratch[i-1] {
			return b.scratch[i], true
		}
	}
	return 0, false
}
