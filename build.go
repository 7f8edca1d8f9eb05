package perfectset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	seterrors "github.com/tamirms/perfectset/errors"
	intbits "github.com/tamirms/perfectset/internal/bits"
	"github.com/tamirms/perfectset/internal/firstlevel"
	"github.com/tamirms/perfectset/internal/secondlevel"
	"github.com/tamirms/perfectset/internal/universal"
)

const (
	// contextCheckInterval is how often (in buckets) to check for context
	// cancellation while solving second-level tables.
	contextCheckInterval = 4096

	// maxKeys is the largest universe: Size is a uint32.
	maxKeys = math.MaxUint32
)

// build replaces the structure of s with one for keys. s is reset first, so
// a failed build leaves it empty.
func (s *Set) build(ctx context.Context, keys []uint32) error {
	s.reset()

	if uint64(len(keys)) > maxKeys {
		return fmt.Errorf("%w: got %d", seterrors.ErrTooManyKeys, len(keys))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log := s.cfg.logger
	part, err := firstlevel.NewBuilder(s.src, s.cfg.maxAttempts).Build(keys)
	if err != nil {
		log.Debug().Err(err).Int("keys", len(keys)).Msg("first level failed")
		return err
	}
	log.Debug().
		Int("keys", len(keys)).
		Int("attempts", part.Attempts).
		Uint64("sum_squares", part.SumSquares).
		Msg("first level accepted")

	buckets := make([]bucket, len(part.Buckets))
	var numSlots uint64
	for i, bucketKeys := range part.Buckets {
		buckets[i].base = numSlots
		numSlots += secondlevel.NumSlots(len(bucketKeys))
	}

	var attempts int
	if workers := s.cfg.workers; workers > 1 {
		attempts, err = s.solveParallel(ctx, part.Buckets, buckets, workers)
	} else {
		attempts, err = s.solveSerial(ctx, part.Buckets, buckets)
	}
	if err != nil {
		log.Debug().Err(err).Int("attempts", attempts).Msg("second level failed")
		return err
	}

	slots := make([]uint32, numSlots)
	occupied := intbits.NewBitset(int(numSlots))
	stats := Stats{
		Keys:                len(keys),
		Buckets:             len(part.Buckets),
		SumSquares:          part.SumSquares,
		Slots:               numSlots,
		FirstLevelAttempts:  part.Attempts,
		SecondLevelAttempts: attempts,
	}
	for i, bucketKeys := range part.Buckets {
		if len(bucketKeys) == 0 {
			continue
		}
		b := buckets[i]
		secondlevel.Place(bucketKeys, b.hash, slots[b.base:b.base+b.hash.P], occupied, b.base)
		stats.NonEmptyBuckets++
		stats.LargestBucket = max(stats.LargestBucket, len(bucketKeys))
	}
	log.Debug().
		Uint64("slots", numSlots).
		Int("attempts", attempts).
		Int("largest_bucket", stats.LargestBucket).
		Msg("second level built")

	s.first = part.Hash
	s.buckets = buckets
	s.slots = slots
	s.occupied = occupied
	s.present = intbits.NewBitset(int(numSlots))
	s.numKeys = len(keys)
	s.stats = stats
	return nil
}

// solveSerial finds every bucket's hash on the calling goroutine and returns
// the total number of attempts.
//
// Each non-empty bucket gets a PCG reseeded with two values drawn from the
// Set's source in bucket order; solveParallel draws the same values, so the
// result does not depend on the worker count.
func (s *Set) solveSerial(ctx context.Context, bucketKeys [][]uint32, out []bucket) (int, error) {
	pcg := rand.NewPCG(0, 0)
	solver := secondlevel.NewSolver(pcg, s.cfg.maxAttempts)

	total := 0
	for i, keys := range bucketKeys {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return total, err
			}
		}
		if len(keys) == 0 {
			continue
		}
		pcg.Seed(s.src.Uint64(), s.src.Uint64())
		h, attempts, err := solver.Solve(keys)
		total += attempts
		if err != nil {
			return total, fmt.Errorf("bucket %d: %w", i, err)
		}
		out[i].hash = h
	}
	return total, nil
}

// reset drops the structure, leaving an empty universe.
func (s *Set) reset() {
	s.first = universal.Hash{}
	s.buckets = nil
	s.slots = nil
	s.occupied = nil
	s.present = nil
	s.numKeys = 0
	s.count = 0
	s.stats = Stats{}
}
