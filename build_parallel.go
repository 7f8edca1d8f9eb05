package perfectset

import (
	"context"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/perfectset/internal/secondlevel"
)

const (
	// workChanBufferMultiplier is the multiplier for work channel buffer size
	workChanBufferMultiplier = 2

	// bucketsPerChunk is the number of consecutive buckets handed to a
	// worker at a time.
	bucketsPerChunk = 1024
)

// pcgSeed is the pair of values reseeding a bucket's PCG.
type pcgSeed struct {
	hi, lo uint64
}

// bucketChunk is a half-open range of first-level bucket indices.
type bucketChunk struct {
	start, end int
}

// solveParallel finds every bucket's hash on workers goroutines and returns
// the total number of attempts.
//
// Seeds are drawn from the Set's source up front in bucket order, exactly as
// solveSerial draws them, so each bucket sees the same random stream no
// matter which worker solves it. Workers write only their own buckets' entries
// of out.
func (s *Set) solveParallel(ctx context.Context, bucketKeys [][]uint32, out []bucket, workers int) (int, error) {
	seeds := make([]pcgSeed, len(bucketKeys))
	for i, keys := range bucketKeys {
		if len(keys) > 0 {
			seeds[i] = pcgSeed{hi: s.src.Uint64(), lo: s.src.Uint64()}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	work := make(chan bucketChunk, workers*workChanBufferMultiplier)
	attempts := make([]int, workers)

	for w := range workers {
		g.Go(func() error {
			pcg := rand.NewPCG(0, 0)
			solver := secondlevel.NewSolver(pcg, s.cfg.maxAttempts)
			for chunk := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := chunk.start; i < chunk.end; i++ {
					keys := bucketKeys[i]
					if len(keys) == 0 {
						continue
					}
					pcg.Seed(seeds[i].hi, seeds[i].lo)
					h, n, err := solver.Solve(keys)
					attempts[w] += n
					if err != nil {
						return fmt.Errorf("bucket %d: %w", i, err)
					}
					out[i].hash = h
				}
			}
			return nil
		})
	}

	// Dispatcher. Stops early if a worker fails so no one blocks on work.
	g.Go(func() error {
		defer close(work)
		for start := 0; start < len(bucketKeys); start += bucketsPerChunk {
			chunk := bucketChunk{start: start, end: min(start+bucketsPerChunk, len(bucketKeys))}
			select {
			case work <- chunk:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	total := 0
	for _, n := range attempts {
		total += n
	}
	return total, err
}
