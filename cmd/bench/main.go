// Bench is a benchmarking tool for measuring perfectset build time,
// lookup latency and memory usage.
//
// Usage:
//
//	go run ./cmd/bench --keys 10000000 --workers 4
//
// Flags:
//
//	--keys        Number of keys in the universe (default: 10,000,000)
//	--seed        Seed for key generation and the build (default: 42)
//	--workers     Number of parallel workers for second-level tables (default: 1)
//	--queries     Number of timed lookups (default: 1,000,000)
//	--hasher      Build from string keys hashed with xxh3, xxhash or murmur3 (default: off)
//	--cpuprofile  Write a CPU profile of the build phase to this file
//	--verbose     Log build diagnostics
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/tamirms/perfectset"
)

// maxBenchKeys keeps rejection sampling of distinct keys fast.
const maxBenchKeys = 1 << 30

type benchFlags struct {
	keys       int
	seed       uint64
	workers    int
	queries    int
	hasher     string
	cpuprofile string
	verbose    bool
}

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, Maxrss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

func main() {
	var f benchFlags
	cmd := &cobra.Command{
		Use:           "bench",
		Short:         "Measure perfectset build and lookup performance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.Flags().IntVar(&f.keys, "keys", 10_000_000, "number of keys in the universe")
	cmd.Flags().Uint64Var(&f.seed, "seed", 42, "seed for key generation and the build")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "number of parallel workers for building")
	cmd.Flags().IntVar(&f.queries, "queries", 1_000_000, "number of timed lookups")
	cmd.Flags().StringVar(&f.hasher, "hasher", "", "build from string keys hashed with xxh3, xxhash or murmur3")
	cmd.Flags().StringVar(&f.cpuprofile, "cpuprofile", "", "write cpu profile to file (build phase only)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log build diagnostics")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f benchFlags) error {
	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if f.keys <= 0 || f.queries <= 0 {
		return fmt.Errorf("--keys and --queries must be positive")
	}
	if f.keys > maxBenchKeys {
		return fmt.Errorf("--keys must be at most %d", maxBenchKeys)
	}

	opts := []perfectset.BuildOption{
		perfectset.WithSeed(f.seed),
		perfectset.WithWorkers(f.workers),
		perfectset.WithLogger(log),
	}

	log.Info().Int("keys", f.keys).Msg("generating keys")
	rng := rand.New(rand.NewPCG(f.seed, ^f.seed))
	var keys []uint32
	var byteKeys [][]byte
	if f.hasher != "" {
		id, err := perfectset.ParseKeyHasher(f.hasher)
		if err != nil {
			return err
		}
		opts = append(opts, perfectset.WithKeyHasher(id))
		byteKeys, keys, err = generateByteKeys(rng, f.keys, id)
		if err != nil {
			return err
		}
	} else {
		keys = generateKeys(rng, f.keys)
	}

	if f.cpuprofile != "" {
		pf, err := os.Create(f.cpuprofile)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer func() { _ = pf.Close() }()
		if err := pprof.StartCPUProfile(pf); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
	}

	runtime.GC()
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()

	log.Info().Int("workers", f.workers).Msg("building set")
	buildStart := time.Now()
	var set *perfectset.Set
	var err error
	if byteKeys != nil {
		set, err = perfectset.NewFromBytes(ctx, byteKeys, opts...)
	} else {
		set, err = perfectset.New(ctx, keys, opts...)
	}
	buildDuration := time.Since(buildStart)
	if f.cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	heapBytes := final.HeapAlloc - min(final.HeapAlloc, baseline.HeapAlloc)
	peakRSS := getMaxRSS()
	rssBytes := peakRSS - min(peakRSS, baselineRSS)

	// Half the universe present so Has sees both outcomes.
	for i := range len(keys) / 2 {
		if byteKeys != nil {
			err = set.InsertBytes(byteKeys[i])
		} else {
			err = set.Insert(keys[i])
		}
		if err != nil {
			return fmt.Errorf("insert key %d: %w", i, err)
		}
	}

	log.Info().Int("queries", f.queries).Msg("benchmarking lookups")
	order := rng.Perm(len(keys))
	var hits int
	queryStart := time.Now()
	for i := 0; i < f.queries; i++ {
		idx := order[i%len(order)]
		if byteKeys != nil {
			if set.HasBytes(byteKeys[idx]) {
				hits++
			}
		} else if set.Has(keys[idx]) {
			hits++
		}
	}
	queryDuration := time.Since(queryStart)

	st := set.Stats()
	fmt.Printf("\n")
	fmt.Printf("Keys                  %d\n", st.Keys)
	fmt.Printf("Build time            %.3f s (%.1f Mkeys/s)\n",
		buildDuration.Seconds(), float64(st.Keys)/buildDuration.Seconds()/1e6)
	fmt.Printf("First-level attempts  %d\n", st.FirstLevelAttempts)
	fmt.Printf("Second-level attempts %d (%.3f per bucket)\n",
		st.SecondLevelAttempts, float64(st.SecondLevelAttempts)/float64(max(st.NonEmptyBuckets, 1)))
	fmt.Printf("Sum of squares        %d (%.3f n)\n", st.SumSquares, float64(st.SumSquares)/float64(st.Keys))
	fmt.Printf("Largest bucket        %d\n", st.LargestBucket)
	fmt.Printf("Slots                 %d\n", st.Slots)
	fmt.Printf("Heap growth           %.1f MiB (%.1f bytes/key)\n",
		float64(heapBytes)/(1<<20), float64(heapBytes)/float64(st.Keys))
	fmt.Printf("Peak RSS growth       %.1f MiB\n", float64(rssBytes)/(1<<20))
	fmt.Printf("Lookup latency        %.1f ns (%d hits)\n",
		float64(queryDuration.Nanoseconds())/float64(f.queries), hits)
	return nil
}

// generateKeys returns n distinct pseudo-random keys.
func generateKeys(rng *rand.Rand, n int) []uint32 {
	seen := make(map[uint32]struct{}, n)
	keys := make([]uint32, 0, n)
	for len(keys) < n {
		k := rng.Uint32()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// generateByteKeys returns n string keys whose hashes under id are distinct,
// together with those hashes.
func generateByteKeys(rng *rand.Rand, n int, id perfectset.KeyHasherID) ([][]byte, []uint32, error) {
	seen := make(map[uint32]struct{}, n)
	byteKeys := make([][]byte, 0, n)
	hashes := make([]uint32, 0, n)
	for len(byteKeys) < n {
		key := fmt.Appendf(nil, "key-%016x", rng.Uint64())
		h, err := id.Sum32(key)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		byteKeys = append(byteKeys, key)
		hashes = append(hashes, h)
	}
	return byteKeys, hashes, nil
}
