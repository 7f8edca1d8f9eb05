// Package perfectset implements a static set of uint32 keys with worst-case
// O(1) lookups, built with Fredman–Komlós–Szemerédi (FKS) two-level perfect
// hashing.
//
// The universe of possible keys is fixed at build time. Afterwards the Set
// only tracks which universe keys are currently present.
//
// # Basic Usage
//
//	set, err := perfectset.New(ctx, []uint32{5, 17, 42, 1000})
//	if err != nil {
//	    log.Fatal(err) // ErrDuplicateKey, ErrBuildExhausted, ...
//	}
//	_ = set.Insert(5)
//	set.Has(5)            // true
//	set.Has(17)           // false: in the universe, not inserted
//	set.IsPossibleKey(17) // true
//	err = set.Insert(999) // ErrNotInUniverse
//
// # Construction
//
// The first level hashes n keys into n buckets and resamples until the sum
// of squared bucket sizes is at most 3n. Each bucket of m keys then gets its
// own hash into m² slots, resampled until it is collision-free. Both levels
// give up with ErrBuildExhausted after WithMaxAttempts tries.
//
// Hash parameters come from an explicit random source: WithSeed for a
// seeded PCG (the default seed is fixed, so builds are reproducible) or
// WithRandSource for any math/rand/v2 Source.
//
// # Package Structure
//
//   - Public API: set.go (New, Init, Has, Insert, Erase), set_bytes.go (byte keys)
//   - Configuration: build_options.go (BuildOption, With* functions)
//   - Build orchestration: build.go, build_parallel.go (WithWorkers)
//   - Byte key hashing: keyhash.go, internal/keyhash/ (xxh3, xxhash, murmur3)
//   - Hash family: internal/universal/, arithmetic in internal/bits/
//   - Levels: internal/firstlevel/ (bucket partition), internal/secondlevel/ (slot tables)
package perfectset
