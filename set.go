package perfectset

import (
	"context"
	"fmt"
	"math/rand/v2"

	seterrors "github.com/tamirms/perfectset/errors"
	intbits "github.com/tamirms/perfectset/internal/bits"
	"github.com/tamirms/perfectset/internal/keyhash"
	"github.com/tamirms/perfectset/internal/universal"
)

// Re-exported sentinels for callers that do not import the errors package.
var (
	ErrDuplicateKey   = seterrors.ErrDuplicateKey
	ErrTooManyKeys    = seterrors.ErrTooManyKeys
	ErrBuildExhausted = seterrors.ErrBuildExhausted
	ErrInvalidOption  = seterrors.ErrInvalidOption
	ErrNotInUniverse  = seterrors.ErrNotInUniverse
)

// Set is a static set of uint32 keys with worst-case O(1) lookups.
//
// The universe of possible keys is fixed when the Set is built. Afterwards
// keys of the universe can be inserted and erased; keys outside it cannot.
//
// The zero Set is an empty set using default options; Init builds it.
//
// # Thread Safety
//
// Lookups may run concurrently with each other. Insert, Erase and Init
// mutate the Set and must not run concurrently with any other method.
type Set struct {
	cfg    *buildConfig
	src    rand.Source
	hasher keyhash.Func

	first    universal.Hash
	buckets  []bucket
	slots    []uint32       // all second-level tables, concatenated
	occupied intbits.Bitset // slot holds a universe key
	present  intbits.Bitset // slot's key is currently in the set
	numKeys  int
	count    uint32
	stats    Stats
}

// bucket locates one second-level table inside Set.slots.
// hash.P == 0 marks an empty bucket.
type bucket struct {
	hash universal.Hash
	base uint64
}

// Stats describes the structure of a built Set.
type Stats struct {
	Keys                int    // universe size n
	Buckets             int    // first-level buckets (= n)
	NonEmptyBuckets     int    // buckets with at least one key
	LargestBucket       int    // keys in the fullest bucket
	SumSquares          uint64 // Σ bucket size², at most 3n
	Slots               uint64 // total second-level slots (= SumSquares)
	FirstLevelAttempts  int    // first-level hashes sampled
	SecondLevelAttempts int    // second-level hashes sampled over all buckets
}

// New builds a Set whose universe is keys. All keys start absent.
//
// Returns ErrDuplicateKey if keys repeats a value, ErrBuildExhausted if a
// build level ran out of attempts, ErrInvalidOption for bad options, and the
// context error if ctx is done before the build completes.
func New(ctx context.Context, keys []uint32, opts ...BuildOption) (*Set, error) {
	s, err := newSet(opts)
	if err != nil {
		return nil, err
	}
	if err := s.build(ctx, keys); err != nil {
		return nil, err
	}
	return s, nil
}

func newSet(opts []BuildOption) (*Set, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	hasher, err := newKeyHasher(cfg.keyHasher)
	if err != nil {
		return nil, err
	}
	return &Set{cfg: cfg, src: cfg.source(), hasher: hasher}, nil
}

// Init rebuilds s with keys as the new universe, using the options s was
// created with. All keys start absent. On error s is left empty: every key
// is outside the universe until a later Init succeeds.
func (s *Set) Init(ctx context.Context, keys []uint32) error {
	if s.cfg == nil {
		fresh, err := newSet(nil)
		if err != nil {
			return err
		}
		*s = *fresh
	}
	return s.build(ctx, keys)
}

// locate returns the position of key in the slot tables if key belongs to
// the universe.
func (s *Set) locate(key uint32) (uint64, bool) {
	if s.numKeys == 0 {
		return 0, false
	}
	b := &s.buckets[s.first.Calculate(key)]
	if b.hash.P == 0 {
		return 0, false
	}
	pos := b.base + b.hash.Calculate(key)
	if !s.occupied.Test(pos) || s.slots[pos] != key {
		return 0, false
	}
	return pos, true
}

// IsPossibleKey reports whether key belongs to the universe s was built
// from, regardless of whether it is currently present.
func (s *Set) IsPossibleKey(key uint32) bool {
	_, ok := s.locate(key)
	return ok
}

// Has reports whether key is currently in the set.
func (s *Set) Has(key uint32) bool {
	pos, ok := s.locate(key)
	return ok && s.present.Test(pos)
}

// Insert adds key to the set. Inserting a present key is a no-op.
// Returns ErrNotInUniverse if key is not a possible key.
func (s *Set) Insert(key uint32) error {
	pos, ok := s.locate(key)
	if !ok {
		return fmt.Errorf("%w: insert %d", seterrors.ErrNotInUniverse, key)
	}
	if !s.present.Test(pos) {
		s.present.Set(pos)
		s.count++
	}
	return nil
}

// Erase removes key from the set. Erasing an absent key is a no-op.
// Returns ErrNotInUniverse if key is not a possible key.
func (s *Set) Erase(key uint32) error {
	pos, ok := s.locate(key)
	if !ok {
		return fmt.Errorf("%w: erase %d", seterrors.ErrNotInUniverse, key)
	}
	if s.present.Test(pos) {
		s.present.Unset(pos)
		s.count--
	}
	return nil
}

// Size returns the number of keys currently in the set.
func (s *Set) Size() uint32 {
	return s.count
}

// UniverseSize returns the number of keys the set was built from.
func (s *Set) UniverseSize() int {
	return s.numKeys
}

// Stats returns structural statistics of the last successful build.
func (s *Set) Stats() Stats {
	return s.stats
}
