package perfectset

import (
	"context"
	"fmt"

	"github.com/tamirms/perfectset/internal/keyhash"
)

// NewFromBytes builds a Set whose universe is keys hashed to uint32 with the
// hasher chosen by WithKeyHasher (xxh3 by default).
//
// Two distinct byte keys that hash to the same uint32 are indistinguishable
// and the build fails with ErrDuplicateKey, as it does for repeated keys.
// Use the *Bytes methods to query a Set built this way.
func NewFromBytes(ctx context.Context, keys [][]byte, opts ...BuildOption) (*Set, error) {
	s, err := newSet(opts)
	if err != nil {
		return nil, err
	}
	hashed := make([]uint32, len(keys))
	for i, key := range keys {
		hashed[i] = s.hasher(key)
	}
	if err := s.build(ctx, hashed); err != nil {
		return nil, fmt.Errorf("hashed byte keys (%s): %w", s.cfg.keyHasher, err)
	}
	return s, nil
}

// keyOf returns the uint32 key for a byte key under the Set's hasher.
// The zero Set has none yet and uses the default.
func (s *Set) keyOf(key []byte) uint32 {
	if s.hasher == nil {
		return keyhash.XXH3(key)
	}
	return s.hasher(key)
}

// IsPossibleBytes is IsPossibleKey for a byte key.
func (s *Set) IsPossibleBytes(key []byte) bool {
	return s.IsPossibleKey(s.keyOf(key))
}

// HasBytes is Has for a byte key.
func (s *Set) HasBytes(key []byte) bool {
	return s.Has(s.keyOf(key))
}

// InsertBytes is Insert for a byte key.
func (s *Set) InsertBytes(key []byte) error {
	return s.Insert(s.keyOf(key))
}

// EraseBytes is Erase for a byte key.
func (s *Set) EraseBytes(key []byte) error {
	return s.Erase(s.keyOf(key))
}
