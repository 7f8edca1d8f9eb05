package perfectset

import (
	"fmt"

	seterrors "github.com/tamirms/perfectset/errors"
	"github.com/tamirms/perfectset/internal/keyhash"
)

// KeyHasherID identifies the hash that maps byte keys to uint32 keys.
type KeyHasherID uint16

const (
	// HasherXXH3 uses xxHash3 folded to 32 bits.
	HasherXXH3 KeyHasherID = 0

	// HasherXXHash uses xxHash64 folded to 32 bits.
	HasherXXHash KeyHasherID = 1

	// HasherMurmur3 uses 32-bit MurmurHash3.
	HasherMurmur3 KeyHasherID = 2
)

// String returns the hasher name.
func (h KeyHasherID) String() string {
	switch h {
	case HasherXXH3:
		return "xxh3"
	case HasherXXHash:
		return "xxhash"
	case HasherMurmur3:
		return "murmur3"
	default:
		return "unknown"
	}
}

// ParseKeyHasher returns the hasher with the given String name.
func ParseKeyHasher(name string) (KeyHasherID, error) {
	for _, id := range []KeyHasherID{HasherXXH3, HasherXXHash, HasherMurmur3} {
		if id.String() == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown key hasher %q", seterrors.ErrInvalidOption, name)
}

// Sum32 hashes key with this hasher. It returns ErrInvalidOption for an
// unknown hasher, as WithKeyHasher does.
//
// Use this to see which uint32 a byte key occupies in a Set built with
// NewFromBytes. Distinct byte keys can share a value; a build over such keys
// fails with ErrDuplicateKey.
func (h KeyHasherID) Sum32(key []byte) (uint32, error) {
	f, err := newKeyHasher(h)
	if err != nil {
		return 0, err
	}
	return f(key), nil
}

func newKeyHasher(id KeyHasherID) (keyhash.Func, error) {
	switch id {
	case HasherXXH3:
		return keyhash.XXH3, nil
	case HasherXXHash:
		return keyhash.XXHash, nil
	case HasherMurmur3:
		return keyhash.Murmur3, nil
	}
	return nil, fmt.Errorf("%w: unknown key hasher ID %d", seterrors.ErrInvalidOption, id)
}
