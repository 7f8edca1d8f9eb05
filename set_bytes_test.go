package perfectset

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	seterrors "github.com/tamirms/perfectset/errors"
)

func TestBytesRoundTrip(t *testing.T) {
	keys := make([][]byte, 500)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("host-%03d.example.com", i))
	}

	for _, id := range []KeyHasherID{HasherXXH3, HasherXXHash, HasherMurmur3} {
		t.Run(id.String(), func(t *testing.T) {
			s, err := NewFromBytes(context.Background(), keys, WithKeyHasher(id))
			require.NoError(t, err)
			require.Equal(t, len(keys), s.UniverseSize())

			for _, k := range keys {
				require.True(t, s.IsPossibleBytes(k))
				h, err := id.Sum32(k)
				require.NoError(t, err)
				require.True(t, s.IsPossibleKey(h))
				require.False(t, s.HasBytes(k))
			}
			require.NoError(t, s.InsertBytes(keys[7]))
			require.True(t, s.HasBytes(keys[7]))
			require.Equal(t, uint32(1), s.Size())
			require.NoError(t, s.EraseBytes(keys[7]))
			require.False(t, s.HasBytes(keys[7]))

			require.ErrorIs(t, s.InsertBytes([]byte("not-a-host")), seterrors.ErrNotInUniverse)
		})
	}
}

func TestBytesDuplicate(t *testing.T) {
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("a")}
	_, err := NewFromBytes(context.Background(), keys, WithKeyHasher(HasherMurmur3))
	require.ErrorIs(t, err, seterrors.ErrDuplicateKey)
	require.Contains(t, err.Error(), "murmur3")
}

func TestParseKeyHasher(t *testing.T) {
	for _, id := range []KeyHasherID{HasherXXH3, HasherXXHash, HasherMurmur3} {
		got, err := ParseKeyHasher(id.String())
		require.NoError(t, err)
		require.Equal(t, id, got)
	}
	_, err := ParseKeyHasher("sha1")
	require.ErrorIs(t, err, seterrors.ErrInvalidOption)
	require.Equal(t, "unknown", KeyHasherID(42).String())
}

func TestSum32UnknownHasher(t *testing.T) {
	_, err := KeyHasherID(42).Sum32([]byte("a"))
	require.ErrorIs(t, err, seterrors.ErrInvalidOption)

	h, err := HasherMurmur3.Sum32([]byte("a"))
	require.NoError(t, err)
	require.NotEqual(t, h, mustSum32(t, HasherXXH3, []byte("a")))
}

// The zero Set hashes byte keys with the default hasher.
func TestZeroValueSetBytes(t *testing.T) {
	var s Set
	require.False(t, s.HasBytes([]byte("a")))
	require.ErrorIs(t, s.InsertBytes([]byte("a")), seterrors.ErrNotInUniverse)

	require.NoError(t, s.Init(context.Background(), []uint32{mustSum32(t, HasherXXH3, []byte("a"))}))
	require.NoError(t, s.InsertBytes([]byte("a")))
	require.True(t, s.HasBytes([]byte("a")))
}

func mustSum32(t *testing.T, id KeyHasherID, key []byte) uint32 {
	t.Helper()
	h, err := id.Sum32(key)
	require.NoError(t, err)
	return h
}
