// Package keyhash maps arbitrary byte keys onto the uint32 key universe.
package keyhash

import (
	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Func hashes a byte key to a uint32 key.
type Func func(key []byte) uint32

// XXH3 folds the 64-bit xxHash3 of key.
func XXH3(key []byte) uint32 {
	return fold(xxh3.Hash(key))
}

// XXHash folds the 64-bit xxHash64 of key.
func XXHash(key []byte) uint32 {
	return fold(xxhash.Sum64(key))
}

// Murmur3 returns the 32-bit MurmurHash3 of key.
func Murmur3(key []byte) uint32 {
	return murmur3.Sum32(key)
}

// fold mixes the high half into the low half so every input bit
// contributes to the result.
func fold(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}
