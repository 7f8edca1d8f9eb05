package perfectset

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a generator seeded from the test name, so each test
// gets its own reproducible stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// constSource always yields the same value. Zero makes every sampled hash
// a=1, b=0, i.e. x mod p.
type constSource uint64

func (c constSource) Uint64() uint64 { return uint64(c) }

// generateDistinctKeys returns n distinct pseudo-random keys.
func generateDistinctKeys(rng *rand.Rand, n int) []uint32 {
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

// keySet converts keys to a lookup map.
func keySet(keys []uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// countPresent counts present keys by scanning the presence bitmap.
func countPresent(s *Set) uint32 {
	var n uint32
	for pos := uint64(0); pos < s.stats.Slots; pos++ {
		if s.present.Test(pos) {
			n++
		}
	}
	return n
}

// zeroPrefixSource yields zeros for the first draws, so the first sampled
// hash is x mod p, then hands off to rest.
type zeroPrefixSource struct {
	zeros int
	rest  rand.Source
}

func (z *zeroPrefixSource) Uint64() uint64 {
	if z.zeros > 0 {
		z.zeros--
		return 0
	}
	return z.rest.Uint64()
}

// cancelingSource calls cancel when its nth value is drawn.
type cancelingSource struct {
	rest   rand.Source
	n      int
	cancel func()
}

func (c *cancelingSource) Uint64() uint64 {
	c.n--
	if c.n == 0 {
		c.cancel()
	}
	return c.rest.Uint64()
}
