// Package universal implements the Carter–Wegman affine hash family
// h(x) = ((a*x + b) mod M) mod p used by both levels of the table.
package universal

import (
	"math/rand/v2"

	intbits "github.com/tamirms/perfectset/internal/bits"
)

// Modulus is the smallest prime above 2^32, so every uint32 key is a
// distinct residue.
const Modulus = 4294967311

// Hash is one member of the family. A is in [1, Modulus-1], B is in
// [0, Modulus-1] and P is the size of the table being indexed.
type Hash struct {
	A, B, P uint64
}

// Sample draws a random member of the family targeting a table of size p.
// Each parameter consumes exactly one value from src.
func Sample(src rand.Source, p uint64) Hash {
	return Hash{
		A: 1 + intbits.FastRange64(src.Uint64(), Modulus-1),
		B: intbits.FastRange64(src.Uint64(), Modulus),
		P: p,
	}
}

// Calculate returns the table index for x. P must be non-zero.
func (h Hash) Calculate(x uint32) uint64 {
	return intbits.MulAddMod(h.A, uint64(x), h.B, Modulus) % h.P
}
