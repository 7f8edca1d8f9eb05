// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// FastRange64 maps a 64-bit value uniformly to [0, n).
// Uses the "fastrange" technique: multiply and take high bits.
// This is the standard way to map hashes to ranges without modulo bias.
func FastRange64(x, n uint64) uint64 {
	hi, _ := bits.Mul64(x, n)
	return hi
}

// MulAddMod returns (a*x + b) mod m using a 128-bit intermediate.
// m must be non-zero.
func MulAddMod(a, x, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	var carry uint64
	lo, carry = bits.Add64(lo, b, 0)
	hi += carry
	return bits.Rem64(hi, lo, m)
}
