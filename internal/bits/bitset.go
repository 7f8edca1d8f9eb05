package bits

const bitsPerWord = 64

// Bitset is a fixed-size bit vector backed by uint64 words.
type Bitset []uint64

// NewBitset returns a cleared bitset able to hold n bits.
func NewBitset(n int) Bitset {
	return make(Bitset, (n+bitsPerWord-1)/bitsPerWord)
}

// Test reports whether bit i is set.
func (b Bitset) Test(i uint64) bool {
	return b[i/bitsPerWord]&(1<<(i%bitsPerWord)) != 0
}

// Set sets bit i.
func (b Bitset) Set(i uint64) {
	b[i/bitsPerWord] |= 1 << (i % bitsPerWord)
}

// Unset clears bit i.
func (b Bitset) Unset(i uint64) {
	b[i/bitsPerWord] &^= 1 << (i % bitsPerWord)
}

// Reset clears every bit and returns b resized to hold n bits,
// reusing the backing array when it is large enough.
func (b Bitset) Reset(n int) Bitset {
	words := (n + bitsPerWord - 1) / bitsPerWord
	if cap(b) < words {
		return make(Bitset, words)
	}
	b = b[:words]
	clear(b)
	return b
}
