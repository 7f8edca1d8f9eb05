package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/big"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// TestFastRange64Range verifies that the result is always in [0, n).
func TestFastRange64Range(t *testing.T) {
	rng := newTestRNG(t)
	const iterations = 10000

	for i := 0; i < iterations; i++ {
		n := rng.Uint64N(math.MaxUint64) + 1
		x := rng.Uint64()

		got := FastRange64(x, n)
		if got >= n {
			t.Fatalf("iter %d: FastRange64(0x%X, %d)=%d >= %d", i, x, n, got, n)
		}
	}
}

// TestFastRange64EdgeCases covers x=0->0 and x=MaxUint64->n-1.
func TestFastRange64EdgeCases(t *testing.T) {
	for _, n := range []uint64{1, 2, 3, 4294967310, 4294967311, math.MaxUint64} {
		if got := FastRange64(0, n); got != 0 {
			t.Errorf("FastRange64(0, %d) = %d, want 0", n, got)
		}
		if got := FastRange64(math.MaxUint64, n); got != n-1 {
			t.Errorf("FastRange64(MaxUint64, %d) = %d, want %d", n, got, n-1)
		}
	}
}

// TestMulAddModMatchesBigInt checks the 128-bit path against math/big,
// including operands whose product overflows 64 bits.
func TestMulAddModMatchesBigInt(t *testing.T) {
	rng := newTestRNG(t)
	const m = 4294967311

	check := func(a, x, b uint64) {
		t.Helper()
		want := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(x))
		want.Add(want, new(big.Int).SetUint64(b))
		want.Mod(want, new(big.Int).SetUint64(m))
		if got := MulAddMod(a, x, b, m); got != want.Uint64() {
			t.Fatalf("MulAddMod(%d, %d, %d, %d) = %d, want %d", a, x, b, m, got, want.Uint64())
		}
	}

	check(m-1, math.MaxUint32, m-1)
	check(1, 0, 0)
	check(0, math.MaxUint32, 7)
	check(math.MaxUint64, math.MaxUint64, math.MaxUint64)

	for i := 0; i < 10000; i++ {
		check(rng.Uint64N(m-1)+1, uint64(rng.Uint32()), rng.Uint64N(m))
	}
}

func TestBitset(t *testing.T) {
	b := NewBitset(130)
	if len(b) != 3 {
		t.Fatalf("NewBitset(130) has %d words, want 3", len(b))
	}

	for _, i := range []uint64{0, 63, 64, 129} {
		if b.Test(i) {
			t.Fatalf("bit %d set on fresh bitset", i)
		}
		b.Set(i)
		if !b.Test(i) {
			t.Fatalf("bit %d not set after Set", i)
		}
	}
	if b.Test(1) || b.Test(65) {
		t.Fatal("Set leaked into neighbouring bits")
	}

	b.Unset(63)
	if b.Test(63) {
		t.Fatal("bit 63 still set after Unset")
	}
	if !b.Test(64) {
		t.Fatal("Unset(63) cleared bit 64")
	}

	b = b.Reset(64)
	if len(b) != 1 || b.Test(0) {
		t.Fatalf("Reset(64): len=%d bit0=%v, want len=1 and cleared", len(b), b.Test(0))
	}

	b = b.Reset(1000)
	if len(b) != 16 {
		t.Fatalf("Reset(1000) has %d words, want 16", len(b))
	}
	for i := uint64(0); i < 1000; i++ {
		if b.Test(i) {
			t.Fatalf("bit %d set after growing Reset", i)
		}
	}
}
