package universal

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

type constSource uint64

func (c constSource) Uint64() uint64 { return uint64(c) }

func TestSampleParameterRanges(t *testing.T) {
	src := rand.NewPCG(1, 2)
	for i := 0; i < 10000; i++ {
		h := Sample(src, 17)
		require.GreaterOrEqual(t, h.A, uint64(1))
		require.Less(t, h.A, uint64(Modulus))
		require.Less(t, h.B, uint64(Modulus))
		require.Equal(t, uint64(17), h.P)
	}
}

// A source stuck at zero must still produce a non-degenerate multiplier.
func TestSampleZeroSourceKeepsANonZero(t *testing.T) {
	h := Sample(constSource(0), 8)
	require.Equal(t, Hash{A: 1, B: 0, P: 8}, h)

	h = Sample(constSource(math.MaxUint64), 8)
	require.Equal(t, uint64(Modulus-1), h.A)
	require.Equal(t, uint64(Modulus-1), h.B)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		h    Hash
		x    uint32
		want uint64
	}{
		{"identity", Hash{A: 1, B: 0, P: 1 << 40}, 12345, 12345},
		{"reduced by p", Hash{A: 1, B: 0, P: 10}, 12345, 5},
		{"affine", Hash{A: 3, B: 4, P: 1000}, 100, 304},
		{"wraps modulus", Hash{A: 1, B: Modulus - 1, P: 1 << 40}, 1, 0},
		// (M-1)*(2^32-1) + (M-1) = (M-1)*2^32, and M-1 = 2^32+14 = -1 mod M,
		// 2^32 = -15 mod M, so the residue is 15.
		{"large operands", Hash{A: Modulus - 1, B: Modulus - 1, P: 1 << 40}, math.MaxUint32, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.h.Calculate(tt.x))
		})
	}
}

func TestCalculateInRange(t *testing.T) {
	src := rand.NewPCG(3, 4)
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 1000; i++ {
		p := rng.Uint64N(1<<20) + 1
		h := Sample(src, p)
		for j := 0; j < 16; j++ {
			require.Less(t, h.Calculate(rng.Uint32()), p)
		}
	}
}
