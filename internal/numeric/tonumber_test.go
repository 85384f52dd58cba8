package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestToInt32Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64().Draw(t, "x")
		once := ToInt32(x)
		twice := ToInt32(float64(once))
		require.Equal(t, once, twice)
	})
}

func TestToInt32KnownValues(t *testing.T) {
	require.Equal(t, int32(0), ToInt32(math.NaN()))
	require.Equal(t, int32(0), ToInt32(math.Inf(1)))
	require.Equal(t, int32(-1), ToInt32(4294967295))
	require.Equal(t, int32(1), ToInt32(4294967297))
	require.Equal(t, int32(42), ToInt32(42.9))
	require.Equal(t, int32(-42), ToInt32(-42.9))
}

func TestToUint32KnownValues(t *testing.T) {
	require.Equal(t, uint32(4294967295), ToUint32(-1))
	require.Equal(t, uint32(0), ToUint32(4294967296))
}

func TestSafeAddMul(t *testing.T) {
	sum, overflow := SafeAdd(1, 2)
	require.False(t, overflow)
	require.Equal(t, uint64(3), sum)

	_, overflow = SafeAdd(math.MaxUint64, 1)
	require.True(t, overflow)

	prod, overflow := SafeMul(3, 4)
	require.False(t, overflow)
	require.Equal(t, uint64(12), prod)

	_, overflow = SafeMul(math.MaxUint64, 2)
	require.True(t, overflow)
}

func TestCeilDiv(t *testing.T) {
	require.Equal(t, 3, CeilDiv(7, 3))
	require.Equal(t, 0, CeilDiv(7, 0))
}
