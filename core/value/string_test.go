package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRopeFlattensLazily(t *testing.T) {
	left := NewFlatString("hello, ")
	right := NewFlatString("world")
	rope := Concat(left, right)

	require.Equal(t, 12, rope.Length())

	r, ok := rope.(*RopeString)
	require.True(t, ok)
	require.Nil(t, r.flat, "must not flatten until a random access happens")

	require.Equal(t, uint16('w'), rope.CodeUnitAt(7))
	require.NotNil(t, r.flat, "CodeUnitAt triggers flatten")
	require.Equal(t, "hello, world", rope.Go())
}

func TestStrCompareCodeUnitLexicographic(t *testing.T) {
	require.Equal(t, -1, StrCompare(NewFlatString("a"), NewFlatString("b")))
	require.Equal(t, 0, StrCompare(NewFlatString("abc"), NewFlatString("abc")))
	require.Equal(t, 1, StrCompare(NewFlatString("ab"), NewFlatString("a")))
}

func TestStrEquals(t *testing.T) {
	require.True(t, StrEquals(NewFlatString("x"), NewFlatString("x")))
	require.False(t, StrEquals(NewFlatString("x"), NewFlatString("y")))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "0", formatNumber(0))
	require.Equal(t, "NaN", formatNumber(nanValue()))
	require.Equal(t, "1.5", formatNumber(1.5))
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
