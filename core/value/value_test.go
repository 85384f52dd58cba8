package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSameValueZeroSigns(t *testing.T) {
	posZero := NewNumber(0)
	negZero := NewNumber(math.Copysign(0, -1))

	require.False(t, SameValue(posZero, negZero))
	require.True(t, SameValueZero(posZero, negZero))
	require.True(t, StrictEquals(posZero, negZero))
}

func TestSameValueNaN(t *testing.T) {
	nan1 := NewNumber(math.NaN())
	nan2 := NewNumber(math.NaN())

	require.True(t, SameValue(nan1, nan2))
	require.True(t, SameValueZero(nan1, nan2))
	require.False(t, StrictEquals(nan1, nan2))
}

func TestSymbolIdentity(t *testing.T) {
	a := NewSymbolValue(symbolNew(1, nil))
	b := NewSymbolValue(symbolNew(2, nil))
	require.False(t, SameValue(a, b))
	require.True(t, SameValue(a, a))
}

func symbolNew(id uint64, desc *string) *Symbol {
	return &Symbol{id: id, description: desc}
}

func TestBigIntArithmetic(t *testing.T) {
	a := NewBigIntFromInt64(10)
	b := NewBigIntFromInt64(3)

	require.Equal(t, "13", BigIntAdd(a, b).String())
	require.Equal(t, "7", BigIntSub(a, b).String())
	require.Equal(t, "30", BigIntMul(a, b).String())

	q, err := BigIntDiv(a, b)
	require.NoError(t, err)
	require.Equal(t, "3", q.String())

	negA := NewBigIntFromInt64(-10)
	q2, err := BigIntDiv(negA, b)
	require.NoError(t, err)
	require.Equal(t, "-3", q2.String(), "division truncates toward zero")

	_, err = BigIntDiv(a, NewBigIntFromInt64(0))
	require.ErrorIs(t, err, ErrBigIntDivideByZero)
}

func TestPropertyKeyStringVsSymbol(t *testing.T) {
	sym := symbolNew(7, nil)
	k1 := StringKey("x")
	k2 := SymbolKeyOf(sym)
	require.False(t, k1.IsSymbol())
	require.True(t, k2.IsSymbol())
	require.NotEqual(t, k1, k2)
}
