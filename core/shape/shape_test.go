package shape

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/coreform/jsvm/core/value"
)

func TestScenario1_ShapeSharing(t *testing.T) {
	root := NewRoot()

	a := root.Insert(value.StringKey("x"), DataDefault)
	a = a.Insert(value.StringKey("y"), DataDefault)

	b := root.Insert(value.StringKey("x"), DataDefault)
	b = b.Insert(value.StringKey("y"), DataDefault)

	require.Same(t, a, b, "identical insertion sequences from the same root share one shape")

	slotX, ok := a.Lookup(value.StringKey("x"))
	require.True(t, ok)
	slotY, ok := a.Lookup(value.StringKey("y"))
	require.True(t, ok)
	require.NotEqual(t, slotX.Index, slotY.Index)
}

func TestForkOnConflict(t *testing.T) {
	root := NewRoot()
	base := root.Insert(value.StringKey("x"), DataDefault)

	left := base.Insert(value.StringKey("y"), DataDefault)
	right := base.Insert(value.StringKey("z"), DataDefault)

	require.NotSame(t, left, right)

	_, ok := left.Lookup(value.StringKey("z"))
	require.False(t, ok, "left's table fork must not leak right's property")
	_, ok = right.Lookup(value.StringKey("y"))
	require.False(t, ok, "right's table fork must not leak left's property")

	ySlot, ok := left.Lookup(value.StringKey("y"))
	require.True(t, ok)
	zSlot, ok := right.Lookup(value.StringKey("z"))
	require.True(t, ok)
	require.Equal(t, ySlot.Index, zSlot.Index, "both siblings claim the same next slot independently")
}

func TestLookupRejectsPropertiesBeyondOwnCount(t *testing.T) {
	root := NewRoot()
	s1 := root.Insert(value.StringKey("x"), DataDefault)
	s2 := s1.Insert(value.StringKey("y"), DataDefault)

	_, ok := s1.Lookup(value.StringKey("y"))
	require.False(t, ok, "a shape must not see a property inserted only by its child")

	_, ok = s2.Lookup(value.StringKey("x"))
	require.True(t, ok)
}

func TestDeleteRewindReplay(t *testing.T) {
	root := NewRoot()
	s := root.Insert(value.StringKey("a"), DataDefault)
	s = s.Insert(value.StringKey("b"), DataDefault)
	s = s.Insert(value.StringKey("c"), DataDefault)

	after, err := s.Delete(value.StringKey("b"))
	require.NoError(t, err)

	_, ok := after.Lookup(value.StringKey("b"))
	require.False(t, ok)
	_, ok = after.Lookup(value.StringKey("a"))
	require.True(t, ok)
	_, ok = after.Lookup(value.StringKey("c"))
	require.True(t, ok)
	require.Equal(t, []value.PropertyKey{value.StringKey("a"), value.StringKey("c")}, after.OwnKeys())

	_, err = after.Delete(value.StringKey("nope"))
	require.ErrorIs(t, err, ErrNoSuchProperty)
}

func TestPrototypeTransitionPreservesTable(t *testing.T) {
	root := NewRoot()
	s := root.Insert(value.StringKey("x"), DataDefault)

	withProto := s.SetPrototype("some-proto-ref")
	require.Equal(t, "some-proto-ref", withProto.Prototype())
	_, ok := withProto.Lookup(value.StringKey("x"))
	require.True(t, ok, "prototype transition preserves the PropertyTable")

	again := s.SetPrototype("some-proto-ref")
	require.Same(t, withProto, again, "identical prototype transitions share a shape")
}

func TestUpdateAttributes(t *testing.T) {
	root := NewRoot()
	s := root.Insert(value.StringKey("x"), DataDefault)

	frozen, err := s.UpdateAttributes(value.StringKey("x"), Enumerable)
	require.NoError(t, err)
	slot, ok := frozen.Lookup(value.StringKey("x"))
	require.True(t, ok)
	require.False(t, slot.Attrs.IsWritable())
	require.False(t, slot.Attrs.IsConfigurable())

	_, err = s.UpdateAttributes(value.StringKey("missing"), Enumerable)
	require.ErrorIs(t, err, ErrNoSuchProperty)
}

func TestShapeSharingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfDistinct(rapid.StringMatching(`[a-d]`), func(s string) string { return s }).Draw(t, "keys")

		root := NewRoot()
		s1 := root
		for _, k := range keys {
			s1 = s1.Insert(value.StringKey(k), DataDefault)
		}
		s2 := root
		for _, k := range keys {
			s2 = s2.Insert(value.StringKey(k), DataDefault)
		}
		require.Same(t, s1, s2)
	})
}
