package vec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requirePrecondition checks that f panics with an error wrapping ErrPrecondition.
func requirePrecondition(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "expected an error, got %v", r)
		require.True(t, errors.Is(err, ErrPrecondition), "unexpected panic value %v", err)
	}()
	f()
}

// counted is an element type that records how many times it was destroyed.
type counted struct {
	id        int
	destroyed *int
}

func (c *counted) Destroy() {
	if c.destroyed != nil {
		*c.destroyed++
	}
}

func TestScenario(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.Push(10))
	require.NoError(t, v.Push(20))
	require.NoError(t, v.Push(30))
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []int{10, 20, 30}, v.Slice())

	require.NoError(t, v.GrowToPad(5, 99))
	assert.Equal(t, 5, v.Len())
	assert.Equal(t, []int{10, 20, 30, 99, 99}, v.Slice())

	v.Shrink(2)
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []int{10, 20, 30}, v.Slice())

	v.Clear(false)
	assert.Equal(t, 0, v.Len())
	assert.Greater(t, v.Cap(), 0)

	v.Clear(true)
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0, v.Cap())
}

func TestZeroValue(t *testing.T) {
	var v Vec[string]
	assert.True(t, v.Empty())
	assert.Equal(t, 0, v.Cap())
	assert.Empty(t, v.Slice())
	v.Clear(true)
	v.ShrinkToFit()
	assert.Equal(t, 0, v.Cap())
}

func TestPushOrder(t *testing.T) {
	var v Vec[int]
	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, v.Push(i*3))
		require.Equal(t, i+1, v.Len())
	}
	for i := 0; i < n; i++ {
		if v.At(i) != i*3 {
			t.Fatalf("invalid element #%d: expected %d, got %d", i, i*3, v.At(i))
		}
	}
	assert.Equal(t, (n-1)*3, v.Last())
}

func TestPushZero(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.GrowToPad(4, 7))
	v.ShrinkUnchecked(4) // Vacant slots keep their stale 7s
	require.NoError(t, v.PushZero())
	require.NoError(t, v.Push(1))
	require.NoError(t, v.PushZero())
	if diff := cmp.Diff([]int{0, 1, 0}, v.Slice()); diff != "" {
		t.Errorf("unexpected content (-want +got):\n%s", diff)
	}
}

func TestAmortizedGrowth(t *testing.T) {
	var v Vec[int]
	const n = 100000
	nbRealloc := 0
	for i := 0; i < n; i++ {
		before := v.Cap()
		require.NoError(t, v.Push(i))
		if v.Cap() != before {
			nbRealloc++
		}
	}
	assert.GreaterOrEqual(t, v.Cap(), n)
	// Capacity roughly doubles: that's about log2(n) reallocations.
	assert.LessOrEqual(t, nbRealloc, 2*17)
}

func TestGrowToIdempotent(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.GrowTo(10))
	assert.Equal(t, 10, v.Len())
	assert.GreaterOrEqual(t, v.Cap(), 10)
	for i := 0; i < v.Len(); i++ {
		v.Set(i, i+1)
	}
	capa := v.Cap()
	require.NoError(t, v.GrowTo(10))
	require.NoError(t, v.GrowTo(3))
	require.NoError(t, v.GrowToPad(5, -1))
	assert.Equal(t, 10, v.Len())
	assert.Equal(t, capa, v.Cap())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, v.Slice())
}

func TestShrinkThenGrow(t *testing.T) {
	var v Vec[int]
	for i := 1; i <= 6; i++ {
		require.NoError(t, v.Push(i))
	}
	v.Shrink(3)
	require.NoError(t, v.GrowTo(v.Len()+3))
	assert.Equal(t, []int{1, 2, 3, 0, 0, 0}, v.Slice())
}

func TestPadNotRetroactive(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.GrowTo(2))
	require.NoError(t, v.GrowToPad(4, 5))
	assert.Equal(t, []int{0, 0, 5, 5}, v.Slice())
}

func TestResizeInsert(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.Resize(4))
	assert.Equal(t, 4, v.Len())
	v.Set(3, 42)
	require.NoError(t, v.Resize(2))
	assert.Equal(t, []int{0, 0}, v.Slice())
	require.NoError(t, v.Insert(3))
	assert.Equal(t, []int{0, 0, 0, 0, 0}, v.Slice())
	require.NoError(t, v.Insert(0))
	assert.Equal(t, 5, v.Len())
}

func TestPushUnchecked(t *testing.T) {
	var v Vec[int]
	require.NoError(t, v.Reserve(5))
	capa := v.Cap()
	require.GreaterOrEqual(t, capa, 5)
	for i := 0; i < capa; i++ {
		v.PushUnchecked(i)
	}
	assert.Equal(t, capa, v.Cap())
	requirePrecondition(t, func() { v.PushUnchecked(-1) })
	assert.Equal(t, capa, v.Len())
}

func TestShrinkToFit(t *testing.T) {
	var v Vec[int]
	for i := 0; i < 5; i++ {
		require.NoError(t, v.Push(i))
	}
	require.Greater(t, v.Cap(), 5)
	v.ShrinkToFit()
	assert.Equal(t, 5, v.Cap())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, v.Slice())
	v.Clear(false)
	v.ShrinkToFit()
	assert.Equal(t, 0, v.Cap())
}

func TestRef(t *testing.T) {
	var v Vec[[2]int]
	require.NoError(t, v.GrowTo(3))
	v.Ref(1)[0] = 4
	v.LastRef()[1] = 5
	assert.Equal(t, [2]int{4, 0}, v.At(1))
	assert.Equal(t, [2]int{0, 5}, v.Last())
}

func TestPreconditions(t *testing.T) {
	var v Vec[int]
	requirePrecondition(t, func() { v.Pop() })
	requirePrecondition(t, func() { v.Last() })
	requirePrecondition(t, func() { v.At(0) })
	require.NoError(t, v.Push(1))
	requirePrecondition(t, func() { v.At(1) })
	requirePrecondition(t, func() { v.At(-1) })
	requirePrecondition(t, func() { v.Set(2, 3) })
	requirePrecondition(t, func() { v.Shrink(2) })
	requirePrecondition(t, func() { v.ShrinkUnchecked(2) })
	requirePrecondition(t, func() { v.Shrink(-1) })
	requirePrecondition(t, func() { _ = v.Insert(-1) })
	assert.Equal(t, []int{1}, v.Slice())
}

func TestDestruction(t *testing.T) {
	nb := 0
	var v Vec[counted]
	for i := 0; i < 5; i++ {
		require.NoError(t, v.Push(counted{id: i, destroyed: &nb}))
	}
	v.Pop()
	assert.Equal(t, 1, nb)
	v.Shrink(2)
	assert.Equal(t, 3, nb)
	v.ShrinkUnchecked(1)
	assert.Equal(t, 3, nb, "ShrinkUnchecked must not destroy elements")
	require.NoError(t, v.Resize(0))
	assert.Equal(t, 4, nb)
	require.NoError(t, v.Push(counted{id: 5, destroyed: &nb}))
	v.Clear(false)
	assert.Equal(t, 5, nb)
}

func TestNested(t *testing.T) {
	var lists Vec[Vec[int]]
	require.NoError(t, lists.GrowTo(3))
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			require.NoError(t, lists.Ref(i).Push(j))
		}
	}
	assert.Equal(t, []int{0, 1}, lists.Ref(1).Slice())
	inner := lists.Ref(2)
	lists.Pop()
	assert.Equal(t, 0, inner.Cap(), "popped nested vec must be released")
	lists.Clear(true)
	assert.Equal(t, 0, lists.Cap())
}
