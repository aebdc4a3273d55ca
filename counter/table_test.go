package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArraySolution(t *testing.T) {
	a := NewArraySolution(4, 12, -1)
	assert.Equal(t, int64(4), a.MinID())
	assert.Equal(t, int64(12), a.MaxID())
	assert.Equal(t, int64(8), a.Entries())
	for id := int64(4); id < 12; id++ {
		assert.Equal(t, -1.0, a.Count(id))
	}
	a.SetCount(5, 3.25)
	a.SetCount(11, 0)
	assert.Equal(t, 3.25, a.Count(5))
	assert.Equal(t, 0.0, a.Count(11))
	assert.Equal(t, -1.0, a.Count(4))
}

func TestTreeSolutionSetGet(t *testing.T) {
	tr := NewTreeSolution(64, 4, 0, 16)
	values := map[int64]float64{0: 1, 3: 2.5, 9: 0.75, 15: 8}
	for id, v := range values {
		tr.SetCount(id, v)
	}
	require.False(t, tr.Overflowed())
	for id := int64(0); id < 16; id++ {
		want := values[id]
		assert.Equal(t, want, tr.Count(id), "id %d", id)
	}
}

func TestTreeSolutionZeroVars(t *testing.T) {
	tr := NewTreeSolution(2, 0, 0, 1)
	assert.Equal(t, 0.0, tr.Count(0))
	tr.SetCount(0, 42)
	assert.Equal(t, 42.0, tr.Count(0))
	assert.Equal(t, int64(2), tr.Entries())
}

func TestTreeSolutionOverflow(t *testing.T) {
	tr := NewTreeSolution(2, 4, 0, 16)
	tr.SetCount(0, 1)
	tr.SetCount(15, 1)
	assert.True(t, tr.Overflowed())
}

func TestTreeSolutionConcurrent(t *testing.T) {
	tr := NewTreeSolution(1<<14, 10, 0, 1<<10)
	launch(0, 1<<10, func(id int64) {
		if id%3 == 0 {
			tr.SetCount(id, float64(id+1))
		}
	})
	require.False(t, tr.Overflowed())
	for id := int64(0); id < 1<<10; id++ {
		if id%3 == 0 {
			assert.Equal(t, float64(id+1), tr.Count(id))
		} else {
			assert.Equal(t, 0.0, tr.Count(id))
		}
	}
}

func TestCombineTreeDisjoint(t *testing.T) {
	t1 := NewTreeSolution(64, 4, 0, 8)
	t2 := NewTreeSolution(64, 4, 8, 16)
	t1.SetCount(1, 2)
	t1.SetCount(7, 3)
	t2.SetCount(8, 4)
	t2.SetCount(15, 5)

	dst := t1.grow(t1.Entries() + t2.Entries() + 2)
	dst.maxID = t2.MaxID()
	combineTree(dst, t2)
	require.False(t, dst.Overflowed())

	want := map[int64]float64{1: 2, 7: 3, 8: 4, 15: 5}
	for id := int64(0); id < 16; id++ {
		assert.Equal(t, want[id], dst.Count(id), "id %d", id)
	}
}
