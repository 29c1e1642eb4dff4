package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steiner-battery/fstscope/fst"
)

func TestValidate_Tree_NoCycle(t *testing.T) {
	v := Validate(fst.NewEdgeSet(fst.Edge{U: 0, V: 1}, fst.Edge{U: 1, V: 2}, fst.Edge{U: 4, V: 5}))
	assert.False(t, v.HasCycle)
	assert.False(t, v.CycleEdge.IsSet())
	assert.Equal(t, 2, v.Components)
	assert.Equal(t, 5, v.Vertices)
}

func TestValidate_Triangle_ReportsClosingEdge(t *testing.T) {
	// GIVEN a triangle; in sorted order (0,1), (0,2), (1,2) closes it
	v := Validate(fst.NewEdgeSet(fst.Edge{U: 1, V: 2}, fst.Edge{U: 0, V: 1}, fst.Edge{U: 0, V: 2}))
	assert.True(t, v.HasCycle)
	assert.Equal(t, fst.Some(fst.Edge{U: 1, V: 2}), v.CycleEdge)
	assert.Equal(t, 1, v.Components)
}

func TestValidate_Empty(t *testing.T) {
	v := Validate(nil)
	assert.Equal(t, Validation{}, v)
}

func TestValidate_SquareClosedByLastSortedEdge(t *testing.T) {
	// GIVEN a 4-cycle; sorted order is (0,1), (0,3), (1,2), (2,3)
	v := Validate(fst.NewEdgeSet(fst.Edge{U: 2, V: 3}, fst.Edge{U: 0, V: 1}, fst.Edge{U: 1, V: 2}, fst.Edge{U: 0, V: 3}))

	assert.True(t, v.HasCycle)
	assert.Equal(t, fst.Some(fst.Edge{U: 2, V: 3}), v.CycleEdge)
	assert.Equal(t, 1, v.Components)
	assert.Equal(t, 4, v.Vertices)
}
