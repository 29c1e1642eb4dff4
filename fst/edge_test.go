package fst

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdge_SwapsToCanonicalOrder(t *testing.T) {
	e, err := NewEdge(3, 1)
	require.NoError(t, err)
	assert.Equal(t, Edge{U: 1, V: 3}, e)
}

func TestNewEdge_SelfLoop_Rejected(t *testing.T) {
	_, err := NewEdge(4, 4)
	if !errors.Is(err, ErrSelfLoop) {
		t.Fatalf("expected ErrSelfLoop, got %v", err)
	}
}

func TestNewEdge_NegativeVertex_Rejected(t *testing.T) {
	_, err := NewEdge(-1, 2)
	assert.ErrorIs(t, err, ErrNegativeVertex)
}

func TestEdgeCanonical_Idempotent(t *testing.T) {
	for _, e := range []Edge{{0, 1}, {5, 2}, {7, 9}} {
		once := e.Canonical()
		assert.Equal(t, once, once.Canonical(), "canonicalizing %v twice must not change it", e)
	}
}

func TestEdgeSet_ReversedDuplicates_Collapse(t *testing.T) {
	// GIVEN (3,1) and (1,3) added to the same set
	s := NewEdgeSet(Edge{U: 3, V: 1}, Edge{U: 1, V: 3})

	// THEN only one edge is stored
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(Edge{U: 3, V: 1}))
	assert.True(t, s.Has(Edge{U: 1, V: 3}))
}

func TestEdgeSet_MinusAndUnion(t *testing.T) {
	a := NewEdgeSet(Edge{0, 1}, Edge{1, 2})
	b := NewEdgeSet(Edge{0, 1}, Edge{0, 2})

	assert.Equal(t, []Edge{{1, 2}}, a.Minus(b).Sorted())
	assert.Equal(t, []Edge{{0, 2}}, b.Minus(a).Sorted())
	assert.Equal(t, []Edge{{0, 1}, {0, 2}, {1, 2}}, a.Union(b).Sorted())
}

func TestEdgeSet_NilReadsAsEmpty(t *testing.T) {
	var s EdgeSet
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has(Edge{0, 1}))
	assert.True(t, s.Equal(NewEdgeSet()))
	assert.Empty(t, s.Sorted())
}
