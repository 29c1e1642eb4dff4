package fst

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSelfLoop is returned when both endpoints of an edge are the same vertex.
var ErrSelfLoop = errors.New("edge endpoints are equal")

// ErrNegativeVertex is returned when an edge endpoint is a negative index.
var ErrNegativeVertex = errors.New("edge endpoint is negative")

// Edge is an undirected pair of terminal indices with U < V.
type Edge struct {
	U int
	V int
}

// NewEdge canonicalizes (a, b) so the smaller index comes first.
func NewEdge(a, b int) (Edge, error) {
	if a == b {
		return Edge{}, fmt.Errorf("edge (%d,%d): %w", a, b, ErrSelfLoop)
	}
	if a < 0 || b < 0 {
		return Edge{}, fmt.Errorf("edge (%d,%d): %w", a, b, ErrNegativeVertex)
	}
	return Edge{U: a, V: b}.Canonical(), nil
}

// Canonical returns e with its endpoints ordered. Idempotent.
func (e Edge) Canonical() Edge {
	if e.U > e.V {
		return Edge{U: e.V, V: e.U}
	}
	return e
}

// String renders the edge as "(u,v)".
func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.U, e.V)
}

// less orders edges lexicographically by (U, V).
func (e Edge) less(o Edge) bool {
	if e.U != o.U {
		return e.U < o.U
	}
	return e.V < o.V
}

// EdgeSet is a set of canonical edges. Use NewEdgeSet to obtain a writable set;
// a nil EdgeSet reads as empty.
type EdgeSet map[Edge]struct{}

// NewEdgeSet returns a set holding the canonical form of each edge.
func NewEdgeSet(edges ...Edge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s.Add(e)
	}
	return s
}

// Add inserts the canonical form of e. Duplicates collapse.
func (s EdgeSet) Add(e Edge) {
	s[e.Canonical()] = struct{}{}
}

// Has reports whether e (in either orientation) is in the set.
func (s EdgeSet) Has(e Edge) bool {
	_, ok := s[e.Canonical()]
	return ok
}

// Len returns the number of distinct edges.
func (s EdgeSet) Len() int {
	return len(s)
}

// Minus returns the edges of s that are not in o.
func (s EdgeSet) Minus(o EdgeSet) EdgeSet {
	out := make(EdgeSet)
	for e := range s {
		if !o.Has(e) {
			out[e] = struct{}{}
		}
	}
	return out
}

// Union returns a new set holding the edges of both sets.
func (s EdgeSet) Union(o EdgeSet) EdgeSet {
	out := make(EdgeSet, len(s)+len(o))
	for e := range s {
		out[e] = struct{}{}
	}
	for e := range o {
		out[e] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same edges.
func (s EdgeSet) Equal(o EdgeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for e := range s {
		if !o.Has(e) {
			return false
		}
	}
	return true
}

// Sorted returns the edges ordered by (U, V) for deterministic iteration.
func (s EdgeSet) Sorted() []Edge {
	out := make([]Edge, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}
