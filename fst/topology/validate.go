package topology

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/steiner-battery/fstscope/fst"
)

// Validation is the cycle and connectivity check of an edge set.
type Validation struct {
	HasCycle   bool
	CycleEdge  fst.Optional[fst.Edge] // first edge, in sorted order, that closes a cycle
	Components int                    // among vertices touched by an edge
	Vertices   int
}

// Validate adds the edges in sorted order so the reported cycle edge is
// deterministic. An edge closes a cycle when its endpoints are already
// connected by the edges added before it.
func Validate(edges fst.EdgeSet) Validation {
	g := simple.NewUndirectedGraph()
	var v Validation
	for _, e := range edges.Sorted() {
		u, w := simple.Node(e.U), simple.Node(e.V)
		if !v.HasCycle && g.Node(u.ID()) != nil && g.Node(w.ID()) != nil && topo.PathExistsIn(g, u, w) {
			v.HasCycle = true
			v.CycleEdge = fst.Some(e)
		}
		g.SetEdge(simple.Edge{F: u, T: w})
	}
	v.Vertices = g.Nodes().Len()
	v.Components = len(topo.ConnectedComponents(g))
	return v
}
