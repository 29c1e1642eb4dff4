package topology

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/steiner-battery/fstscope/fst"
)

// Distance is the change between two edge sets.
type Distance struct {
	EdgeCount int
	Length    float64
}

// String renders the distance as "<count> (<length>)".
func (d Distance) String() string {
	return fmt.Sprintf("%d (%.3f)", d.EdgeCount, d.Length)
}

// Symmetric returns the edges present in exactly one of a and b, sorted.
func Symmetric(a, b fst.EdgeSet) []fst.Edge {
	return a.Minus(b).Union(b.Minus(a)).Sorted()
}

// Diff measures the symmetric difference between prev and curr. An absent
// prev is the first iteration and yields a zero distance. Edges with an
// endpoint missing from pos add to the count but not the length.
func Diff(prev fst.Optional[fst.EdgeSet], curr fst.EdgeSet, pos fst.Positions) Distance {
	p, ok := prev.Get()
	if !ok {
		return Distance{}
	}
	changed := Symmetric(p, curr)
	lengths := make([]float64, len(changed))
	for i, e := range changed {
		lengths[i] = EdgeLength(e, pos)
	}
	return Distance{EdgeCount: len(changed), Length: floats.Sum(lengths)}
}

// EdgeLength is the Euclidean length of e, or 0 when an endpoint is unknown.
func EdgeLength(e fst.Edge, pos fst.Positions) float64 {
	a, ok := pos[e.U]
	if !ok {
		return 0
	}
	b, ok := pos[e.V]
	if !ok {
		return 0
	}
	return a.Distance(b)
}

// Change splits a symmetric difference by direction.
type Change struct {
	Added   []fst.Edge // in curr only
	Removed []fst.Edge // in prev only
}

// Changes lists the edges added and removed going from prev to curr.
func Changes(prev, curr fst.EdgeSet) Change {
	return Change{Added: curr.Minus(prev).Sorted(), Removed: prev.Minus(curr).Sorted()}
}

// FSTSetDistance counts ids selected in exactly one of a and b.
func FSTSetDistance(a, b fst.Selection) int {
	n := 0
	for _, id := range a.IDs {
		if !b.Contains(id) {
			n++
		}
	}
	for _, id := range b.IDs {
		if !a.Contains(id) {
			n++
		}
	}
	return n
}

// ErrUnknownMethod is returned by ParseMethod.
var ErrUnknownMethod = errors.New("unknown distance method")

// Method selects how a comparison is printed.
type Method string

const (
	MethodDetailed Method = "detailed" // "<edges> (<length>)"
	MethodFST      Method = "fst"      // changed selected-FST count
	MethodL1       Method = "l1"       // changed edge count
	MethodL2       Method = "l2"       // square root of the changed edge count
)

var methodAliases = map[string]Method{
	"detailed":  MethodDetailed,
	"fst":       MethodFST,
	"set":       MethodFST,
	"l1":        MethodL1,
	"manhattan": MethodL1,
	"l2":        MethodL2,
	"euclidean": MethodL2,
}

// ParseMethod accepts a method name or one of its aliases.
func ParseMethod(s string) (Method, error) {
	m, ok := methodAliases[s]
	if !ok {
		return "", fmt.Errorf("%w %q (valid: detailed, fst, l1, l2)", ErrUnknownMethod, s)
	}
	return m, nil
}

// Comparison holds every metric between two iterations.
type Comparison struct {
	Distance
	FSTChanged int
	Change     Change
}

// Compare computes all metrics. An absent prev yields the zero comparison.
func Compare(prevEdges fst.Optional[fst.EdgeSet], currEdges fst.EdgeSet,
	prevSel fst.Optional[fst.Selection], currSel fst.Selection, pos fst.Positions) Comparison {
	c := Comparison{Distance: Diff(prevEdges, currEdges, pos)}
	if p, ok := prevEdges.Get(); ok {
		c.Change = Changes(p, currEdges)
	}
	if p, ok := prevSel.Get(); ok {
		c.FSTChanged = FSTSetDistance(p, currSel)
	}
	return c
}

// Format renders c the way m prints it on the command line.
func (m Method) Format(c Comparison) string {
	switch m {
	case MethodFST:
		return fmt.Sprintf("%d", c.FSTChanged)
	case MethodL1:
		return fmt.Sprintf("%d", c.EdgeCount)
	case MethodL2:
		return fmt.Sprintf("%.6f", math.Sqrt(float64(c.EdgeCount)))
	default:
		return c.Distance.String()
	}
}
