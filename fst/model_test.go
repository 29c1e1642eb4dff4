package fst

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional_AbsentRendersNA(t *testing.T) {
	var o Optional[float64]
	assert.False(t, o.IsSet())
	assert.Equal(t, NA, o.Format("%.2f"))
	assert.Equal(t, NA, o.String())
	assert.Equal(t, 7.0, o.OrElse(7))
}

func TestOptional_PresentZeroIsNotAbsent(t *testing.T) {
	// GIVEN a present zero value
	o := Some(0.0)

	// THEN it renders as a number, not N/A
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, "0.00", o.Format("%.2f"))
}

func TestFirst_PicksFirstPresent(t *testing.T) {
	got := First(None[int](), Some(3), Some(4))
	assert.Equal(t, Some(3), got)
	assert.False(t, First[int]().IsSet())
}

func TestMap_PropagatesAbsence(t *testing.T) {
	double := func(v int) int { return v * 2 }
	assert.Equal(t, Some(6), Map(Some(3), double))
	assert.False(t, Map(None[int](), double).IsSet())
}

func TestPointDistance(t *testing.T) {
	d := Point{X: 0.1, Y: 0.2}.Distance(Point{X: 0.5, Y: 0.5})
	assert.InDelta(t, 0.5, d, 1e-12)
}

func TestSelectionFromLP_ThresholdAndFractionalValues(t *testing.T) {
	// GIVEN LP assignments with integral and fractional values
	assignments := []LpAssignment{
		{FstID: 4, Value: 1.0},
		{FstID: 1, Value: 0.5},
		{FstID: 2, Value: 0.4999},
		{FstID: 3, Value: 0.0},
		{FstID: 0, Value: 0.73},
	}

	// WHEN the selection is derived
	sel := SelectionFromLP(assignments)

	// THEN exactly the ids with value >= 0.5 are selected, sorted
	assert.Equal(t, []int{0, 1, 4}, sel.IDs)
	assert.Equal(t, SourceLP, sel.Source)
	assert.True(t, sel.Contains(1))
	assert.False(t, sel.Contains(2))
}

func TestSelectionFromLP_LastValueWins(t *testing.T) {
	sel := SelectionFromLP([]LpAssignment{{FstID: 2, Value: 1}, {FstID: 2, Value: 0}})
	assert.Equal(t, 0, sel.Len())
}

func TestNewSelection_Deduplicates(t *testing.T) {
	sel := NewSelection(SourceLP, 3, 1, 3, 2)
	assert.Equal(t, []int{1, 2, 3}, sel.IDs)
}

func TestBudgetConfig_EffectiveBudget_PrefersEnvironment(t *testing.T) {
	b := BudgetConfig{BudgetLimit: Some(1.5), EnvBudget: Some(900.0)}
	assert.Equal(t, Some(900.0), b.EffectiveBudget())

	b = BudgetConfig{BudgetLimit: Some(1.5)}
	assert.Equal(t, Some(1.5), b.EffectiveBudget())
}

func TestCoverageRate_MatchesFormula(t *testing.T) {
	tests := []struct{ covered, uncovered int }{
		{3, 1}, {0, 5}, {7, 0}, {19, 1}, {1, 2},
	}
	for _, tt := range tests {
		rate, ok := CoverageRate(tt.covered, tt.uncovered).Get()
		if !ok {
			t.Fatalf("rate for %d/%d should be present", tt.covered, tt.uncovered)
		}
		want := float64(tt.covered) / float64(tt.covered+tt.uncovered) * 100
		if math.Abs(rate-want) > 1e-9 {
			t.Errorf("CoverageRate(%d,%d) = %f, want %f", tt.covered, tt.uncovered, rate, want)
		}
	}
	assert.False(t, CoverageRate(0, 0).IsSet())
}

func TestCoverageOf_UnionOfSelectedTerminalLists(t *testing.T) {
	fsts := []FstRecord{
		{ID: 0, Terminals: []int{0, 1}},
		{ID: 1, Terminals: []int{1, 2}},
		{ID: 2, Terminals: []int{3, 4}},
	}
	cov := CoverageOf(6, fsts, NewSelection(SourceLP, 0, 1), nil)
	assert.Equal(t, []int{0, 1, 2}, cov.Covered)
	assert.Equal(t, []int{3, 4, 5}, cov.Uncovered)
}

func TestCoverageOf_FallsBackToSolutionLines(t *testing.T) {
	// GIVEN no dump definitions but "% fs" lines for the selected FST
	fallback := map[int][]int{7: {2, 0}}

	cov := CoverageOf(3, nil, NewSelection(SourceLP, 7), fallback)

	assert.Equal(t, []int{0, 2}, cov.Covered)
	assert.Equal(t, []int{1}, cov.Uncovered)
}

func TestSnapshot_Lookups(t *testing.T) {
	s := &Snapshot{
		Terminals: []Terminal{{Index: 0}, {Index: 1, Battery: 42}},
		FSTs:      []FstRecord{{ID: 0}, {ID: 5, Terminals: []int{1}}},
	}
	term, ok := s.Terminal(1)
	assert.True(t, ok)
	assert.Equal(t, 42.0, term.Battery)
	_, ok = s.Terminal(9)
	assert.False(t, ok)

	assert.Equal(t, 2, s.TerminalCount())

	f, ok := s.FST(5)
	assert.True(t, ok)
	assert.Equal(t, []int{1}, f.Terminals)
	_, ok = s.FST(3)
	assert.False(t, ok)
}

func TestSnapshot_TerminalLookup_WithIndexGap(t *testing.T) {
	// GIVEN three coordinate lines where line 1 carried no battery
	s := &Snapshot{
		Terminals: []Terminal{{Index: 0, Battery: 10}, {Index: 2, Battery: 90}},
		Positions: Positions{0: {}, 1: {X: 0.5}, 2: {X: 0.9}},
	}

	term, ok := s.Terminal(2)
	assert.True(t, ok)
	assert.Equal(t, 90.0, term.Battery)
	_, ok = s.Terminal(1)
	assert.False(t, ok)
	assert.Equal(t, 3, s.TerminalCount())
}
