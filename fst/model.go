package fst

import (
	"math"
	"sort"
)

// Point is a planar position in the solver's arbitrary units.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Terminal is a battery-carrying point the network may cover.
// Index is the terminal's line position in the coordinate file.
type Terminal struct {
	Index    int
	Position Point
	Battery  float64 // conventionally 0-100, not clamped
}

// Positions maps terminal index to planar position.
type Positions map[int]Point

// PositionsOf indexes the terminals by their Index.
func PositionsOf(terminals []Terminal) Positions {
	pos := make(Positions, len(terminals))
	for _, t := range terminals {
		pos[t.Index] = t.Position
	}
	return pos
}

// Alignment records the lengths of the coordinate and battery sequences that
// were zipped into Terminals. A mismatch is a data-quality fault, not an error.
type Alignment struct {
	Coordinates int
	Batteries   int
}

// Faulty reports whether the two sequences had different lengths.
func (a Alignment) Faulty() bool {
	return a.Coordinates != a.Batteries
}

// ObjectiveStyle identifies which dump style an FST objective line came from.
type ObjectiveStyle int

const (
	// StyleScaled is the "OBJ[i]: tree=.. (scaled=..), battery_sum_cost=.., obj=.." form.
	StyleScaled ObjectiveStyle = iota
	// StyleCombined is the "FST i: tree_cost=.., battery_cost=.., combined=.." form.
	StyleCombined
)

// FstCost is the unified objective schema for one FST. For StyleCombined
// lines TreeScaled equals TreeRaw.
type FstCost struct {
	TreeRaw     float64
	TreeScaled  float64
	BatteryCost float64 // signed: negative values reward covering low-battery terminals
	Objective   float64
	Style       ObjectiveStyle
}

// FstRecord is one candidate Full Steiner Tree. ID is its position in the dump.
type FstRecord struct {
	ID        int
	Terminals []int
	Cost      Optional[FstCost]
}

// BudgetConfig holds the budget parameters the solver printed for a run.
// BudgetRHS is recorded as printed; it is never recomputed.
type BudgetConfig struct {
	BudgetLimit        Optional[float64]
	EnvBudget          Optional[float64]
	ScaleFactor        Optional[int]
	BudgetRHS          Optional[int]
	MaxTreeCost        Optional[float64]
	Alpha              Optional[float64]
	Beta               Optional[float64]
	MaxTreeCostNorm    Optional[float64]
	MaxBatteryCostNorm Optional[float64]
}

// EffectiveBudget returns the environment budget when the run used one,
// otherwise the budget limit.
func (b BudgetConfig) EffectiveBudget() Optional[float64] {
	return First(b.EnvBudget, b.BudgetLimit)
}

// ObjectiveSummary holds the fields of the solver's visualization report.
type ObjectiveSummary struct {
	MIPGapPercent Optional[float64]
	MIPGapDecimal Optional[float64]
	TotalCost     Optional[float64]
	Covered       Optional[int]
	Uncovered     Optional[int]
	CoverageRate  Optional[float64] // percent
	SelectedFSTs  Optional[int]
	TotalFSTs     Optional[int]
	BudgetUsed    Optional[int]
	BudgetTotal   Optional[int]
}

// LpAssignment is one x[i] = v line from the solver's LP_VARS block.
// Fractional relaxation values are kept as printed.
type LpAssignment struct {
	FstID int
	Value float64
}

// SelectionThreshold is the LP value at or above which an FST counts as chosen.
const SelectionThreshold = 0.5

// SelectionSource records how a Selection was derived.
type SelectionSource string

const (
	SourceNone           SelectionSource = "none"
	SourceLP             SelectionSource = "lp"
	SourceRecommendation SelectionSource = "recommendation"
)

// Selection is the set of FST ids chosen in one iteration, sorted ascending.
type Selection struct {
	IDs    []int
	Source SelectionSource
}

// NewSelection builds a sorted, de-duplicated Selection.
func NewSelection(source SelectionSource, ids ...int) Selection {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return Selection{IDs: out, Source: source}
}

// SelectionFromLP selects every FST whose last printed value is >= SelectionThreshold.
func SelectionFromLP(assignments []LpAssignment) Selection {
	last := make(map[int]float64, len(assignments))
	for _, a := range assignments {
		last[a.FstID] = a.Value
	}
	var ids []int
	for id, v := range last {
		if v >= SelectionThreshold {
			ids = append(ids, id)
		}
	}
	return NewSelection(SourceLP, ids...)
}

// Contains reports whether id is selected.
func (s Selection) Contains(id int) bool {
	i := sort.SearchInts(s.IDs, id)
	return i < len(s.IDs) && s.IDs[i] == id
}

// Len returns the number of selected FSTs.
func (s Selection) Len() int {
	return len(s.IDs)
}

// Snapshot aggregates everything extracted for one iteration. It owns its
// slices and sets; consumers must treat it as read-only.
type Snapshot struct {
	Iteration     int
	Terminals     []Terminal
	Positions     Positions // every coordinate line, battery or not
	Alignment     Alignment
	FSTs          []FstRecord
	Budget        BudgetConfig
	Objective     ObjectiveSummary
	Assignments   []LpAssignment
	Selection     Selection
	SolutionFSTs  map[int][]int // "% fs<id>:" terminal lists from the solution log
	DumpEdges     EdgeSet
	ActiveEdges   EdgeSet
	EdgeBoundary  string // how the dump's FST/edge boundary was located
	MissingInputs []string
	Warnings      []string
}

// FST returns the record with the given id.
func (s *Snapshot) FST(id int) (FstRecord, bool) {
	if id >= 0 && id < len(s.FSTs) && s.FSTs[id].ID == id {
		return s.FSTs[id], true
	}
	for _, f := range s.FSTs {
		if f.ID == id {
			return f, true
		}
	}
	return FstRecord{}, false
}

// TerminalCount is the number of terminal slots in the run: every
// coordinate line, or the highest terminal index when no positions exist.
func (s *Snapshot) TerminalCount() int {
	n := len(s.Positions)
	if k := len(s.Terminals); k > 0 && s.Terminals[k-1].Index+1 > n {
		n = s.Terminals[k-1].Index + 1
	}
	return n
}

// Terminal returns the terminal with the given index. Terminals are
// ordered by Index.
func (s *Snapshot) Terminal(idx int) (Terminal, bool) {
	i := sort.Search(len(s.Terminals), func(i int) bool { return s.Terminals[i].Index >= idx })
	if i < len(s.Terminals) && s.Terminals[i].Index == idx {
		return s.Terminals[i], true
	}
	return Terminal{}, false
}
