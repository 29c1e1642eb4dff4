// Package grammar recognizes the line-level record classes printed by the
// solver and its visualization layer. Every rule is stateless: a line either
// matches exactly one class of a rule set (the first that matches, in order)
// or is ignored. Block-level context such as the LP_VARS section is left to
// the caller, which sees the records in file order.
package grammar

import "github.com/steiner-battery/fstscope/fst"

// Class names a record class.
type Class string

const (
	ClassTerminalBattery         Class = "TerminalBattery"
	ClassTerminalCoordinate      Class = "TerminalCoordinate"
	ClassBudgetLimit             Class = "BudgetLimit"
	ClassBudgetEnvLimit          Class = "BudgetEnvLimit"
	ClassMaxTreeCost             Class = "MaxTreeCost"
	ClassBudgetConstraintFormula Class = "BudgetConstraintFormula"
	ClassAlphaWeight             Class = "AlphaWeight"
	ClassBetaWeight              Class = "BetaWeight"
	ClassNormalization           Class = "Normalization"
	ClassFstObjective            Class = "FstObjective"
	ClassLpBlockStart            Class = "LpBlockStart"
	ClassLpVariableAssignment    Class = "LpVariableAssignment"
	ClassSlackVariable           Class = "SlackVariable"
	ClassSolutionFstTerminals    Class = "SolutionFstTerminals"
	ClassVizMipGap               Class = "VizMipGap"
	ClassVizTotalCost            Class = "VizTotalCost"
	ClassVizCoverage             Class = "VizCoverage"
	ClassVizFstSelection         Class = "VizFstSelection"
	ClassVizBudgetUsage          Class = "VizBudgetUsage"
)

// Record is one matched line. Each class has its own concrete type.
type Record interface {
	Class() Class
}

// TerminalBattery is "Terminal <i> battery=<b>" from the solver's input echo.
type TerminalBattery struct {
	Index   int
	Battery float64
}

// TerminalCoordinate is one "x y [battery ...]" line of a terminals file.
// It carries no index; terminals are numbered by line order.
type TerminalCoordinate struct {
	X       float64
	Y       float64
	Battery fst.Optional[float64]
}

// BudgetLimit is "DEBUG BUDGET: Budget limit: <v>".
type BudgetLimit struct{ Value float64 }

// BudgetEnvLimit is "DEBUG BUDGET: Using environment budget=<v>".
type BudgetEnvLimit struct{ Value float64 }

// MaxTreeCost is "DEBUG BUDGET: max_tree_cost = <v>".
type MaxTreeCost struct{ Value float64 }

// BudgetConstraintFormula is the printed "Σ (norm_cost * k) * x[i] ≤ rhs" line.
type BudgetConstraintFormula struct {
	ScaleFactor int
	BudgetRHS   int
}

// AlphaWeight is an "alpha = <v>" objective blend weight.
type AlphaWeight struct{ Value float64 }

// BetaWeight is a "beta = <v>" objective blend weight.
type BetaWeight struct{ Value float64 }

// Normalization is "DEBUG NORMALIZATION: max_tree_cost=<a>, max_battery_cost=<b>".
type Normalization struct {
	MaxTreeCost    float64
	MaxBatteryCost float64
}

// FstObjective is a per-FST cost line in either dump style, already unified.
type FstObjective struct {
	FstID int
	Cost  fst.FstCost
}

// LpBlockStart marks an "LP_VARS" header line without an assignment.
type LpBlockStart struct{}

// LpVariableAssignment is "x[<i>] = <v>". Tagged is set when the line itself
// carries the LP_VARS marker.
type LpVariableAssignment struct {
	FstID  int
	Value  float64
	Tagged bool
}

// SlackVariable is any line mentioning the not_covered slack variables.
// Index and Value are present only for "not_covered[<j>] = <v>" lines.
type SlackVariable struct {
	Index fst.Optional[int]
	Value fst.Optional[float64]
}

// SolutionFstTerminals is a "% fs<id>: t1 t2 ..." line of the solver's plot dump.
type SolutionFstTerminals struct {
	FstID     int
	Terminals []int
}

// VizMipGap is the "MIP Gap: <p>% (<d>)" field.
type VizMipGap struct {
	Percent float64
	Decimal float64
}

// VizTotalCost is the "Total Cost" field.
type VizTotalCost struct{ Value float64 }

// VizCoverage carries one of the coverage fields; the others are absent.
type VizCoverage struct {
	Covered     fst.Optional[int]
	Uncovered   fst.Optional[int]
	RatePercent fst.Optional[float64]
}

// VizFstSelection is the "Selected FSTs: <n> of <m>" field.
type VizFstSelection struct {
	Selected int
	Total    int
}

// VizBudgetUsage is the "Tree costs (<used>) ≤ Budget (<total>)" field.
type VizBudgetUsage struct {
	Used  int
	Total int
}

func (TerminalBattery) Class() Class         { return ClassTerminalBattery }
func (TerminalCoordinate) Class() Class      { return ClassTerminalCoordinate }
func (BudgetLimit) Class() Class             { return ClassBudgetLimit }
func (BudgetEnvLimit) Class() Class          { return ClassBudgetEnvLimit }
func (MaxTreeCost) Class() Class             { return ClassMaxTreeCost }
func (BudgetConstraintFormula) Class() Class { return ClassBudgetConstraintFormula }
func (AlphaWeight) Class() Class             { return ClassAlphaWeight }
func (BetaWeight) Class() Class              { return ClassBetaWeight }
func (Normalization) Class() Class           { return ClassNormalization }
func (FstObjective) Class() Class            { return ClassFstObjective }
func (LpBlockStart) Class() Class            { return ClassLpBlockStart }
func (LpVariableAssignment) Class() Class    { return ClassLpVariableAssignment }
func (SlackVariable) Class() Class           { return ClassSlackVariable }
func (SolutionFstTerminals) Class() Class    { return ClassSolutionFstTerminals }
func (VizMipGap) Class() Class               { return ClassVizMipGap }
func (VizTotalCost) Class() Class            { return ClassVizTotalCost }
func (VizCoverage) Class() Class             { return ClassVizCoverage }
func (VizFstSelection) Class() Class         { return ClassVizFstSelection }
func (VizBudgetUsage) Class() Class          { return ClassVizBudgetUsage }
