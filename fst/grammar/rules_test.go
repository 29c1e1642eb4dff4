package grammar

import (
	"errors"
	"testing"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(t *testing.T, line string, rules RuleSet) Record {
	t.Helper()
	rec, ok, err := MatchLine(line, rules)
	require.True(t, ok, "line %q did not match", line)
	require.NoError(t, err)
	return rec
}

func TestSolutionRules_ScaledObjective(t *testing.T) {
	rec := match(t, "OBJ[3]: tree=1.250000 (scaled=1250.000000), battery_sum_cost=-0.400000, obj=4.100000 (covers 3 terminals)", SolutionRules)
	assert.Equal(t, FstObjective{FstID: 3, Cost: fst.FstCost{
		TreeRaw: 1.25, TreeScaled: 1250, BatteryCost: -0.4, Objective: 4.1, Style: fst.StyleScaled,
	}}, rec)
}

func TestSolutionRules_CombinedObjective_ScaledEqualsRaw(t *testing.T) {
	rec := match(t, "DEBUG OBJ: FST 7: tree_cost=2.500000, battery_cost=0.750000, combined=3.250000", SolutionRules)
	obj, ok := rec.(FstObjective)
	require.True(t, ok)
	assert.Equal(t, 7, obj.FstID)
	assert.Equal(t, fst.StyleCombined, obj.Cost.Style)
	assert.Equal(t, obj.Cost.TreeRaw, obj.Cost.TreeScaled)
	assert.InDelta(t, 3.25, obj.Cost.Objective, 1e-12)
}

func TestSolutionRules_BudgetLines(t *testing.T) {
	tests := []struct {
		line string
		want Record
	}{
		{"DEBUG BUDGET: Budget limit: 1.500000", BudgetLimit{Value: 1.5}},
		{"DEBUG BUDGET: Using environment budget=2.000000", BudgetEnvLimit{Value: 2}},
		{"DEBUG BUDGET: max_tree_cost = 0.875000", MaxTreeCost{Value: 0.875}},
		{"DEBUG BUDGET: Constraint: Σ (normalized_tree_cost * 1000) * x[i] ≤ 1500", BudgetConstraintFormula{ScaleFactor: 1000, BudgetRHS: 1500}},
		{"DEBUG BUDGET: Constraint: Σ (norm_cost * 1000) * x[i] <= 900", BudgetConstraintFormula{ScaleFactor: 1000, BudgetRHS: 900}},
		{"DEBUG NORMALIZATION: max_tree_cost=3.000000, max_battery_cost=42.000000", Normalization{MaxTreeCost: 3, MaxBatteryCost: 42}},
		{"DEBUG P1READ: Terminal 4 battery=63.200000", TerminalBattery{Index: 4, Battery: 63.2}},
	}
	for _, tc := range tests {
		t.Run(string(tc.want.Class()), func(t *testing.T) {
			assert.Equal(t, tc.want, match(t, tc.line, SolutionRules))
		})
	}
}

func TestWeightRules(t *testing.T) {
	tests := []struct {
		line string
		want Record
	}{
		{"DEBUG OBJ: alpha = 10.000000", AlphaWeight{Value: 10}},
		{"DEBUG OBJ: beta = 0.500000", BetaWeight{Value: 0.5}},
		{"USING GLOBAL NORMALIZATION: max_fst_cost=1.0, max_battery_cost=2.0, alpha=10.0", AlphaWeight{Value: 10}},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, match(t, tc.line, WeightRules))
		})
	}
}

func TestSolutionRules_LpAssignment_TaggedAndUntagged(t *testing.T) {
	tagged := match(t, "DEBUG LP_VARS: x[2] = 1.000000 (FST 2)", SolutionRules)
	assert.Equal(t, LpVariableAssignment{FstID: 2, Value: 1, Tagged: true}, tagged)

	plain := match(t, "  x[5] = 0.000000", SolutionRules)
	assert.Equal(t, LpVariableAssignment{FstID: 5, Value: 0}, plain)
}

func TestSolutionRules_SlackVariable_WinsOverAssignment(t *testing.T) {
	// GIVEN a slack line that also looks like an x[] assignment
	rec := match(t, "DEBUG LP_VARS: not_covered[3] = 1.000000", SolutionRules)

	// THEN it is classified as a slack variable, never an FST assignment
	slack, ok := rec.(SlackVariable)
	require.True(t, ok, "got %T", rec)
	assert.Equal(t, fst.Some(3), slack.Index)
	assert.Equal(t, fst.Some(1.0), slack.Value)
}

func TestSolutionRules_LpBlockStart(t *testing.T) {
	assert.Equal(t, LpBlockStart{}, match(t, "DEBUG LP_VARS: LP solution variables", SolutionRules))
}

func TestSolutionRules_SolutionFstTerminals_StopsAtFirstNonInteger(t *testing.T) {
	rec := match(t, "% fs13: 10 5 S 1.5 2.5", SolutionRules)
	assert.Equal(t, SolutionFstTerminals{FstID: 13, Terminals: []int{10, 5}}, rec)
}

func TestSolutionRules_UnrelatedLine_Ignored(t *testing.T) {
	_, ok, err := MatchLine("Branch-and-bound node 17 processed", SolutionRules)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestSolutionRules_NonNumericField_IsParseError(t *testing.T) {
	// GIVEN a battery line whose value is garbage
	_, ok, err := MatchLine("DEBUG P1READ: Terminal 4 battery=abc", SolutionRules)

	// THEN the shape matched but conversion failed
	assert.True(t, ok)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ClassTerminalBattery, pe.Class)
	assert.Equal(t, "abc", pe.Token)
	assert.ErrorIs(t, err, ErrParse)
}

func TestTerminalsRules(t *testing.T) {
	rec := match(t, "0.25 0.75 80.5", TerminalsRules)
	assert.Equal(t, TerminalCoordinate{X: 0.25, Y: 0.75, Battery: fst.Some(80.5)}, rec)

	rec = match(t, "1 2", TerminalsRules)
	assert.Equal(t, TerminalCoordinate{X: 1, Y: 2}, rec)

	_, ok, _ := MatchLine("# x y battery", TerminalsRules)
	assert.False(t, ok, "comment lines are not coordinates")
}

func TestVisualizationRules(t *testing.T) {
	tests := []struct {
		line string
		want Record
	}{
		{`<tr><td><strong>MIP Gap:</strong></td><td>0.0100% (0.000100)</td></tr>`, VizMipGap{Percent: 0.01, Decimal: 0.0001}},
		{`<tr><td><strong>Total Cost:</strong></td><td>12.345</td></tr>`, VizTotalCost{Value: 12.345}},
		{`<tr><td><strong>Covered Terminals:</strong></td><td>9</td></tr>`, VizCoverage{Covered: fst.Some(9)}},
		{`<tr><td><strong>Uncovered Terminals:</strong></td><td>1</td></tr>`, VizCoverage{Uncovered: fst.Some(1)}},
		{`<tr><td><strong>Coverage Rate:</strong></td><td>90.0%</td></tr>`, VizCoverage{RatePercent: fst.Some(90.0)}},
		{`<tr><td><strong>Selected FSTs:</strong></td><td>4 of 17</td></tr>`, VizFstSelection{Selected: 4, Total: 17}},
		{`<strong>Budget Constraint:</strong> Tree costs (1,234) ≤ Budget (5,000)`, VizBudgetUsage{Used: 1234, Total: 5000}},
	}
	for _, tc := range tests {
		t.Run(string(tc.want.Class()), func(t *testing.T) {
			assert.Equal(t, tc.want, match(t, tc.line, VisualizationRules))
		})
	}
}

func TestVisualizationRules_DecimalBudgetUsage_Rounded(t *testing.T) {
	rec := match(t, `Tree costs (1234.600) > Budget (1000.000)`, VisualizationRules)
	assert.Equal(t, VizBudgetUsage{Used: 1235, Total: 1000}, rec)
}

func TestVisualizationRules_UnavailableGap_Ignored(t *testing.T) {
	_, ok, _ := MatchLine(`<tr><td><strong>MIP Gap:</strong></td><td>Not available</td></tr>`, VisualizationRules)
	assert.False(t, ok)
}

func TestRules_MatchIsStateless(t *testing.T) {
	// GIVEN the same line matched twice with an unrelated line in between
	line := "DEBUG LP_VARS: x[1] = 1.000000"
	first := match(t, line, SolutionRules)
	_, _, _ = MatchLine("DEBUG BUDGET: Budget limit: 3", SolutionRules)
	second := match(t, line, SolutionRules)

	// THEN the results are identical
	assert.Equal(t, first, second)
}
