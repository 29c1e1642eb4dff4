package fst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costed(id int, tree, objective float64) FstRecord {
	return FstRecord{ID: id, Cost: Some(FstCost{
		TreeRaw: tree, TreeScaled: tree, Objective: objective, Style: StyleCombined,
	})}
}

func TestRecommend_PicksLeastObjectiveAmongFeasible(t *testing.T) {
	fsts := []FstRecord{
		costed(0, 800, 500),
		costed(1, 1200, 100), // cheapest objective but over budget
		costed(2, 900, 450),
		costed(3, 400, 700),
	}
	rec, err := Recommend(fsts, BudgetConfig{EnvBudget: Some(1000.0)})
	require.NoError(t, err)

	assert.True(t, rec.Feasible)
	assert.Equal(t, 2, rec.Best.ID)
	assert.Len(t, rec.Feasibles, 3)
	assert.Equal(t, []int{2}, rec.Selection().IDs)
	assert.Equal(t, SourceRecommendation, rec.Selection().Source)
}

func TestRecommend_TieBrokenByLowestID(t *testing.T) {
	fsts := []FstRecord{costed(5, 10, 3), costed(2, 10, 3), costed(9, 10, 3)}
	rec, err := Recommend(fsts, BudgetConfig{BudgetLimit: Some(10.0)})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Best.ID)
}

func TestRecommend_NoFeasibleFST_ReportsShortfall(t *testing.T) {
	// GIVEN every FST over budget
	fsts := []FstRecord{costed(0, 150, 1), costed(1, 120, 2), costed(2, 300, 0)}

	// WHEN recommending
	rec, err := Recommend(fsts, BudgetConfig{EnvBudget: Some(100.0)})

	// THEN infeasibility is a result with the minimum tree cost and shortfall
	require.NoError(t, err)
	assert.False(t, rec.Feasible)
	assert.Equal(t, Some(120.0), rec.MinTreeCost)
	assert.Equal(t, Some(20.0), rec.Shortfall)
	assert.Equal(t, 0, rec.Selection().Len())
}

func TestRecommend_MissingBudgetOrCosts(t *testing.T) {
	_, err := Recommend([]FstRecord{costed(0, 1, 1)}, BudgetConfig{})
	assert.ErrorIs(t, err, ErrNoBudget)

	_, err = Recommend([]FstRecord{{ID: 0, Terminals: []int{0, 1}}}, BudgetConfig{BudgetLimit: Some(1.0)})
	assert.ErrorIs(t, err, ErrNoCandidates)
}
