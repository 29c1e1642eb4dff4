package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGroup(t *testing.T, dir string, iter string, selected ...int) {
	t.Helper()
	writeFile(t, dir, "terminals_iter"+iter+".txt", "0.1 0.2 10\n0.5 0.5 60\n0.9 0.1 90\n")
	writeFile(t, dir, "fsts_dump_iter"+iter+".txt", twoFSTDump)
	writeFile(t, dir, "solution_iter"+iter+".txt", solutionSelecting(selected...))
}

func TestAnalyzeIteration_IncludesChangeAgainstPredecessor(t *testing.T) {
	// GIVEN two iterations where iteration 2 drops FST 1
	dir := t.TempDir()
	writeGroup(t, dir, "1", 0, 1)
	writeGroup(t, dir, "2", 0)

	// WHEN iteration 2 is analyzed
	path, err := analyzeIteration(context.Background(), dir, 2)

	// THEN its analysis reports the one changed edge
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "iter2_analysis.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Iteration 2")
	assert.Contains(t, string(data), "1 (0.566)")
}

func TestAnalyzeIteration_FirstIterationHasNoPredecessor(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "1", 0)

	path, err := analyzeIteration(context.Background(), dir, 1)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0 (0.000)")
}

func TestAnalyzeIteration_MissingSolutionFails(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "1", 0)

	_, err := analyzeIteration(context.Background(), dir, 5)

	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "iter5_analysis.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
