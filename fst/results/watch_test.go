package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectBatches gathers batches until none arrives for quiet.
func collectBatches(t *testing.T, batches <-chan []int, quiet, limit time.Duration) [][]int {
	t.Helper()
	var got [][]int
	deadline := time.After(limit)
	for {
		select {
		case b := <-batches:
			got = append(got, b)
		case <-time.After(quiet):
			if len(got) > 0 {
				return got
			}
		case <-deadline:
			return got
		}
	}
}

func TestWatcher_DebouncesInputChanges(t *testing.T) {
	// GIVEN a watcher on an empty results directory
	dir := t.TempDir()
	w, err := NewWatcher(dir, nil, 200*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []int, 16)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(iters []int) { batches <- iters }) }()

	// WHEN two files of iteration 3 and a report file are written
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solution_iter3.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fsts_dump_iter3.txt"), []byte("0 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iter3_analysis.txt"), []byte("r"), 0o644))

	// THEN every delivered batch names iteration 3 exactly once
	got := collectBatches(t, batches, time.Second, 10*time.Second)
	require.NotEmpty(t, got, "no batch delivered")
	for _, b := range got {
		assert.Equal(t, []int{3}, b)
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestRefresh_WritesAffectedAnalyses(t *testing.T) {
	dir := t.TempDir()
	writeIteration(t, dir, 1, "0 1\n1 2\n0 1\n1 2\n", 0, 1)
	writeIteration(t, dir, 2, "0 1\n1 2\n0 1\n1 2\n", 0)
	writeIteration(t, dir, 3, "0 1\n1 2\n0 1\n1 2\n", 1)

	written, err := Refresh(context.Background(), dir, nil, []int{1})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "iter1_analysis.txt"), filepath.Join(dir, "iter2_analysis.txt")}, written)
	_, err = os.Stat(filepath.Join(dir, "iter3_analysis.txt"))
	assert.True(t, os.IsNotExist(err))
}
