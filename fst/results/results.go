// Package results locates iteration file groups in a results directory and
// extracts them concurrently with per-iteration fault isolation.
package results

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/entity"
	"github.com/steiner-battery/fstscope/fst/report"
	"github.com/steiner-battery/fstscope/fst/topology"
)

// Iteration is the outcome of extracting one file group. Exactly one of
// Snapshot and Err is set.
type Iteration struct {
	Number   int
	Snapshot *fst.Snapshot
	Err      error
}

// Discover returns the iteration numbers that have a solution log in dir,
// ascending.
func Discover(dir string, cfg *fst.AnalysisConfig) ([]int, error) {
	tmpl := cfg.Template(fst.FileSolution)
	matches, err := filepath.Glob(filepath.Join(dir, strings.Replace(tmpl, "%d", "*", 1)))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	re, err := numberPattern(tmpl)
	if err != nil {
		return nil, err
	}
	var iters []int
	for _, m := range matches {
		sub := re.FindStringSubmatch(filepath.Base(m))
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		iters = append(iters, n)
	}
	sort.Ints(iters)
	return iters, nil
}

// IterationOf returns the iteration number encoded in name when name
// matches the template of kind.
func IterationOf(name string, kind fst.FileKind, cfg *fst.AnalysisConfig) (int, bool) {
	re, err := numberPattern(cfg.Template(kind))
	if err != nil {
		return 0, false
	}
	sub := re.FindStringSubmatch(filepath.Base(name))
	if sub == nil {
		return 0, false
	}
	n, err := strconv.Atoi(sub[1])
	return n, err == nil
}

func numberPattern(tmpl string) (*regexp.Regexp, error) {
	quoted := strings.Replace(regexp.QuoteMeta(tmpl), "%d", `(\d+)`, 1)
	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", tmpl, err)
	}
	return re, nil
}

// GroupFor names the files of iteration iter in dir.
func GroupFor(dir string, iter int, cfg *fst.AnalysisConfig) entity.Group {
	path := func(kind fst.FileKind) string {
		return filepath.Join(dir, cfg.FileName(kind, iter))
	}
	return entity.Group{
		Iteration:     iter,
		Terminals:     path(fst.FileTerminals),
		Dump:          path(fst.FileDump),
		Solution:      path(fst.FileSolution),
		Visualization: path(fst.FileVisualization),
	}
}

// Extract builds the snapshots of iters with at most cfg.WorkerCount()
// groups in flight. A failed iteration is reported in its own result and
// does not stop the others; only cancellation of ctx is returned as an error.
func Extract(ctx context.Context, dir string, iters []int, cfg *fst.AnalysisConfig) ([]Iteration, error) {
	out := make([]Iteration, len(iters))
	opts := entity.Options{StarFallback: cfg.UseStarFallback()}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerCount())
	for i, n := range iters {
		i, n := i, n
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			snap, err := entity.Build(GroupFor(dir, n, cfg), opts)
			if err != nil {
				logrus.Warnf("iteration %d skipped: %v", n, err)
			}
			out[i] = Iteration{Number: n, Snapshot: snap, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Number < out[b].Number })
	return out, nil
}

// Distances returns the topology change of each iteration against the one
// numbered immediately before it. The first iteration of the sequence gets
// the zero distance; an iteration whose predecessor is absent, failed or
// lacks a dump gets none.
func Distances(its []Iteration) map[int]fst.Optional[topology.Distance] {
	out := make(map[int]fst.Optional[topology.Distance], len(its))
	byNumber := make(map[int]Iteration, len(its))
	for _, it := range its {
		byNumber[it.Number] = it
	}
	for k, it := range its {
		if it.Err != nil {
			out[it.Number] = fst.None[topology.Distance]()
			continue
		}
		if k == 0 {
			out[it.Number] = fst.Some(topology.Distance{})
			continue
		}
		prev, ok := byNumber[it.Number-1]
		if !ok || prev.Err != nil || lacksDump(prev.Snapshot) || lacksDump(it.Snapshot) {
			out[it.Number] = fst.None[topology.Distance]()
			continue
		}
		out[it.Number] = fst.Some(topology.Diff(fst.Some(prev.Snapshot.ActiveEdges), it.Snapshot.ActiveEdges, positions(it.Snapshot)))
	}
	return out
}

func lacksDump(s *fst.Snapshot) bool {
	for _, m := range s.MissingInputs {
		if m == string(fst.FileDump) {
			return true
		}
	}
	return false
}

func positions(s *fst.Snapshot) fst.Positions {
	if len(s.Positions) > 0 {
		return s.Positions
	}
	return fst.PositionsOf(s.Terminals)
}

// Rows builds one summary row per iteration, distances included.
func Rows(its []Iteration, cfg *fst.AnalysisConfig) []report.Row {
	dist := Distances(its)
	rows := make([]report.Row, len(its))
	for i, it := range its {
		if it.Err != nil {
			rows[i] = report.FailedRow(it.Number, it.Err)
			continue
		}
		rows[i] = report.NewRow(it.Snapshot, cfg)
		rows[i].Topology = dist[it.Number]
	}
	return rows
}

// WriteAnalysis writes the analysis file of one extracted iteration and
// returns its path.
func WriteAnalysis(dir string, it Iteration, dist fst.Optional[topology.Distance], cfg *fst.AnalysisConfig) (string, error) {
	if it.Err != nil {
		return "", fmt.Errorf("iteration %d: %w", it.Number, it.Err)
	}
	var buf bytes.Buffer
	if err := report.WriteIteration(&buf, it.Snapshot, cfg, dist); err != nil {
		return "", err
	}
	path := filepath.Join(dir, cfg.FileName(fst.FileAnalysis, it.Number))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteSummary writes the cross-iteration summary file and returns its path.
func WriteSummary(dir string, its []Iteration, cfg *fst.AnalysisConfig) (string, error) {
	var buf bytes.Buffer
	if err := report.WriteSummary(&buf, Rows(its, cfg)); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fst.SummaryFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Run discovers, extracts and writes every report for dir. Per-iteration
// analysis files are written only when perIteration is set.
func Run(ctx context.Context, dir string, cfg *fst.AnalysisConfig, perIteration bool) ([]Iteration, error) {
	iters, err := Discover(dir, cfg)
	if err != nil {
		return nil, err
	}
	if len(iters) == 0 {
		return nil, fmt.Errorf("no %s files in %s", cfg.Template(fst.FileSolution), dir)
	}
	its, err := Extract(ctx, dir, iters, cfg)
	if err != nil {
		return nil, err
	}
	if perIteration {
		dist := Distances(its)
		for _, it := range its {
			if it.Err != nil {
				continue
			}
			if _, err := WriteAnalysis(dir, it, dist[it.Number], cfg); err != nil {
				return its, err
			}
		}
	}
	if _, err := WriteSummary(dir, its, cfg); err != nil {
		return its, err
	}
	return its, nil
}
