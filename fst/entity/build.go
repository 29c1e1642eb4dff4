package entity

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/topology"
)

// ErrMissingFile is wrapped when the primary input of an iteration is absent.
var ErrMissingFile = errors.New("missing input file")

// Group names the files of one iteration. An empty path means the file is
// not part of the group.
type Group struct {
	Iteration     int
	Terminals     string
	Dump          string
	Solution      string
	Visualization string
}

// Options tune snapshot construction.
type Options struct {
	StarFallback bool
}

// Build extracts one iteration. Only a missing solution log is fatal for the
// iteration; any other absent or unreadable file leaves its fields empty and
// is recorded in MissingInputs.
func Build(g Group, opts Options) (*fst.Snapshot, error) {
	logger := logrus.WithField("iteration", g.Iteration)
	snap := &fst.Snapshot{
		Iteration:   g.Iteration,
		DumpEdges:   fst.NewEdgeSet(),
		ActiveEdges: fst.NewEdgeSet(),
	}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		snap.Warnings = append(snap.Warnings, msg)
		logger.Warn(msg)
	}

	var sol *SolutionLog
	err := withFile(g.Solution, func(r io.Reader) error {
		var err error
		sol, err = ParseSolution(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("iteration %d: solution log: %w", g.Iteration, err)
	}
	for _, f := range sol.Failures {
		logger.Debugf("solution log: %v", f)
	}
	snap.Budget = sol.Budget
	snap.Assignments = sol.Assignments
	snap.SolutionFSTs = sol.SolutionFSTs

	missing := func(kind fst.FileKind, err error) {
		snap.MissingInputs = append(snap.MissingInputs, string(kind))
		warn("%s: %v", kind, err)
	}

	var tf *TerminalsFile
	if err := withFile(g.Terminals, func(r io.Reader) error {
		var err error
		tf, err = ParseTerminals(r)
		return err
	}); err != nil {
		missing(fst.FileTerminals, err)
	}
	if tf != nil {
		snap.Positions = make(fst.Positions, len(tf.Coordinates))
		for i, p := range tf.Coordinates {
			snap.Positions[i] = p
		}
		if tf.HasLevels() {
			snap.Terminals, snap.Alignment = ZipLevels(tf.Coordinates, tf.Levels)
		} else {
			snap.Terminals, snap.Alignment = ZipTerminals(tf.Coordinates, sol.Batteries)
		}
		if snap.Alignment.Faulty() {
			warn("alignment fault: %d coordinates, %d battery levels; %d terminals kept",
				snap.Alignment.Coordinates, snap.Alignment.Batteries, len(snap.Terminals))
		}
	}

	layout := topology.Layout{StarFallback: opts.StarFallback}
	if n := len(sol.Costs); n > 0 {
		layout.FSTCount = fst.Some(n)
	}
	var dump *topology.Dump
	if err := withFile(g.Dump, func(r io.Reader) error {
		var err error
		dump, err = topology.ParseDump(r, layout)
		return err
	}); err != nil {
		missing(fst.FileDump, err)
	}
	if dump != nil {
		snap.DumpEdges = dump.Edges
		snap.EdgeBoundary = string(dump.Boundary)
		snap.Warnings = append(snap.Warnings, dump.Warnings...)
	}
	snap.FSTs = mergeFSTs(dump, sol)

	if err := withFile(g.Visualization, func(r io.Reader) error {
		var err error
		snap.Objective, _, err = ParseVisualization(r)
		return err
	}); err != nil {
		missing(fst.FileVisualization, err)
	}

	snap.Selection = chooseSelection(snap, logger)
	snap.ActiveEdges = topology.Active(snap.DumpEdges, snap.FSTs, snap.Selection)
	return snap, nil
}

// withFile opens path and hands it to fn. An empty path reads as missing.
func withFile(path string, fn func(io.Reader) error) error {
	if path == "" {
		return fmt.Errorf("no path: %w", ErrMissingFile)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrMissingFile)
		}
		return err
	}
	defer f.Close()
	return fn(f)
}

// mergeFSTs attaches costs to the dump definitions by id. Without a dump the
// records come from the cost lines, with terminal lists from "% fs" lines.
func mergeFSTs(dump *topology.Dump, sol *SolutionLog) []fst.FstRecord {
	var out []fst.FstRecord
	if dump != nil && len(dump.FSTs) > 0 {
		out = make([]fst.FstRecord, len(dump.FSTs))
		copy(out, dump.FSTs)
	} else {
		ids := sol.ObjectiveIDs()
		for id := range sol.SolutionFSTs {
			if _, ok := sol.Costs[id]; !ok {
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		for _, id := range ids {
			out = append(out, fst.FstRecord{ID: id, Terminals: sol.SolutionFSTs[id]})
		}
	}
	for i := range out {
		if c, ok := sol.Costs[out[i].ID]; ok {
			out[i].Cost = fst.Some(c)
		}
	}
	return out
}

// chooseSelection prefers the solver's LP assignment and falls back to the
// feasibility rule when the log has no LP_VARS block.
func chooseSelection(snap *fst.Snapshot, logger *logrus.Entry) fst.Selection {
	if len(snap.Assignments) > 0 {
		return fst.SelectionFromLP(snap.Assignments)
	}
	rec, err := fst.Recommend(snap.FSTs, snap.Budget)
	if err != nil {
		logger.Debugf("no selection: %v", err)
		return fst.NewSelection(fst.SourceNone)
	}
	if !rec.Feasible {
		logger.Infof("no feasible FST within budget %.3f", rec.Budget)
		return fst.NewSelection(fst.SourceNone)
	}
	return rec.Selection()
}
