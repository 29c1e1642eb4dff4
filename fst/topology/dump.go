// Package topology reconstructs the edge sets of FST dumps and measures how
// the selected topology changes between iterations.
package topology

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/steiner-battery/fstscope/fst"
)

// Boundary says how the split between FST definitions and edges was found.
type Boundary string

const (
	// BoundaryCount means the caller supplied the number of definition lines.
	BoundaryCount Boundary = "fst-count"
	// BoundarySeparator means the dump carried an "# edges" line.
	BoundarySeparator Boundary = "separator"
	// BoundaryHeuristic means the first two-integer line started the edge block.
	// A leading 2-terminal FST is indistinguishable from an edge this way.
	BoundaryHeuristic Boundary = "heuristic"
	// BoundaryNone means the dump had no edge block.
	BoundaryNone Boundary = "none"
)

var separatorRe = regexp.MustCompile(`(?i)^\s*(#\s*)?edges\s*:?\s*$`)

// Layout tells ParseDump how to split a dump.
type Layout struct {
	// FSTCount is the number of definition lines, usually the number of
	// FstObjective records the solver printed for the same iteration.
	FSTCount fst.Optional[int]
	// StarFallback synthesizes each FST's star (first terminal to each other
	// terminal) when the dump has no edge block.
	StarFallback bool
}

// Dump is a parsed FST dump file.
type Dump struct {
	FSTs        []fst.FstRecord
	Edges       fst.EdgeSet
	Boundary    Boundary
	Synthesized bool // Edges were built by the star fallback
	Warnings    []string
}

func (d *Dump) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.Warnings = append(d.Warnings, msg)
	logrus.Warnf("fst dump: %s", msg)
}

type dumpLine struct {
	num    int
	tokens []int
	sep    bool
}

// ParseDumpFile opens path and parses it with ParseDump.
func ParseDumpFile(path string, layout Layout) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()
	d, err := ParseDump(f, layout)
	if err != nil {
		return nil, fmt.Errorf("parsing dump %s: %w", path, err)
	}
	return d, nil
}

// ParseDump reads the FST-definition block and the optional edge block.
// Definitions are numbered by line order from 0. Edge lines must hold
// exactly two integers; self-loops and malformed lines are skipped with a
// warning. The edge set does not depend on line order or duplicates.
func ParseDump(r io.Reader, layout Layout) (*Dump, error) {
	d := &Dump{Edges: fst.NewEdgeSet()}

	lines, err := readDumpLines(r, d)
	if err != nil {
		return nil, err
	}

	split := len(lines)
	d.Boundary = BoundaryNone
	if n, ok := layout.FSTCount.Get(); ok {
		d.Boundary = BoundaryCount
		split = countBoundary(lines, n)
	} else if i := separatorIndex(lines); i >= 0 {
		d.Boundary = BoundarySeparator
		split = i
	} else if i := heuristicIndex(lines); i >= 0 {
		d.Boundary = BoundaryHeuristic
		split = i
	}

	for _, l := range lines[:split] {
		if l.sep {
			continue
		}
		d.FSTs = append(d.FSTs, fst.FstRecord{ID: len(d.FSTs), Terminals: l.tokens})
	}
	if n, ok := layout.FSTCount.Get(); ok && len(d.FSTs) != n {
		d.warnf("expected %d FST definitions, found %d", n, len(d.FSTs))
	}

	for _, l := range lines[split:] {
		if l.sep {
			continue
		}
		if len(l.tokens) != 2 {
			d.warnf("line %d: edge line has %d tokens, want 2", l.num, len(l.tokens))
			continue
		}
		e, err := fst.NewEdge(l.tokens[0], l.tokens[1])
		if err != nil {
			d.warnf("line %d: %v", l.num, err)
			continue
		}
		d.Edges.Add(e)
	}

	if d.Edges.Len() == 0 {
		if layout.StarFallback && len(d.FSTs) > 0 {
			d.Edges = StarEdges(d.FSTs)
			d.Synthesized = true
			d.warnf("no edge lines; synthesized %d star edges", d.Edges.Len())
		} else {
			d.warnf("no edge lines")
		}
	}
	return d, nil
}

func readDumpLines(r io.Reader, d *Dump) ([]dumpLine, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []dumpLine
	num := 0
	for sc.Scan() {
		num++
		text := sc.Text()
		if separatorRe.MatchString(text) {
			lines = append(lines, dumpLine{num: num, sep: true})
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		tokens := make([]int, 0, len(fields))
		bad := ""
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				bad = f
				break
			}
			tokens = append(tokens, v)
		}
		if bad != "" {
			d.warnf("line %d: non-integer token %q", num, bad)
			continue
		}
		lines = append(lines, dumpLine{num: num, tokens: tokens})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading dump: %w", err)
	}
	return lines, nil
}

// countBoundary returns the index after the n-th definition line.
func countBoundary(lines []dumpLine, n int) int {
	seen := 0
	for i, l := range lines {
		if l.sep {
			continue
		}
		if seen == n {
			return i
		}
		seen++
	}
	return len(lines)
}

func separatorIndex(lines []dumpLine) int {
	for i, l := range lines {
		if l.sep {
			return i
		}
	}
	return -1
}

func heuristicIndex(lines []dumpLine) int {
	for i, l := range lines {
		if len(l.tokens) == 2 {
			return i
		}
	}
	return -1
}

// StarEdges connects the first terminal of every FST to each of its others.
func StarEdges(fsts []fst.FstRecord) fst.EdgeSet {
	out := fst.NewEdgeSet()
	for _, f := range fsts {
		if len(f.Terminals) < 2 {
			continue
		}
		hub := f.Terminals[0]
		for _, t := range f.Terminals[1:] {
			if e, err := fst.NewEdge(hub, t); err == nil {
				out.Add(e)
			}
		}
	}
	return out
}

// Active keeps the edges whose endpoints both belong to the terminal list of
// one selected FST. Selected ids without a definition contribute nothing.
func Active(edges fst.EdgeSet, fsts []fst.FstRecord, sel fst.Selection) fst.EdgeSet {
	byID := make(map[int][]int, len(fsts))
	for _, f := range fsts {
		byID[f.ID] = f.Terminals
	}
	out := fst.NewEdgeSet()
	for _, id := range sel.IDs {
		members := make(map[int]bool, len(byID[id]))
		for _, t := range byID[id] {
			members[t] = true
		}
		for e := range edges {
			if members[e.U] && members[e.V] {
				out.Add(e)
			}
		}
	}
	return out
}
