// Package entity turns the records of one iteration's files into typed
// entities and assembles them into an fst.Snapshot.
package entity

import (
	"fmt"
	"io"

	"github.com/steiner-battery/fstscope/fst"
	"github.com/steiner-battery/fstscope/fst/grammar"
)

// ZipTerminals pairs the i-th coordinate with the i-th battery level. On a
// length mismatch the longer sequence is truncated and the returned
// Alignment reports the fault.
func ZipTerminals(coords []fst.Point, batteries []float64) ([]fst.Terminal, fst.Alignment) {
	align := fst.Alignment{Coordinates: len(coords), Batteries: len(batteries)}
	n := min(len(coords), len(batteries))
	out := make([]fst.Terminal, n)
	for i := 0; i < n; i++ {
		out[i] = fst.Terminal{Index: i, Position: coords[i], Battery: batteries[i]}
	}
	return out, align
}

// ZipLevels pairs each coordinate with the battery level printed on the same
// line. Lines without a level are left out and keep their index gap; the
// returned Alignment then counts fewer batteries than coordinates.
func ZipLevels(coords []fst.Point, levels []fst.Optional[float64]) ([]fst.Terminal, fst.Alignment) {
	align := fst.Alignment{Coordinates: len(coords)}
	var out []fst.Terminal
	for i, p := range coords {
		if i >= len(levels) {
			break
		}
		b, ok := levels[i].Get()
		if !ok {
			continue
		}
		out = append(out, fst.Terminal{Index: i, Position: p, Battery: b})
		align.Batteries++
	}
	return out, align
}

// TerminalsFile is the parsed content of a terminals file.
type TerminalsFile struct {
	Coordinates []fst.Point
	// Levels holds the third column of each coordinate line, when present.
	Levels   []fst.Optional[float64]
	Failures []*grammar.ParseError
}

// HasLevels reports whether any line carried a battery level.
func (tf *TerminalsFile) HasLevels() bool {
	for _, l := range tf.Levels {
		if l.IsSet() {
			return true
		}
	}
	return false
}

// ParseTerminals reads "x y [battery ...]" lines in file order.
func ParseTerminals(r io.Reader) (*TerminalsFile, error) {
	res, err := grammar.Scan(r, grammar.TerminalsRules)
	if err != nil {
		return nil, fmt.Errorf("reading terminals: %w", err)
	}
	tf := &TerminalsFile{Failures: res.Failures}
	for _, c := range grammar.All[grammar.TerminalCoordinate](res) {
		tf.Coordinates = append(tf.Coordinates, fst.Point{X: c.X, Y: c.Y})
		tf.Levels = append(tf.Levels, c.Battery)
	}
	return tf, nil
}
