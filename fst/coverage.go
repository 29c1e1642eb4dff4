package fst

// Coverage partitions a run's terminals by whether a selected FST spans them.
type Coverage struct {
	Covered   []int
	Uncovered []int
}

// CoverageOf unions the terminal lists of the selected FSTs. Terminal lists
// come from the dump definitions; ids missing there fall back to the
// "% fs" lines of the solution log.
func CoverageOf(terminalCount int, fsts []FstRecord, sel Selection, fallback map[int][]int) Coverage {
	byID := make(map[int][]int, len(fsts))
	for _, f := range fsts {
		byID[f.ID] = f.Terminals
	}
	covered := make([]bool, terminalCount)
	for _, id := range sel.IDs {
		terms, ok := byID[id]
		if !ok || len(terms) == 0 {
			terms = fallback[id]
		}
		for _, t := range terms {
			if t >= 0 && t < terminalCount {
				covered[t] = true
			}
		}
	}

	var c Coverage
	for i, ok := range covered {
		if ok {
			c.Covered = append(c.Covered, i)
		} else {
			c.Uncovered = append(c.Uncovered, i)
		}
	}
	return c
}

// CoverageRate returns covered / (covered + uncovered) * 100, absent when both are zero.
func CoverageRate(covered, uncovered int) Optional[float64] {
	total := covered + uncovered
	if total <= 0 {
		return None[float64]()
	}
	return Some(float64(covered) / float64(total) * 100)
}
