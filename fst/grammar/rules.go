package grammar

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/steiner-battery/fstscope/fst"
)

// tok captures one value token. It is deliberately loose so that a line whose
// shape matches but whose value is not a number surfaces as a ParseError
// instead of silently falling through to the next rule.
const tok = `([^\s,;()<>%\[\]]+)`

// cell skips the markup between a bold label and its table cell value.
const cell = `\s*(?:</td>\s*<td[^>]*>)?\s*`

// Rule recognizes one record class. Rules hold no state between lines.
type Rule struct {
	Class Class
	match func(line string) (Record, bool, error)
}

// Match applies the rule to a single line. ok is false when the line does not
// have the rule's shape. A non-nil error means the shape matched but a field
// failed numeric conversion.
func (r Rule) Match(line string) (rec Record, ok bool, err error) {
	return r.match(line)
}

// RuleSet is an ordered list of rules; the first match wins.
type RuleSet []Rule

// Classes lists the classes in evaluation order.
func (rs RuleSet) Classes() []Class {
	out := make([]Class, len(rs))
	for i, r := range rs {
		out[i] = r.Class
	}
	return out
}

// fieldParser converts regex submatches, remembering the first failure.
type fieldParser struct {
	class Class
	err   *ParseError
}

func (p *fieldParser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = &ParseError{Class: p.class, Token: s, Err: err}
	}
	return v
}

func (p *fieldParser) int(s string) int {
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil && p.err == nil {
		p.err = &ParseError{Class: p.class, Token: s, Err: err}
	}
	return v
}

// amount reads a comma-grouped quantity and rounds a decimal one.
func (p *fieldParser) amount(s string) int {
	clean := strings.ReplaceAll(s, ",", "")
	if v, err := strconv.Atoi(clean); err == nil {
		return v
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		if p.err == nil {
			p.err = &ParseError{Class: p.class, Token: s, Err: err}
		}
		return 0
	}
	return int(math.Round(v))
}

func (p *fieldParser) result(rec Record) (Record, bool, error) {
	if p.err != nil {
		return nil, true, p.err
	}
	return rec, true, nil
}

// regexRule builds a rule from a pattern and a builder over its submatches.
// guard, when non-empty, is a cheap substring test run before the regex.
func regexRule(class Class, guard, pattern string, build func(p *fieldParser, m []string) Record) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Class: class,
		match: func(line string) (Record, bool, error) {
			if guard != "" && !strings.Contains(line, guard) {
				return nil, false, nil
			}
			m := re.FindStringSubmatch(line)
			if m == nil {
				return nil, false, nil
			}
			p := &fieldParser{class: class}
			rec := build(p, m)
			return p.result(rec)
		},
	}
}

var (
	terminalBatteryRule = regexRule(ClassTerminalBattery, "Terminal",
		`Terminal\s+(\d+)\s+battery\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return TerminalBattery{Index: p.int(m[1]), Battery: p.float(m[2])}
		})

	budgetEnvRule = regexRule(ClassBudgetEnvLimit, "environment budget",
		`Using environment budget\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return BudgetEnvLimit{Value: p.float(m[1])}
		})

	budgetLimitRule = regexRule(ClassBudgetLimit, "Budget limit",
		`Budget limit\s*:\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return BudgetLimit{Value: p.float(m[1])}
		})

	maxTreeCostRule = regexRule(ClassMaxTreeCost, "max_tree_cost",
		`BUDGET:.*\bmax_tree_cost\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return MaxTreeCost{Value: p.float(m[1])}
		})

	budgetFormulaRule = regexRule(ClassBudgetConstraintFormula, "Constraint",
		`Constraint:.*\(\s*(?:norm_cost|normalized_tree_cost)\s*\*\s*`+tok+`\s*\)\s*\*\s*x\[i\]\s*(?:≤|<=)\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return BudgetConstraintFormula{ScaleFactor: p.int(m[1]), BudgetRHS: p.int(m[2])}
		})

	normalizationRule = regexRule(ClassNormalization, "NORMALIZATION",
		`NORMALIZATION:\s*max_tree_cost\s*=\s*`+tok+`\s*,\s*max_battery_cost\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return Normalization{MaxTreeCost: p.float(m[1]), MaxBatteryCost: p.float(m[2])}
		})

	alphaRule = regexRule(ClassAlphaWeight, "alpha",
		`\balpha\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return AlphaWeight{Value: p.float(m[1])}
		})

	betaRule = regexRule(ClassBetaWeight, "beta",
		`\bbeta\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return BetaWeight{Value: p.float(m[1])}
		})

	scaledObjectiveRule = regexRule(ClassFstObjective, "OBJ[",
		`OBJ\[(\d+)\]:\s*tree\s*=\s*`+tok+`\s*\(scaled\s*=\s*`+tok+`\)\s*,\s*battery_sum_cost\s*=\s*`+tok+`\s*,\s*obj\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			return FstObjective{FstID: p.int(m[1]), Cost: fst.FstCost{
				TreeRaw:     p.float(m[2]),
				TreeScaled:  p.float(m[3]),
				BatteryCost: p.float(m[4]),
				Objective:   p.float(m[5]),
				Style:       fst.StyleScaled,
			}}
		})

	combinedObjectiveRule = regexRule(ClassFstObjective, "FST",
		`OBJ:\s*FST\s+(\d+)\s*:\s*tree_cost\s*=\s*`+tok+`\s*,\s*battery_cost\s*=\s*`+tok+`\s*,\s*combined\s*=\s*`+tok,
		func(p *fieldParser, m []string) Record {
			tree := p.float(m[2])
			return FstObjective{FstID: p.int(m[1]), Cost: fst.FstCost{
				TreeRaw:     tree,
				TreeScaled:  tree,
				BatteryCost: p.float(m[3]),
				Objective:   p.float(m[4]),
				Style:       fst.StyleCombined,
			}}
		})

	slackIndexRe = regexp.MustCompile(`not_covered\[(\d+)\]\s*=\s*` + tok)

	slackRule = Rule{
		Class: ClassSlackVariable,
		match: func(line string) (Record, bool, error) {
			if !strings.Contains(line, "not_covered") {
				return nil, false, nil
			}
			m := slackIndexRe.FindStringSubmatch(line)
			if m == nil {
				return SlackVariable{}, true, nil
			}
			p := &fieldParser{class: ClassSlackVariable}
			rec := SlackVariable{Index: fst.Some(p.int(m[1])), Value: fst.Some(p.float(m[2]))}
			return p.result(rec)
		},
	}

	lpAssignRe = regexp.MustCompile(`\bx\[(\d+)\]\s*=\s*` + tok)

	lpAssignRule = Rule{
		Class: ClassLpVariableAssignment,
		match: func(line string) (Record, bool, error) {
			m := lpAssignRe.FindStringSubmatch(line)
			if m == nil {
				return nil, false, nil
			}
			p := &fieldParser{class: ClassLpVariableAssignment}
			rec := LpVariableAssignment{
				FstID:  p.int(m[1]),
				Value:  p.float(m[2]),
				Tagged: strings.Contains(line, "LP_VARS"),
			}
			return p.result(rec)
		},
	}

	lpBlockRule = Rule{
		Class: ClassLpBlockStart,
		match: func(line string) (Record, bool, error) {
			if !strings.Contains(line, "LP_VARS") {
				return nil, false, nil
			}
			return LpBlockStart{}, true, nil
		},
	}

	solutionFstRe = regexp.MustCompile(`^\s*%\s*fs(\d+)\s*:(.*)$`)

	// solutionFstRule reads terminal indices up to the first token that is not
	// an integer; the plot dump appends Steiner point coordinates after them.
	solutionFstRule = Rule{
		Class: ClassSolutionFstTerminals,
		match: func(line string) (Record, bool, error) {
			m := solutionFstRe.FindStringSubmatch(line)
			if m == nil {
				return nil, false, nil
			}
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, true, &ParseError{Class: ClassSolutionFstTerminals, Token: m[1], Err: err}
			}
			var terms []int
			for _, f := range strings.Fields(m[2]) {
				v, err := strconv.Atoi(f)
				if err != nil {
					break
				}
				terms = append(terms, v)
			}
			return SolutionFstTerminals{FstID: id, Terminals: terms}, true, nil
		},
	}

	// terminalCoordinateRule accepts any non-comment line with at least two
	// whitespace-separated fields. A third field, when present, is the battery.
	terminalCoordinateRule = Rule{
		Class: ClassTerminalCoordinate,
		match: func(line string) (Record, bool, error) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				return nil, false, nil
			}
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				return nil, false, nil
			}
			p := &fieldParser{class: ClassTerminalCoordinate}
			rec := TerminalCoordinate{X: p.float(fields[0]), Y: p.float(fields[1])}
			if len(fields) >= 3 {
				rec.Battery = fst.Some(p.float(fields[2]))
			}
			return p.result(rec)
		},
	}

	vizMipGapRule = regexRule(ClassVizMipGap, "MIP Gap",
		`MIP Gap:</strong>`+cell+tok+`%\s*\(\s*`+tok+`\s*\)`,
		func(p *fieldParser, m []string) Record {
			return VizMipGap{Percent: p.float(m[1]), Decimal: p.float(m[2])}
		})

	vizTotalCostRule = regexRule(ClassVizTotalCost, "Total Cost",
		`Total Cost:</strong>`+cell+`([^\s<]+)`,
		func(p *fieldParser, m []string) Record {
			return VizTotalCost{Value: p.float(strings.ReplaceAll(m[1], ",", ""))}
		})

	vizCoveredRule = regexRule(ClassVizCoverage, "Covered Terminals",
		`<strong>Covered Terminals:</strong>`+cell+tok,
		func(p *fieldParser, m []string) Record {
			return VizCoverage{Covered: fst.Some(p.int(m[1]))}
		})

	vizUncoveredRule = regexRule(ClassVizCoverage, "Uncovered Terminals",
		`<strong>Uncovered Terminals:</strong>`+cell+tok,
		func(p *fieldParser, m []string) Record {
			return VizCoverage{Uncovered: fst.Some(p.int(m[1]))}
		})

	vizCoverageRateRule = regexRule(ClassVizCoverage, "Coverage Rate",
		`<strong>Coverage Rate:</strong>`+cell+tok+`%`,
		func(p *fieldParser, m []string) Record {
			return VizCoverage{RatePercent: fst.Some(p.float(m[1]))}
		})

	vizSelectionRule = regexRule(ClassVizFstSelection, "Selected FSTs",
		`Selected FSTs:</strong>`+cell+tok+`\s+of\s+`+tok,
		func(p *fieldParser, m []string) Record {
			return VizFstSelection{Selected: p.int(m[1]), Total: p.int(m[2])}
		})

	vizBudgetRule = regexRule(ClassVizBudgetUsage, "Tree costs",
		`Tree costs\s*\(\s*([^()\s]+)\s*\)\s*\S+\s*Budget\s*\(\s*([^()\s]+)\s*\)`,
		func(p *fieldParser, m []string) Record {
			return VizBudgetUsage{Used: p.amount(m[1]), Total: p.amount(m[2])}
		})
)

// TerminalsRules recognizes the lines of a terminals file.
var TerminalsRules = RuleSet{terminalCoordinateRule}

// SolutionRules recognizes the solver's solution log. Slack lines are tried
// before assignments so that not_covered[j] never reads as an FST variable.
var SolutionRules = RuleSet{
	slackRule,
	lpAssignRule,
	lpBlockRule,
	scaledObjectiveRule,
	combinedObjectiveRule,
	terminalBatteryRule,
	budgetEnvRule,
	budgetLimitRule,
	maxTreeCostRule,
	budgetFormulaRule,
	normalizationRule,
	solutionFstRule,
}

// WeightRules are matched on every solution log line alongside
// SolutionRules. The solver prints alpha and beta on shared lines and on
// slack summaries, so each weight matches independently of how the line is
// classed.
var WeightRules = RuleSet{
	alphaRule,
	betaRule,
}

// VisualizationRules recognizes fields of the HTML visualization.
var VisualizationRules = RuleSet{
	vizMipGapRule,
	vizTotalCostRule,
	vizCoveredRule,
	vizUncoveredRule,
	vizCoverageRateRule,
	vizSelectionRule,
	vizBudgetRule,
}
