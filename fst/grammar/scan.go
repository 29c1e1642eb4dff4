package grammar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single line; visualization files can put a whole
// table on one line.
const maxLineBytes = 16 * 1024 * 1024

// ErrParse is matched by every ParseError via errors.Is.
var ErrParse = errors.New("parse failure")

// ParseError reports a line whose shape matched a class but whose numeric
// field could not be converted. The line is skipped; parsing continues.
type ParseError struct {
	Class Class
	Line  int // 1-based; 0 when matched outside a scan
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: cannot parse %q: %v", e.Line, e.Class, e.Token, e.Err)
	}
	return fmt.Sprintf("%s: cannot parse %q: %v", e.Class, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) true for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Located is a record together with the line it came from.
type Located struct {
	Line   int
	Record Record
}

// ScanResult is the ordered output of one scan.
type ScanResult struct {
	Records  []Located
	Failures []*ParseError
	Lines    int
}

// MatchLine applies rules in order and returns the first match.
func MatchLine(line string, rules RuleSet) (Record, bool, error) {
	for _, r := range rules {
		rec, ok, err := r.Match(line)
		if ok {
			return rec, true, err
		}
	}
	return nil, false, nil
}

// add stores one match outcome. Only non-parse errors are returned.
func (res *ScanResult) add(rec Record, err error) error {
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = res.Lines
			res.Failures = append(res.Failures, pe)
			return nil
		}
		return err
	}
	res.Records = append(res.Records, Located{Line: res.Lines, Record: rec})
	return nil
}

// Scan classifies every line from r with the first matching rule, then adds
// a record for every overlay rule that also matches the line. Only read
// errors are returned; parse failures are collected in the result.
func Scan(r io.Reader, rules RuleSet, overlays ...RuleSet) (*ScanResult, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	res := &ScanResult{}
	for sc.Scan() {
		res.Lines++
		line := sc.Text()
		if rec, ok, err := MatchLine(line, rules); ok {
			if err := res.add(rec, err); err != nil {
				return res, err
			}
		}
		for _, overlay := range overlays {
			for _, rule := range overlay {
				rec, ok, err := rule.Match(line)
				if !ok {
					continue
				}
				if err := res.add(rec, err); err != nil {
					return res, err
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("scanning line %d: %w", res.Lines+1, err)
	}
	return res, nil
}

// ScanString is Scan over an in-memory document.
func ScanString(content string, rules RuleSet, overlays ...RuleSet) (*ScanResult, error) {
	return Scan(strings.NewReader(content), rules, overlays...)
}

// ScanMarkup scans an HTML document after breaking it at table-row
// boundaries, so that each field lands on its own logical line.
func ScanMarkup(content string, rules RuleSet) (*ScanResult, error) {
	return ScanString(strings.ReplaceAll(content, "</tr>", "</tr>\n"), rules)
}

// All returns the records of concrete type T in file order.
func All[T Record](res *ScanResult) []T {
	var out []T
	if res == nil {
		return out
	}
	for _, l := range res.Records {
		if v, ok := l.Record.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// First returns the earliest record of type T, if any.
func First[T Record](res *ScanResult) (T, bool) {
	all := All[T](res)
	if len(all) == 0 {
		var zero T
		return zero, false
	}
	return all[0], true
}

// Last returns the final record of type T, if any.
func Last[T Record](res *ScanResult) (T, bool) {
	all := All[T](res)
	if len(all) == 0 {
		var zero T
		return zero, false
	}
	return all[len(all)-1], true
}
