// Package regions loads circRNA info files and BED region files and
// classifies circles by differential expression.
package regions

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/leefowlercu/cymirs/internal/fsutil"
)

// Strands.
const (
	StrandPlus    = "+"
	StrandMinus   = "-"
	StrandUnknown = "."
)

// Interval is a region of a chromosome. Start and End are 0-based and
// half-open, [Start, End), as in BED.
type Interval struct {
	Chrom  string
	Start  int64
	End    int64
	Name   string
	Strand string
}

// Len returns the number of bases covered by the interval.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// Circle is one row of a circRNA info file.
type Circle struct {
	ID     string
	GeneID string
	Interval
	// Reg is the fold change. NaN means undefined.
	Reg    float64
	PValue float64
}

// ParseError reports a malformed line in an input file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s @ line %d; %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const circColumns = 8

// LoadCircFile reads a tab-separated circRNA info file with the columns
// circ_id, gene_id, chrom, start, end, strand, reg and p-value.
func LoadCircFile(path string) ([]Circle, error) {
	var circles []Circle
	err := scanFile(path, func(lnum int, fields []string) error {
		c, err := parseCircle(fields)
		if err != nil {
			return err
		}
		circles = append(circles, c)
		return nil
	})
	return circles, err
}

// LoadRegionFile reads a BED file with at least six columns. Track, browser
// and comment lines are skipped.
func LoadRegionFile(path string) ([]Interval, error) {
	var intervals []Interval
	err := scanFile(path, func(lnum int, fields []string) error {
		if isBEDHeader(fields[0]) {
			return nil
		}
		if len(fields) < 6 {
			return fmt.Errorf("expected at least 6 columns, got %d", len(fields))
		}
		iv, err := parseInterval(fields[0], fields[1], fields[2], fields[5])
		if err != nil {
			return err
		}
		iv.Name = fields[3]
		intervals = append(intervals, iv)
		return nil
	})
	return intervals, err
}

// scanFile calls fn with the tab-separated fields of every non-blank line
// of path. Errors from fn are wrapped with the line number.
func scanFile(path string, fn func(lnum int, fields []string) error) error {
	rc, err := fsutil.OpenMaybeGzip(path)
	if err != nil {
		return fmt.Errorf("failed to open %s; %w", path, err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lnum := 0
	for scanner.Scan() {
		lnum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lnum, strings.Split(line, "\t")); err != nil {
			return &ParseError{Path: path, Line: lnum, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s; %w", path, err)
	}
	return nil
}

func isBEDHeader(first string) bool {
	return strings.HasPrefix(first, "#") ||
		strings.HasPrefix(first, "track") ||
		strings.HasPrefix(first, "browser")
}

func parseCircle(fields []string) (Circle, error) {
	if len(fields) != circColumns {
		return Circle{}, fmt.Errorf("expected %d columns, got %d", circColumns, len(fields))
	}

	iv, err := parseInterval(fields[2], fields[3], fields[4], fields[5])
	if err != nil {
		return Circle{}, err
	}

	reg, err := parseReg(fields[6])
	if err != nil {
		return Circle{}, err
	}

	p, err := strconv.ParseFloat(strings.TrimSpace(fields[7]), 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return Circle{}, fmt.Errorf("invalid p-value %q", fields[7])
	}

	return Circle{
		ID:       strings.TrimSpace(fields[0]),
		GeneID:   strings.TrimSpace(fields[1]),
		Interval: iv,
		Reg:      reg,
		PValue:   p,
	}, nil
}

func parseInterval(chrom, start, end, strand string) (Interval, error) {
	chrom = strings.TrimSpace(chrom)
	if chrom == "" {
		return Interval{}, fmt.Errorf("missing chromosome")
	}

	s, err := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
	if err != nil || s < 0 {
		return Interval{}, fmt.Errorf("invalid start %q", start)
	}
	e, err := strconv.ParseInt(strings.TrimSpace(end), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid end %q", end)
	}
	if e <= s {
		return Interval{}, fmt.Errorf("end %d must be greater than start %d", e, s)
	}

	strand = strings.TrimSpace(strand)
	switch strand {
	case StrandPlus, StrandMinus, StrandUnknown:
	default:
		return Interval{}, fmt.Errorf("invalid strand %q", strand)
	}

	return Interval{Chrom: chrom, Start: s, End: e, Strand: strand}, nil
}

// parseReg parses a fold change. The undefined markers na, NA, inf and INF
// all yield NaN.
func parseReg(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "na", "NA", "inf", "INF":
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid reg %q", s)
	}
	return v, nil
}

// WriteBED writes intervals as six-column BED. Intervals without a name are
// written with ".".
func WriteBED(w io.Writer, intervals []Interval) error {
	bw := bufio.NewWriter(w)
	for _, iv := range intervals {
		name := iv.Name
		if name == "" {
			name = "."
		}
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t0\t%s\n", iv.Chrom, iv.Start, iv.End, name, iv.Strand); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Intervals returns the intervals of circles, named by circle id.
func Intervals(circles []Circle) []Interval {
	out := make([]Interval, 0, len(circles))
	for _, c := range circles {
		iv := c.Interval
		iv.Name = c.ID
		out = append(out, iv)
	}
	return out
}
