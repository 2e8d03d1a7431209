package agebin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"epireport/domain/table"
	"epireport/internal/coerce"
)

// Options defines the binning grid and the header tokens it keys on
type Options struct {
	BinWidth      int
	MaxAge        int // exclusive upper bound of the standard grid
	OverflowLabel string
	GroupHeader   string
	CountHeader   string
	AgeToken      string
	GroupedToken  string
	SexToken      string
}

// DefaultOptions returns the 5-year grid over [0,100) used by the reports
func DefaultOptions() Options {
	return Options{
		BinWidth:      5,
		MaxAge:        100,
		OverflowLabel: "100+",
		GroupHeader:   "年龄组",
		CountHeader:   "发病数",
		AgeToken:      "年龄",
		GroupedToken:  "组",
		SexToken:      "性",
	}
}

// Binner converts a per-case line list with a raw age column into a
// fixed-width age-group count table
type Binner struct {
	opts Options
}

// New creates a binner with the given options
func New(opts Options) *Binner {
	return &Binner{opts: opts}
}

// Bin aggregates using the default options
func Bin(t *table.Table) *table.Table {
	return New(DefaultOptions()).Bin(t)
}

// Bin locates the raw age column, assigns each case row to a 5-year bin
// ([0,100) left-inclusive, one overflow bin above), and counts cases per
// bin. When a sex column exists the counts are cross-tabulated into one
// column per observed sex category, in lexicographic order. Every bin of
// the grid appears in the output, zero-filled, ascending. A table with
// no raw age column (including an already-grouped one) passes through
// unchanged. Rows whose age does not parse, or is negative, are dropped.
func (b *Binner) Bin(t *table.Table) *table.Table {
	ageCol := b.findAgeColumn(t)
	if ageCol < 0 {
		return t
	}
	sexCol := t.HeaderContaining(b.opts.SexToken)
	labels := b.labels()

	if sexCol < 0 {
		counts := make(map[string]int, len(labels))
		for r := range t.Rows {
			label, ok := b.binLabel(t.Cell(r, ageCol))
			if !ok {
				continue
			}
			counts[label]++
		}
		rows := make([][]string, len(labels))
		for i, label := range labels {
			rows[i] = []string{label, strconv.Itoa(counts[label])}
		}
		return table.New(t.Name, []string{b.opts.GroupHeader, b.opts.CountHeader}, rows)
	}

	counts := make(map[string]map[string]int, len(labels))
	seen := make(map[string]bool)
	for r := range t.Rows {
		label, ok := b.binLabel(t.Cell(r, ageCol))
		if !ok {
			continue
		}
		sex := strings.TrimSpace(t.Cell(r, sexCol))
		if sex == "" {
			continue
		}
		if counts[label] == nil {
			counts[label] = make(map[string]int)
		}
		counts[label][sex]++
		seen[sex] = true
	}

	categories := make([]string, 0, len(seen))
	for sex := range seen {
		categories = append(categories, sex)
	}
	sort.Strings(categories)

	headers := append([]string{b.opts.GroupHeader}, categories...)
	rows := make([][]string, len(labels))
	for i, label := range labels {
		row := make([]string, 0, len(headers))
		row = append(row, label)
		for _, sex := range categories {
			row = append(row, strconv.Itoa(counts[label][sex]))
		}
		rows[i] = row
	}
	return table.New(t.Name, headers, rows)
}

// findAgeColumn returns the first raw age column: header carries the age
// token without the grouped token
func (b *Binner) findAgeColumn(t *table.Table) int {
	for i, h := range t.Headers {
		if strings.Contains(h, b.opts.AgeToken) && !strings.Contains(h, b.opts.GroupedToken) {
			return i
		}
	}
	return -1
}

// binLabel maps one age cell to its bin label. ok is false for rows the
// grid cannot place: unparsable cells and negative ages.
func (b *Binner) binLabel(cell string) (string, bool) {
	age, ok := coerce.NumberOK(cell)
	if !ok || age < 0 {
		return "", false
	}
	if age >= float64(b.opts.MaxAge) {
		return b.opts.OverflowLabel, true
	}
	low := (int(age) / b.opts.BinWidth) * b.opts.BinWidth
	return fmt.Sprintf("%d-%d", low, low+b.opts.BinWidth-1), true
}

// labels returns the full grid in ascending order, overflow last
func (b *Binner) labels() []string {
	labels := make([]string, 0, b.opts.MaxAge/b.opts.BinWidth+1)
	for low := 0; low < b.opts.MaxAge; low += b.opts.BinWidth {
		labels = append(labels, fmt.Sprintf("%d-%d", low, low+b.opts.BinWidth-1))
	}
	return append(labels, b.opts.OverflowLabel)
}
