package analysis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"epireport/domain/table"
	"epireport/internal/coerce"
)

// Options names the derived columns and the label column position
type Options struct {
	LabelColumn       int
	TotalHeader       string
	CompositionHeader string
	ChiSquareHeader   string
	PValueHeader      string
}

// DefaultOptions returns the fixed derived-column headers of the report tables
func DefaultOptions() Options {
	return Options{
		LabelColumn:       0,
		TotalHeader:       "合计",
		CompositionHeader: "构成比(%)",
		ChiSquareHeader:   "χ²值",
		PValueHeader:      "P值",
	}
}

// Engine enriches category-count tables with totals, composition
// percentages, and an independence test
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// EnrichContingency enriches a table using the default options
func EnrichContingency(t *table.Table) *table.Table {
	return NewEngine(DefaultOptions()).Enrich(t)
}

// Enrich appends per-row totals and composition percentages, plus a
// chi-square test of independence when the table supports one. The
// statistic and p-value land on the first row only. Enrichment never
// fails: inputs the computation cannot serve are returned unmodified.
//
// The derived columns appear only under these conditions:
//   - fewer than 2 value columns: totals and composition only
//   - after dropping all-zero rows, fewer than 2 rows remain or the
//     remaining sum is not positive: totals and composition only
//   - a row or column marginal of the cleaned matrix is not positive
//     (the expected-frequency table would contain a zero): the input
//     is returned as-is, with no derived columns at all
func (e *Engine) Enrich(t *table.Table) *table.Table {
	if t == nil {
		return nil
	}
	valueCols := e.valueColumns(t)
	if len(valueCols) == 0 || t.RowCount() == 0 {
		return t
	}

	obs := make([][]float64, t.RowCount())
	rowTotals := make([]float64, t.RowCount())
	for r := range t.Rows {
		row := make([]float64, len(valueCols))
		for j, c := range valueCols {
			row[j] = coerce.Number(t.Cell(r, c))
		}
		obs[r] = row
		rowTotals[r] = sum(row)
	}
	grandTotal := sum(rowTotals)

	totals := make([]string, t.RowCount())
	compositions := make([]string, t.RowCount())
	for r, rowTotal := range rowTotals {
		totals[r] = strconv.FormatFloat(rowTotal, 'f', -1, 64)
		compositions[r] = e.composition(rowTotal, grandTotal)
	}

	var chiCells, pCells []string
	if len(valueCols) >= 2 {
		clean := dropZeroRows(obs)
		if len(clean) > 1 && sumMatrix(clean) > 0 {
			chi, df, ok := chiSquare(clean)
			if !ok {
				return t
			}
			chiCells = make([]string, t.RowCount())
			pCells = make([]string, t.RowCount())
			chiCells[0] = fmt.Sprintf("%.2f", chi)
			pCells[0] = formatPValue(pValue(chi, df))
		}
	}

	out := t.Clone()
	out.Headers = append(out.Headers, e.opts.TotalHeader, e.opts.CompositionHeader)
	if chiCells != nil {
		out.Headers = append(out.Headers, e.opts.ChiSquareHeader, e.opts.PValueHeader)
	}
	for r := range out.Rows {
		out.Rows[r] = append(out.Rows[r], totals[r], compositions[r])
		if chiCells != nil {
			out.Rows[r] = append(out.Rows[r], chiCells[r], pCells[r])
		}
	}
	return out
}

// valueColumns returns every column index except the label column
func (e *Engine) valueColumns(t *table.Table) []int {
	cols := make([]int, 0, t.ColumnCount())
	for i := 0; i < t.ColumnCount(); i++ {
		if i != e.opts.LabelColumn {
			cols = append(cols, i)
		}
	}
	return cols
}

func (e *Engine) composition(rowTotal, grandTotal float64) string {
	if grandTotal <= 0 {
		return "0.00"
	}
	pct, err := stats.Round(rowTotal/grandTotal*100, 2)
	if err != nil {
		return "0.00"
	}
	return strconv.FormatFloat(pct, 'f', 2, 64)
}

// chiSquare computes the Pearson statistic over the cleaned matrix,
// with the Yates continuity correction on 2x2 tables. ok is false when
// a marginal is not positive and the test is undefined.
func chiSquare(obs [][]float64) (chi float64, df int, ok bool) {
	r := len(obs)
	c := len(obs[0])
	rowSums := make([]float64, r)
	colSums := make([]float64, c)
	var n float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			rowSums[i] += obs[i][j]
			colSums[j] += obs[i][j]
			n += obs[i][j]
		}
	}
	for i := range rowSums {
		if rowSums[i] <= 0 {
			return 0, 0, false
		}
	}
	for j := range colSums {
		if colSums[j] <= 0 {
			return 0, 0, false
		}
	}

	is2x2 := r == 2 && c == 2
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			exp := rowSums[i] * colSums[j] / n
			o := obs[i][j]

			if is2x2 {
				// Yates' continuity correction for 2x2 tables.
				diff := math.Abs(o-exp) - 0.5
				if diff < 0 {
					diff = 0
				}
				chi += (diff * diff) / exp
				continue
			}

			d := o - exp
			chi += (d * d) / exp
		}
	}
	return chi, (r - 1) * (c - 1), true
}

// pValue is the upper tail of the chi-squared distribution
func pValue(chi float64, df int) float64 {
	chiDist := distuv.ChiSquared{K: float64(df)}
	return 1 - chiDist.CDF(chi)
}

func formatPValue(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

// dropZeroRows removes rows whose every cell is zero
func dropZeroRows(obs [][]float64) [][]float64 {
	clean := make([][]float64, 0, len(obs))
	for _, row := range obs {
		allZero := true
		for _, v := range row {
			if v != 0 {
				allZero = false
				break
			}
		}
		if !allZero {
			clean = append(clean, row)
		}
	}
	return clean
}

func sum(vals []float64) float64 {
	s, err := stats.Sum(vals)
	if err != nil {
		return 0
	}
	return s
}

func sumMatrix(obs [][]float64) float64 {
	var s float64
	for _, row := range obs {
		s += sum(row)
	}
	return s
}
