package report

import (
	"fmt"
	"strings"

	"epireport/domain/disease"
	"epireport/domain/table"
	"epireport/internal/coerce"
)

const (
	missingSummaryMessage = "No summary table has been ingested; the situation narrative cannot be generated."
	noCasesColumnMessage  = "The summary table has no recognizable case-count column; the situation narrative cannot be generated."
)

// Options configures the narrative
type Options struct {
	// Region is the display name in the overview sentence
	Region string
	// TopN is the ranking window per tier
	TopN int
}

// DefaultOptions returns the standard monthly-report settings
func DefaultOptions() Options {
	return Options{Region: "the district", TopN: 3}
}

// Generator turns the assembled data map into the situation narrative
type Generator struct {
	opts Options
}

// NewGenerator creates a generator with the given options
func NewGenerator(opts Options) *Generator {
	if opts.TopN <= 0 {
		opts.TopN = 3
	}
	if opts.Region == "" {
		opts.Region = "the district"
	}
	return &Generator{opts: opts}
}

// columns are the probed indexes into the summary table. The label is
// always the first column; -1 marks an absent column.
type columns struct {
	cases int
	mom   int
	yoy   int
}

type detailRow struct {
	Entry
	tier disease.Tier
}

// Generate produces the narrative in Markdown: an overview paragraph,
// then Class B and Class C paragraphs with ranked leading diseases.
// Missing inputs degrade to a placeholder message, never an error.
func (g *Generator) Generate(dm *table.DataMap) string {
	if dm == nil || dm.Summary == nil {
		return missingSummaryMessage
	}
	t := dm.Summary

	cols := probeColumns(t)
	if cols.cases < 0 {
		return noCasesColumnMessage
	}

	total, details := splitRows(t, cols)

	totalCases := 0.0
	momCell, yoyCell := "", ""
	if total != nil {
		totalCases = total.Cases
		momCell, yoyCell = total.MoM, total.YoY
	} else {
		for _, d := range details {
			totalCases += d.Cases
		}
	}
	reported := 0
	for _, d := range details {
		if d.Cases > 0 {
			reported++
		}
	}

	var b strings.Builder
	b.WriteString("### I. Recent Situation\n\n")
	b.WriteString("**(1) Notifiable Disease Reporting System**\n\n")
	fmt.Fprintf(&b,
		"1. **Overall**: %s reported **%d** notifiable diseases with **%d** cases this month. Compared with last month: %s; compared with the same period last year: %s.\n\n",
		g.opts.Region, reported, int(totalCases), FmtTrend(momCell), FmtTrend(yoyCell))

	b.WriteString(g.tierSection(2, disease.TierB, "Leading diseases by incidence", details))
	b.WriteString(g.tierSection(3, disease.TierC, "Predominant diseases", details))
	return b.String()
}

// tierSection builds one tier's paragraph. A tier with no rows reads
// "none reported"; a tier whose rows sum to zero keeps its counting
// sentence but ranks nothing.
func (g *Generator) tierSection(index int, tier disease.Tier, leadIn string, details []detailRow) string {
	var rows []Entry
	for _, d := range details {
		if d.tier == tier {
			rows = append(rows, d.Entry)
		}
	}
	if len(rows) == 0 {
		return fmt.Sprintf("%d. **%s infectious diseases**: none reported.\n\n", index, tier.DisplayName())
	}

	subtotal := 0.0
	reported := 0
	for _, r := range rows {
		subtotal += r.Cases
		if r.Cases > 0 {
			reported++
		}
	}
	text := "none reported"
	if subtotal > 0 {
		text = TopDiseases(rows, subtotal, g.opts.TopN)
	}
	return fmt.Sprintf(
		"%d. **%s infectious diseases**: **%d** diseases reported this month with **%d** cases in total. %s: **%s**.\n\n",
		index, tier.DisplayName(), reported, int(subtotal), leadIn, text)
}

// probeColumns finds the case-count and period-comparison columns.
// Export layouts vary, so the case column is probed from the most to
// the least specific header.
func probeColumns(t *table.Table) columns {
	c := columns{
		cases: -1,
		mom:   t.HeaderContaining("与上期比"),
		yoy:   t.HeaderContaining("与去年同期比"),
	}
	for _, probe := range []string{"本期发病数", "发病数", "本期"} {
		if i := t.HeaderContaining(probe); i >= 0 {
			c.cases = i
			break
		}
	}
	return c
}

// splitRows separates the aggregate row from the per-disease detail
// set. The first row whose label contains 合计 is the total; every
// such row is excluded from the details.
func splitRows(t *table.Table, cols columns) (*Entry, []detailRow) {
	var total *Entry
	var details []detailRow
	for i := range t.Rows {
		label := strings.TrimSpace(t.Cell(i, 0))
		e := Entry{
			Name:  label,
			Cases: coerce.Number(t.Cell(i, cols.cases)),
			MoM:   cellOr(t, i, cols.mom),
			YoY:   cellOr(t, i, cols.yoy),
		}
		if strings.Contains(label, "合计") {
			if total == nil {
				total = &e
			}
			continue
		}
		details = append(details, detailRow{Entry: e, tier: disease.Classify(label)})
	}
	return total, details
}

func cellOr(t *table.Table, row, col int) string {
	if col < 0 {
		return ""
	}
	return t.Cell(row, col)
}
