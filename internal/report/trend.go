package report

import (
	"fmt"
	"sort"
	"strings"

	"epireport/internal/coerce"
)

// FmtTrend turns a period-comparison cell into report prose. True zero
// and an unparsable cell both read "unchanged"; the narrative does not
// distinguish "no change" from "not reported".
func FmtTrend(cell string) string {
	v, ok := coerce.NumberOK(cell)
	if !ok || v == 0 {
		return "unchanged"
	}
	if v > 0 {
		return fmt.Sprintf("increase of %.2f%%", v)
	}
	return fmt.Sprintf("decrease of %.2f%%", -v)
}

// Entry is one disease's input to the ranked description: its name,
// current case count, and the raw period-comparison cells.
type Entry struct {
	Name  string
	Cases float64
	MoM   string
	YoY   string
}

// TopDiseases builds the ranked description of the leading diseases.
// Entries sort by case count descending with ties kept in input order;
// only the first n ranks are considered, and ranks with zero or
// negative cases are skipped without promoting later entries into the
// window. Shares are computed against tierTotal.
func TopDiseases(entries []Entry, tierTotal float64, n int) string {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cases > ranked[j].Cases
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	var parts []string
	for _, e := range ranked[:n] {
		if e.Cases <= 0 {
			continue
		}
		cases := int(e.Cases)
		percent := 0.0
		if tierTotal > 0 {
			percent = float64(cases) / tierTotal * 100
		}
		parts = append(parts, fmt.Sprintf("%s（%d例，占比%.2f%%，较上月%s，较去年同期%s）",
			e.Name, cases, percent, FmtTrend(e.MoM), FmtTrend(e.YoY)))
	}
	if len(parts) == 0 {
		return "no reported cases"
	}
	return strings.Join(parts, "、")
}
