package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Normalizer converts heterogeneously formatted numeric cells from
// reporting-system exports into canonical float64 values.
type Normalizer struct {
	config Config
}

// Config defines the token sets the normalizer recognizes
type Config struct {
	// ThousandsSeparators are stripped anywhere in the cell
	ThousandsSeparators []string
	// PlaceholderDashes map to zero, but only as the entire cell.
	// A leading minus sign on a numeral is not a placeholder.
	PlaceholderDashes []string
	// MeasureTokens mark headers whose columns carry counts or ratios;
	// normalization applies only to those columns
	MeasureTokens []string
}

// DefaultConfig returns the token sets used by the reporting exports
func DefaultConfig() Config {
	return Config{
		ThousandsSeparators: []string{",", "，"},
		PlaceholderDashes:   []string{"-", "–", "—", "－"},
		MeasureTokens:       []string{"数", "比"},
	}
}

// NewNormalizer creates a normalizer with the given config
func NewNormalizer(config Config) *Normalizer {
	return &Normalizer{config: config}
}

// Number converts a cell to float64. It is total: placeholder dashes and
// unparsable input both yield 0. Losing the distinction between "zero"
// and "not reported" is the documented trade of this pipeline.
func (n *Normalizer) Number(cell string) float64 {
	trimmed := strings.TrimSpace(cell)
	for _, dash := range n.config.PlaceholderDashes {
		if trimmed == dash {
			return 0
		}
	}
	if v, ok := n.NumberOK(cell); ok {
		return v
	}
	return 0
}

// NumberOK is the strict variant: it reports whether the cell parsed.
// Callers that must distinguish failure from zero (age binning drops the
// row, trend formatting says "unchanged") use this form.
func (n *Normalizer) NumberOK(cell string) (float64, bool) {
	cleaned := strings.TrimSpace(cell)
	if cleaned == "" {
		return 0, false
	}
	for _, sep := range n.config.ThousandsSeparators {
		cleaned = strings.ReplaceAll(cleaned, sep, "")
	}
	cleaned = strings.TrimSuffix(cleaned, "％")
	cleaned = strings.TrimSuffix(cleaned, "%")

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// IsMeasureHeader reports whether a column header names a count or ratio
func (n *Normalizer) IsMeasureHeader(header string) bool {
	for _, token := range n.config.MeasureTokens {
		if strings.Contains(header, token) {
			return true
		}
	}
	return false
}

var std = NewNormalizer(DefaultConfig())

// Number converts a cell using the default config
func Number(cell string) float64 { return std.Number(cell) }

// NumberOK strictly parses a cell using the default config
func NumberOK(cell string) (float64, bool) { return std.NumberOK(cell) }

// IsMeasureHeader probes a header using the default config
func IsMeasureHeader(header string) bool { return std.IsMeasureHeader(header) }
