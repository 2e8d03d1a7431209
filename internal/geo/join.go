package geo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"epireport/domain/core"
	"epireport/domain/table"
	"epireport/internal/coerce"

	"github.com/paulmach/orb/geojson"
)

// Options controls how area counts are matched onto boundary features
type Options struct {
	// NameKeys are the preferred feature property keys for the region
	// name, probed case-insensitively and in order
	NameKeys []string
	// ExcludeTokens drop aggregate rows from the area table before the
	// join, so a 合计 row never shades a region
	ExcludeTokens []string
}

// DefaultOptions returns the keys and tokens used by the boundary
// files in circulation
func DefaultOptions() Options {
	return Options{
		NameKeys:      []string{"name", "town"},
		ExcludeTokens: []string{"合计", "总计"},
	}
}

// Joiner attaches per-region case counts to boundary geometry
type Joiner struct {
	opts Options
}

// New creates a joiner with the given options
func New(opts Options) *Joiner {
	return &Joiner{opts: opts}
}

// Result is the joined collection plus match bookkeeping for logs
type Result struct {
	// Collection carries every input feature with normalized "name"
	// and numeric "cases" properties; regions without a matching area
	// row get zero
	Collection *geojson.FeatureCollection
	// Matched counts features that found an area row
	Matched int
	// Unmatched lists area names no feature claimed, sorted
	Unmatched []string
}

// Join left-joins the area table onto the boundary features by region
// name. Names are whitespace-trimmed on both sides; area rows whose
// name marks an aggregate are skipped. The input collection is not
// modified.
func (j *Joiner) Join(fc *geojson.FeatureCollection, area *table.Table) (*Result, error) {
	if fc == nil || len(fc.Features) == 0 {
		return nil, core.ErrMissingGeometry
	}
	if area == nil {
		return nil, core.NewMissingTableError(string(table.RoleArea))
	}

	cases := make(map[string]float64)
	for i := range area.Rows {
		name := strings.TrimSpace(area.Cell(i, 0))
		if name == "" || j.excluded(name) {
			continue
		}
		cases[name] = coerce.Number(area.Cell(i, 1))
	}

	key := j.nameKey(fc)
	if key == "" {
		return nil, fmt.Errorf("geometry has no usable name property")
	}

	out := geojson.NewFeatureCollection()
	claimed := make(map[string]bool)
	matched := 0
	for _, ft := range fc.Features {
		name := strings.TrimSpace(propString(ft, key))
		joined := geojson.NewFeature(ft.Geometry)
		for k, v := range ft.Properties {
			joined.Properties[k] = v
		}
		joined.Properties["name"] = name
		if v, ok := cases[name]; ok {
			joined.Properties["cases"] = v
			claimed[name] = true
			matched++
		} else {
			joined.Properties["cases"] = float64(0)
		}
		out.Append(joined)
	}

	var unmatched []string
	for name := range cases {
		if !claimed[name] {
			unmatched = append(unmatched, name)
		}
	}
	sort.Strings(unmatched)

	return &Result{Collection: out, Matched: matched, Unmatched: unmatched}, nil
}

func (j *Joiner) excluded(name string) bool {
	for _, token := range j.opts.ExcludeTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

// nameKey picks the property key holding region names: a preferred key
// when any feature carries one, otherwise the first string-valued
// property in sorted key order. Sorting keeps the fallback stable
// across runs; property maps have no inherent order.
func (j *Joiner) nameKey(fc *geojson.FeatureCollection) string {
	seen := make(map[string]bool)
	var keys []string
	for _, ft := range fc.Features {
		for k := range ft.Properties {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	for _, want := range j.opts.NameKeys {
		for _, k := range keys {
			if strings.EqualFold(k, want) {
				return k
			}
		}
	}
	for _, k := range keys {
		for _, ft := range fc.Features {
			if _, ok := ft.Properties[k].(string); ok {
				return k
			}
		}
	}
	return ""
}

func propString(ft *geojson.Feature, key string) string {
	switch v := ft.Properties[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

var std = New(DefaultOptions())

// Join runs the default joiner
func Join(fc *geojson.FeatureCollection, area *table.Table) (*Result, error) {
	return std.Join(fc, area)
}
