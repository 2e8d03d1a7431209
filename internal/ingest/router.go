package ingest

import (
	"strconv"
	"strings"

	"epireport/domain/core"
	"epireport/domain/table"
	"epireport/internal/agebin"
	"epireport/internal/coerce"

	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// Classification is the routed form of one input file: a role plus
// either a table or a boundary geometry, never both.
type Classification struct {
	Role     table.Role
	Table    *table.Table
	Geometry *geojson.FeatureCollection
}

// rule pairs a role with its recognition predicate and an optional
// reshaping step applied on match.
type rule struct {
	role      table.Role
	match     func(name, blob string, t *table.Table) bool
	transform func(t *table.Table) *table.Table
}

// Router assigns incoming files to their role slots. Rules run in a
// fixed order and the first match wins, so a file named 报表 with 时间
// headers still lands in the summary slot.
type Router struct {
	norm   *coerce.Normalizer
	binner *agebin.Binner
	log    *logrus.Logger
	rules  []rule
}

// NewRouter builds a router with the default normalizer and age binner
func NewRouter(logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Router{
		norm:   coerce.NewNormalizer(coerce.DefaultConfig()),
		binner: agebin.New(agebin.DefaultOptions()),
		log:    logger,
	}
	r.rules = []rule{
		{
			role: table.RoleSummary,
			match: func(name, blob string, _ *table.Table) bool {
				return strings.Contains(name, "报表") ||
					(strings.Contains(blob, "病种") && strings.Contains(blob, "本期"))
			},
			transform: r.normalizeMeasures,
		},
		{
			role: table.RoleTime,
			match: func(name, blob string, _ *table.Table) bool {
				return strings.Contains(name, "时间") ||
					(strings.Contains(blob, "时间") && strings.Contains(blob, "发病"))
			},
		},
		{
			role: table.RoleAge,
			match: func(name, blob string, _ *table.Table) bool {
				return strings.Contains(name, "年龄") || strings.Contains(blob, "男")
			},
			transform: r.binner.Bin,
		},
		{
			role: table.RolePopulation,
			match: func(name, blob string, _ *table.Table) bool {
				return strings.Contains(name, "人群") || strings.Contains(blob, "职业")
			},
		},
		{
			role: table.RoleArea,
			match: func(name, blob string, t *table.Table) bool {
				return (strings.Contains(name, "地区") ||
					strings.Contains(blob, "乡镇") ||
					strings.Contains(blob, "街道")) && t.ColumnCount() >= 2
			},
			transform: r.areaTable,
		},
	}
	return r
}

// Classify decodes a file and assigns it a role. Files matching no
// rule are rejected with an unrecognized-file error; the caller
// decides whether that aborts the batch or just this file.
func (r *Router) Classify(f File) (*Classification, error) {
	if f.IsGeometry() {
		fc, err := ReadGeometry(f)
		if err != nil {
			return nil, err
		}
		r.log.WithFields(logrus.Fields{
			"file":     f.Name,
			"role":     table.RoleGeometry,
			"features": len(fc.Features),
		}).Info("file routed")
		return &Classification{Role: table.RoleGeometry, Geometry: fc}, nil
	}

	t, err := ReadTable(f)
	if err != nil {
		return nil, err
	}

	blob := t.HeaderBlob()
	for _, rule := range r.rules {
		if !rule.match(f.Name, blob, t) {
			continue
		}
		if rule.transform != nil {
			t = rule.transform(t)
		}
		r.log.WithFields(logrus.Fields{
			"file": f.Name,
			"role": rule.role,
			"rows": t.RowCount(),
		}).Info("file routed")
		return &Classification{Role: rule.role, Table: t}, nil
	}
	return nil, core.NewUnrecognizedError(f.Name)
}

// normalizeMeasures rewrites every cell of the count and ratio columns
// as canonical numeric text, so downstream math never sees thousands
// separators or placeholder dashes.
func (r *Router) normalizeMeasures(t *table.Table) *table.Table {
	for j, h := range t.Headers {
		if !r.norm.IsMeasureHeader(h) {
			continue
		}
		for i := range t.Rows {
			t.Rows[i][j] = strconv.FormatFloat(r.norm.Number(t.Rows[i][j]), 'f', -1, 64)
		}
	}
	return t
}

// areaTable reduces an area file to the Name/Cases pair the choropleth
// join expects, coercing the case counts as it goes.
func (r *Router) areaTable(t *table.Table) *table.Table {
	rows := make([][]string, 0, t.RowCount())
	for i := range t.Rows {
		cases := strconv.FormatFloat(r.norm.Number(t.Cell(i, 1)), 'f', -1, 64)
		rows = append(rows, []string{t.Cell(i, 0), cases})
	}
	return table.New(t.Name, []string{"Name", "Cases"}, rows)
}
