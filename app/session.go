package app

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"epireport/domain/core"
	"epireport/domain/table"
	"epireport/internal/geo"
	"epireport/internal/ingest"
	"epireport/internal/render"
)

// IngestRecord is the per-file outcome of a session's ingestion pass:
// either the role the file was stored under, or the error that made
// the session skip it. Hash identifies the exact bytes seen.
type IngestRecord struct {
	File string
	Role table.Role
	Rows int
	Hash core.FileHash
	Err  error
}

// Accepted reports whether the file made it into the data map.
func (r IngestRecord) Accepted() bool { return r.Err == nil }

// StatTable pairs an enriched cross-tab with its display caption.
type StatTable struct {
	Title string
	Table *table.Table
}

// Session owns the classified inputs for one analysis run. Files are
// ingested once, then the accessors derive narrative, tables, figure,
// and choropleth from the assembled map. Sessions are not safe for
// concurrent ingestion; the accessors are read-only once processing
// is done.
type Session struct {
	ID        core.SessionID
	CreatedAt core.Timestamp

	analyzer *Analyzer
	data     table.DataMap
	records  []IngestRecord
}

// ProcessFiles classifies each file into the session's data map. A
// file that fails to parse or matches no role is recorded and skipped;
// the batch continues. A later file of an already-stored role replaces
// the earlier table, so upload order decides ties.
func (s *Session) ProcessFiles(ctx context.Context, files []ingest.File) []IngestRecord {
	for _, f := range files {
		rec := IngestRecord{File: f.Name, Hash: core.NewFileHash(f.Data)}

		if err := ctx.Err(); err != nil {
			rec.Err = err
			s.records = append(s.records, rec)
			continue
		}

		cls, err := s.analyzer.classifier.Classify(f)
		if err != nil {
			rec.Err = err
			s.analyzer.log.WithFields(logrus.Fields{
				"session": s.ID.String(),
				"file":    f.Name,
			}).WithError(err).Warn("file skipped")
			s.records = append(s.records, rec)
			continue
		}

		if cls.Geometry != nil {
			s.data.StoreGeometry(cls.Geometry)
			rec.Role = table.RoleGeometry
			rec.Rows = len(cls.Geometry.Features)
		} else {
			s.data.Store(cls.Role, cls.Table)
			rec.Role = cls.Role
			rec.Rows = cls.Table.RowCount()
		}
		s.records = append(s.records, rec)
	}
	return s.records
}

// Records returns the ingestion log in upload order.
func (s *Session) Records() []IngestRecord { return s.records }

// Data returns the assembled table map for read-only use.
func (s *Session) Data() *table.DataMap { return &s.data }

// Report returns the narrative Markdown for the assembled tables. The
// narrator handles missing inputs itself, so this never fails.
func (s *Session) Report() string {
	return s.analyzer.narrator.Generate(&s.data)
}

// StatTables returns the enriched cross-tabs with their fixed
// captions, in report order. Roles that were never ingested are
// simply absent.
func (s *Session) StatTables() []StatTable {
	var out []StatTable
	if s.data.Age != nil {
		out = append(out, StatTable{
			Title: "表1 不同年龄组发病情况及性别分布",
			Table: s.analyzer.enricher.Enrich(s.data.Age),
		})
	}
	if s.data.Population != nil {
		out = append(out, StatTable{
			Title: "表2 重点职业人群发病情况",
			Table: s.analyzer.enricher.Enrich(s.data.Population),
		})
	}
	return out
}

// TimeTrend writes the incidence line chart for the time table, or
// reports that no time table was ingested.
func (s *Session) TimeTrend(w io.Writer) error {
	return render.TimeTrend(w, s.data.Time, render.DefaultChartOptions())
}

// HasTimeTrend reports whether a time table is available to chart.
func (s *Session) HasTimeTrend() bool { return s.data.Time != nil }

// Choropleth joins area case counts onto the boundary features. Both
// the area table and the geometry must have been ingested.
func (s *Session) Choropleth() (*geo.Result, error) {
	return s.analyzer.joiner.Join(s.data.Geometry, s.data.Area)
}

// HasChoropleth reports whether both join inputs are present.
func (s *Session) HasChoropleth() bool {
	return s.data.Geometry != nil && s.data.Area != nil
}
