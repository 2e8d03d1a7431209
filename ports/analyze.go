package ports

import (
	"github.com/paulmach/orb/geojson"

	"epireport/domain/table"
	"epireport/internal/geo"
	"epireport/internal/ingest"
)

// Classifier routes one uploaded file to a table role or to boundary
// geometry. Implemented by ingest.Router.
type Classifier interface {
	Classify(f ingest.File) (*ingest.Classification, error)
}

// Narrator writes the monthly situation narrative from the assembled
// tables. Implemented by report.Generator.
type Narrator interface {
	Generate(dm *table.DataMap) string
}

// Enricher appends composition and association statistics to a
// cross-tab. Implemented by analysis.Engine.
type Enricher interface {
	Enrich(t *table.Table) *table.Table
}

// BoundaryJoiner attaches area case counts to boundary features by
// name. Implemented by geo.Joiner.
type BoundaryJoiner interface {
	Join(fc *geojson.FeatureCollection, area *table.Table) (*geo.Result, error)
}
