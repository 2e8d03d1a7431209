package app

import (
	"io"

	"github.com/sirupsen/logrus"

	"epireport/domain/core"
	"epireport/internal/analysis"
	"epireport/internal/geo"
	"epireport/internal/ingest"
	"epireport/internal/report"
	"epireport/ports"
)

// Analyzer wires the classification, statistics, narrative, and join
// components for the lifetime of the process. It mints one Session per
// analysis run; the sessions themselves hold no shared state.
type Analyzer struct {
	classifier ports.Classifier
	narrator   ports.Narrator
	enricher   ports.Enricher
	joiner     ports.BoundaryJoiner
	log        *logrus.Logger
}

// NewAnalyzer creates an analyzer from explicit components.
func NewAnalyzer(classifier ports.Classifier, narrator ports.Narrator, enricher ports.Enricher, joiner ports.BoundaryJoiner, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Analyzer{
		classifier: classifier,
		narrator:   narrator,
		enricher:   enricher,
		joiner:     joiner,
		log:        logger,
	}
}

// Default returns an analyzer wired with the standard components.
// region and topN feed the narrative generator; zero values fall back
// to its defaults.
func Default(region string, topN int, logger *logrus.Logger) *Analyzer {
	return NewAnalyzer(
		ingest.NewRouter(logger),
		report.NewGenerator(report.Options{Region: region, TopN: topN}),
		analysis.NewEngine(analysis.DefaultOptions()),
		geo.New(geo.DefaultOptions()),
		logger,
	)
}

// NewSession returns an empty session ready to ingest files.
func (a *Analyzer) NewSession() *Session {
	return &Session{
		ID:        core.NewSessionID(),
		CreatedAt: core.Now(),
		analyzer:  a,
	}
}
