// Package logging builds the process-wide logrus logger from configuration.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"

	"epireport/internal/config"
)

// New returns a logger configured per cfg. Unknown levels fall back to info
// so a typo in the environment never silences the process.
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}
