package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"epireport/internal/config"
	"epireport/internal/logging"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "epireport",
	Short: "Epidemic report analysis from heterogeneous table exports",
	Long: `epireport ingests the monthly table exports of a district disease
reporting system (summary report, time distribution, age/sex, population,
and area tables, plus a boundary GeoJSON), classifies each file by name
and headers, and produces the situation narrative, enriched statistical
tables, a time-trend figure, and the joined area GeoJSON.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

// initConfig mirrors the web entrypoint: dotenv, then config file and
// environment, then the logger. A broken config falls back to the
// defaults so read-only commands still run.
func initConfig() {
	_ = godotenv.Load()

	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = config.Default()
	}
	cfg = c
	logger = logging.New(cfg.Logging)
}
