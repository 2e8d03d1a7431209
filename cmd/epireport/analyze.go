package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"epireport/app"
	"epireport/internal/errors"
	"epireport/internal/ingest"
	"epireport/internal/render"
)

var analyzeOutDir string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Classify report files and write the analysis outputs",
	Long: `Reads every given file, routes it to its table role, and writes the
analysis artifacts into the output directory: report.md (narrative),
tables.html (enriched statistical tables), time_trend.html (figure),
and area_cases.geojson (boundary features with case counts). Artifacts
whose inputs were not uploaded are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := analyzeOutDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		files := make([]ingest.File, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files = append(files, ingest.File{Name: filepath.Base(path), Data: data})
		}

		out := cmd.OutOrStdout()
		session := app.Default(cfg.Report.Region, cfg.Report.TopN, logger).NewSession()
		records := session.ProcessFiles(cmd.Context(), files)
		for _, rec := range records {
			if rec.Accepted() {
				fmt.Fprintf(out, "✓ %s → %s (%d rows, %s)\n", rec.File, rec.Role, rec.Rows, rec.Hash.Short())
			} else {
				fmt.Fprintf(out, "✗ %s skipped: %v\n", rec.File, rec.Err)
			}
		}

		if err := writeOutputs(out, session, outDir); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Analysis written to %s\n", outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "output", "o", "", "output directory (default from config)")
}

// writeOutputs writes every artifact the session can produce. The
// narrative is always written; the other artifacts depend on which
// tables were ingested.
func writeOutputs(out io.Writer, session *app.Session, outDir string) error {
	if err := os.WriteFile(filepath.Join(outDir, "report.md"), []byte(session.Report()), 0o644); err != nil {
		return fmt.Errorf("write report.md: %w", err)
	}

	if tables := session.StatTables(); len(tables) > 0 {
		var buf bytes.Buffer
		for _, st := range tables {
			if err := render.ThreeLineTable(&buf, st.Title, st.Table); err != nil {
				return errors.RenderFailed(st.Title, err)
			}
		}
		if err := os.WriteFile(filepath.Join(outDir, "tables.html"), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write tables.html: %w", err)
		}
	}

	if session.HasTimeTrend() {
		var buf bytes.Buffer
		if err := session.TimeTrend(&buf); err != nil {
			return errors.RenderFailed("time trend figure", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "time_trend.html"), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write time_trend.html: %w", err)
		}
	}

	if session.HasChoropleth() {
		result, err := session.Choropleth()
		if err != nil {
			return err
		}
		payload, err := result.Collection.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode joined geojson: %w", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "area_cases.geojson"), payload, 0o644); err != nil {
			return fmt.Errorf("write area_cases.geojson: %w", err)
		}
		fmt.Fprintf(out, "✓ Boundary join: %d/%d features matched\n", result.Matched, len(result.Collection.Features))
	}

	return nil
}
