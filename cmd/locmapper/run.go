package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/location-mapper/internal/adapter/csvio"
	"github.com/couchcryptid/location-mapper/internal/config"
	"github.com/couchcryptid/location-mapper/internal/observability"
	"github.com/couchcryptid/location-mapper/internal/pipeline"
	"github.com/couchcryptid/location-mapper/internal/render"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var runFlags struct {
	input     string
	successes string
	failures  string
	geojson   string
	points    string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "geocode and cluster one CSV batch",
	Long: `
run reads a CSV with "name" and "address" columns, geocodes every record
through the provider chain, clusters the successes, and writes the
success table, the failure table, and a rendered point file.

Interrupting the run (SIGINT/SIGTERM) keeps the records processed so
far: partial results are exported before exiting.
`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.input, "input", "i", "", "input CSV with name and address columns (required)")
	runCmd.Flags().StringVar(&runFlags.successes, "successes", "geocoded.csv", "output CSV for successfully geocoded records")
	runCmd.Flags().StringVar(&runFlags.failures, "failures", "failures.csv", "output CSV for failed records")
	runCmd.Flags().StringVar(&runFlags.geojson, "geojson", "points.geojson", "rendered GeoJSON output")
	runCmd.Flags().StringVar(&runFlags.points, "points", "points.csv", "fallback plain point output")
	_ = runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	in, err := os.Open(runFlags.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	records, err := csvio.ReadRecords(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(records) == 0 {
		return errors.New("input contains no records")
	}

	svc, publisher, err := buildService(cfg, logger, metrics)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("geocoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	progress := func(processed, _ int) {
		_ = bar.Set(processed)
	}

	out, err := svc.Process(ctx, records, progress)
	if err != nil {
		return err
	}
	if out.Cancelled {
		logger.Warn("batch cancelled, exporting partial results", "processed", len(out.Results), "total", len(records))
	}

	if err := exportTable(runFlags.successes, func(w io.Writer) error {
		return csvio.WriteSuccesses(w, out.Successes)
	}); err != nil {
		return err
	}
	if err := exportTable(runFlags.failures, func(w io.Writer) error {
		return csvio.WriteFailures(w, out.Failures)
	}); err != nil {
		return err
	}

	if err := renderPoints(out, logger, metrics); err != nil {
		// The geocoding and clustering results are already on disk; a
		// rendering failure is reported but does not fail the run.
		logger.Error("rendering failed, inspect the exported tables manually", "error", err)
	}

	logger.Info("batch report",
		"total", out.Report.Total,
		"successes", out.Report.Successes,
		"failures", out.Report.Total-out.Report.Successes,
		"by_status", out.Report.Failures,
	)
	return nil
}

func exportTable(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// renderPoints runs the renderer fallback chain: GeoJSON first, the
// plain point list as the degraded fallback.
func renderPoints(out pipeline.BatchOutput, logger *slog.Logger, metrics *observability.Metrics) error {
	gj, err := os.Create(runFlags.geojson)
	if err != nil {
		return fmt.Errorf("create %s: %w", runFlags.geojson, err)
	}
	defer gj.Close()

	pl, err := os.Create(runFlags.points)
	if err != nil {
		return fmt.Errorf("create %s: %w", runFlags.points, err)
	}
	defer pl.Close()

	chain := render.NewChain([]render.Renderer{
		render.NewGeoJSON(gj),
		render.NewPointList(pl),
	}, logger, metrics)

	return chain.Render(out.Placed)
}
