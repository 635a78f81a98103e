package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/camera-sync/internal/config"
	"github.com/alexjbarnes/camera-sync/internal/logging"
	"github.com/alexjbarnes/camera-sync/internal/state"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the camera upload pipeline once and print the report",
	Long: `Run the camera upload pipeline once: scan the enabled folders, queue new
media and advance the watermarks. The report is written to stdout as JSON
and logs go to stderr. Fails if the daemon already holds the state database.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLoggerTo(os.Stderr, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appState, err := state.LoadAt(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	defer appState.Close()

	p, err := newPipeline(ctx, cfg, appState, logger)
	if err != nil {
		return err
	}

	report, err := p.processor.Process(ctx)
	if err != nil {
		return err
	}

	for _, b := range report.Failed() {
		logger.Warn("bucket failed", slog.String("bucket", string(b.Bucket)), slog.String("error", b.Error))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}
