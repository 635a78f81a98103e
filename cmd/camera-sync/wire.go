package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexjbarnes/camera-sync/internal/camera"
	"github.com/alexjbarnes/camera-sync/internal/config"
	"github.com/alexjbarnes/camera-sync/internal/remote"
	"github.com/alexjbarnes/camera-sync/internal/state"
)

// pipeline is the camera upload stack shared by the run and scan commands.
type pipeline struct {
	client    *remote.Client
	settings  *camera.SettingsFile
	processor *camera.Processor
}

func newPipeline(ctx context.Context, cfg *config.Config, appState *state.State, logger *slog.Logger) (*pipeline, error) {
	client := remote.NewClient(nil, cfg.APIBaseURL, cfg.APIToken)
	settings := camera.NewSettingsFile(cfg.SettingsPath)

	// The matcher tolerance is fixed for the life of the process; folder
	// and toggle changes are picked up on every run.
	current, err := settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading camera upload settings: %w", err)
	}

	logger.Info("camera upload settings",
		slog.String("path", settings.Path()),
		slog.String("primary", current.PrimaryFolder),
		slog.String("secondary", current.SecondaryFolder),
		slog.Bool("videos", current.UploadVideos),
		slog.Bool("secondary_enabled", current.SecondaryEnabled),
	)

	scanner := camera.NewScanner(settings, camera.NewFSMediaSource(logger), logger)
	fetcher := camera.NewFetcher(client, appState)
	resolver := camera.NewResolver(
		fetcher,
		scanner,
		camera.ContentFingerprinter{},
		camera.NameSizeMTimeMatcher{Tolerance: current.Fallback.MTimeTolerance},
		logger,
	)
	heartbeat := camera.NewHeartbeat(appState, client, logger)

	return &pipeline{
		client:    client,
		settings:  settings,
		processor: camera.NewProcessor(settings, resolver, appState, heartbeat, logger),
	}, nil
}
