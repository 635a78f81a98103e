package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexjbarnes/camera-sync/internal/auth"
	"github.com/alexjbarnes/camera-sync/internal/camera"
	"github.com/alexjbarnes/camera-sync/internal/config"
	"github.com/alexjbarnes/camera-sync/internal/logging"
	"github.com/alexjbarnes/camera-sync/internal/mcpserver"
	"github.com/alexjbarnes/camera-sync/internal/server"
	"github.com/alexjbarnes/camera-sync/internal/state"
	"github.com/alexjbarnes/camera-sync/internal/transfer"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the upload daemon",
	Long: `Run the upload daemon: periodic and folder-triggered camera upload runs,
the transfer event feed (when TRANSFER_FEED_URL is set) and the MCP status
server (when ENABLE_MCP is true).`,
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error { return run() },
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)
	logger.Info("camera-sync starting",
		slog.String("version", Version),
		slog.Bool("transfers", cfg.TransfersEnabled()),
		slog.Bool("watch", cfg.WatchFolders),
		slog.Bool("mcp", cfg.EnableMCP),
	)

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

	runner := camera.NewRunner(p.processor, cfg.ScanInterval, logger.With(slog.String("service", "camera")))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gctx)
	})

	if cfg.WatchFolders {
		watcher := camera.NewFolderWatcher(p.settings, runner.Trigger, logger)
		g.Go(func() error {
			return watcher.Watch(gctx)
		})
	}

	deps := mcpserver.Deps{State: appState, Runner: runner, Folders: p.client}

	if cfg.TransfersEnabled() {
		router := runTransfers(gctx, g, cfg, appState, logger.With(slog.String("service", "transfer")))
		deps.Transfers = router
	}

	if cfg.EnableMCP {
		g.Go(func() error {
			return runMCP(gctx, cfg, deps, logger.With(slog.String("service", "mcp")))
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("camera-sync stopped")

	return nil
}

// runTransfers starts the transfer feed and its consumers on g. Both
// subscriptions exist before the feed connects so no event is missed.
func runTransfers(ctx context.Context, g *errgroup.Group, cfg *config.Config, appState *state.State, logger *slog.Logger) *transfer.Router {
	hub := transfer.NewHub()
	router := transfer.NewRouter(appState, transfer.NewSDCard(cfg.SDCardCacheDir, logger), logger)
	tracker := transfer.NewUploadTracker(appState, logger)

	routerSub := hub.Subscribe()
	trackerSub := hub.Subscribe()

	g.Go(func() error {
		return router.Run(ctx, routerSub)
	})

	g.Go(func() error {
		return tracker.Run(ctx, trackerSub)
	})

	feed := transfer.NewFeed(cfg.TransferFeedURL, cfg.APIToken, hub, logger)
	g.Go(func() error {
		return feed.Run(ctx)
	})

	return router
}

// runMCP serves the MCP status tools over streamable HTTP.
func runMCP(ctx context.Context, cfg *config.Config, deps mcpserver.Deps, logger *slog.Logger) error {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "camera-sync", Version: Version},
		nil,
	)
	mcpserver.RegisterTools(mcpServer, deps)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	srv := &http.Server{
		Addr: cfg.MCPListenAddr,
		Handler: server.NewMux(server.MuxConfig{
			Verifier:   auth.NewVerifier(cfg.MCPTokenHash),
			MCPHandler: mcpHandler,
			Logger:     logger,
		}),
		ReadTimeout: 30 * time.Second,
		// run_camera_upload blocks for a whole run.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down MCP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting MCP server", slog.String("listen", cfg.MCPListenAddr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
