// Package server provides HTTP server construction for camera-sync.
package server

import (
	"log/slog"
	"net/http"

	"github.com/alexjbarnes/camera-sync/internal/auth"
)

// MuxConfig holds dependencies for building the HTTP mux.
type MuxConfig struct {
	Verifier   *auth.Verifier
	MCPHandler http.Handler
	Logger     *slog.Logger
}

// NewMux builds the HTTP mux with an unauthenticated health check and the
// MCP endpoint behind Bearer token middleware.
func NewMux(cfg MuxConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	authMiddleware := auth.Middleware(cfg.Verifier, cfg.Logger)
	mux.Handle("/mcp", authMiddleware(cfg.MCPHandler))

	return mux
}
