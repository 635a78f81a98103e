package e2e_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexjbarnes/camera-sync/internal/auth"
	"github.com/alexjbarnes/camera-sync/internal/camera"
	"github.com/alexjbarnes/camera-sync/internal/mcpserver"
	"github.com/alexjbarnes/camera-sync/internal/remote"
	"github.com/alexjbarnes/camera-sync/internal/server"
	"github.com/alexjbarnes/camera-sync/internal/state"
	"github.com/alexjbarnes/camera-sync/internal/transfer"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiToken = "e2e-api-token"
	mcpToken = "e2e-mcp-token"
)

var jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

// cloudAPI is a fake cloud drive API with one primary upload folder.
type cloudAPI struct {
	mu         sync.Mutex
	nodes      []remote.Node
	heartbeats []remote.HeartbeatRequest
}

func (c *cloudAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/camera-uploads/folders/{group}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("group") != "primary" {
			writeJSON(w, map[string]any{"folder": nil})
			return
		}

		writeJSON(w, map[string]any{"folder": remote.Folder{Handle: "cu-primary", Name: "Camera Uploads"}})
	})

	mux.HandleFunc("GET /v1/nodes/{handle}/children", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()

		switch r.PathValue("handle") {
		case "root":
			writeJSON(w, map[string]any{"nodes": []remote.Node{
				{Handle: "cu-primary", Name: "Camera Uploads", Folder: true},
				{Handle: "doc-1", Name: "notes.txt", Size: 10},
			}})
		case "cu-primary":
			writeJSON(w, map[string]any{"nodes": c.nodes})
		default:
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		}
	})

	mux.HandleFunc("POST /v1/backups/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		var req remote.HeartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding heartbeat: %v", err)
		}

		c.mu.Lock()
		c.heartbeats = append(c.heartbeats, req)
		c.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+apiToken {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func (c *cloudAPI) heartbeatGroups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var groups []string
	for _, h := range c.heartbeats {
		groups = append(groups, h.Group+":"+h.State)
	}

	return groups
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// harness holds the full e2e stack: a fake cloud API, a camera folder on
// disk, the upload pipeline over a real state database and the MCP server
// behind bearer token auth.
type harness struct {
	URL       string
	API       *cloudAPI
	CameraDir string
	State     *state.State
	Runner    *camera.Runner
	Router    *transfer.Router
	Client    *http.Client
	logger    *slog.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	home := t.TempDir()
	cameraDir := filepath.Join(home, "DCIM")
	require.NoError(t, os.MkdirAll(cameraDir, 0o755))

	settingsPath := filepath.Join(home, "settings.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("primary_folder: DCIM\nupload_videos: false\n"), 0o600))

	api := &cloudAPI{}
	apiSrv := httptest.NewServer(api.handler(t))
	t.Cleanup(apiSrv.Close)

	st, err := state.LoadAt(filepath.Join(home, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client := remote.NewClient(apiSrv.Client(), apiSrv.URL, apiToken)
	settings := camera.NewSettingsFile(settingsPath)
	resolver := camera.NewResolver(
		camera.NewFetcher(client, st),
		camera.NewScanner(settings, camera.NewFSMediaSource(logger), logger),
		camera.ContentFingerprinter{},
		camera.NameSizeMTimeMatcher{Tolerance: 2 * time.Second},
		logger,
	)
	processor := camera.NewProcessor(settings, resolver, st, camera.NewHeartbeat(st, client, logger), logger)
	runner := camera.NewRunner(processor, time.Hour, logger)
	router := transfer.NewRouter(st, transfer.NewSDCard(filepath.Join(home, "cache"), logger), logger)

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: "camera-sync-e2e", Version: "test"}, nil)
	mcpserver.RegisterTools(mcpServer, mcpserver.Deps{
		State:     st,
		Runner:    runner,
		Transfers: router,
		Folders:   client,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(mcpToken), bcrypt.MinCost)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewMux(server.MuxConfig{
		Verifier: auth.NewVerifier(string(hash)),
		MCPHandler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil),
		Logger: logger,
	}))
	t.Cleanup(srv.Close)

	return &harness{
		URL:       srv.URL,
		API:       api,
		CameraDir: cameraDir,
		State:     st,
		Runner:    runner,
		Router:    router,
		Client:    srv.Client(),
		logger:    logger,
	}
}

// writePhoto writes a JPEG named name with a distinguishing body and
// modification time.
func (h *harness) writePhoto(t *testing.T, name, body string, mtime time.Time) string {
	t.Helper()

	path := filepath.Join(h.CameraDir, name)
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, jpegHeader...), body...), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	return path
}

// addRemote records an already uploaded copy of the file at path.
func (h *harness) addRemote(t *testing.T, path string) {
	t.Helper()

	fp, err := camera.ContentFingerprinter{}.Fingerprint(context.Background(), path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)

	h.API.mu.Lock()
	h.API.nodes = append(h.API.nodes, remote.Node{
		Handle:      "n-" + filepath.Base(path),
		Name:        "uploaded-" + filepath.Base(path),
		Size:        info.Size(),
		MTime:       info.ModTime().UnixMilli(),
		Fingerprint: fp,
	})
	h.API.mu.Unlock()
}

// mcpSession creates an MCP client session authenticated with the given
// Bearer token. Uses the MCP SDK's StreamableClientTransport with a
// custom HTTP RoundTripper that injects the Authorization header.
func (h *harness) mcpSession(t *testing.T, token string) *mcp.ClientSession {
	t.Helper()

	transport := &mcp.StreamableClientTransport{
		Endpoint: h.URL + "/mcp",
		HTTPClient: &http.Client{
			Transport: &bearerTransport{
				token: token,
				base:  h.Client.Transport,
			},
		},
		DisableStandaloneSSE: true,
	}

	client := mcp.NewClient(
		&mcp.Implementation{Name: "e2e-test-client", Version: "test"},
		nil,
	)

	session, err := client.Connect(t.Context(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

// callJSON calls a tool and unmarshals its text content into dest.
func callJSON(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, dest any) {
	t.Helper()

	result, err := session.CallTool(t.Context(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, result.IsError, "tool %s returned an error: %s", name, extractTextContent(t, result))
	require.NoError(t, json.Unmarshal([]byte(extractTextContent(t, result)), dest))
}

func extractTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")

	return tc.Text
}

// bearerTransport is an http.RoundTripper that injects a Bearer token
// into every request's Authorization header.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (bt *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+bt.token)

	return bt.base.RoundTrip(req)
}
