// Package remote is the HTTP client for the cloud drive API: upload
// folder resolution, folder listings with fingerprints, and backup
// heartbeats.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"github.com/alexjbarnes/camera-sync/internal/models"
)

// TransientError wraps an error that is likely temporary and safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or any error in its chain) is a
// TransientError, meaning the caller should retry after a backoff.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// httpClientTimeout is the timeout for the default HTTP client used
	// by the API client when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads. Folder listings of
	// large camera folders are the biggest responses.
	maxAPIResponseBytes = 16 * 1024 * 1024
)

// Client talks to the cloud drive REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the bearer token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient creates an API client for baseURL authenticating with token.
// If httpClient is nil, a client with a 30-second timeout and same-host
// redirect policy is created.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// do sends a JSON request and decodes the response into result. A nil
// body sends no payload; a nil result discards the response.
func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}) error {
	var payload io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}

		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Network errors (timeouts, connection refused, DNS failures)
		// are transient by nature.
		return &TransientError{Err: fmt.Errorf("%w: sending request to %s: %w", apperrors.ErrAPIRequest, endpoint, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr APIError

		var err error
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			err = fmt.Errorf("%w: %s (%d): %s", apperrors.ErrAPIResponse, endpoint, resp.StatusCode, apiErr.Error)
		} else {
			err = fmt.Errorf("%w: %s returned status %d: %s", apperrors.ErrAPIResponse, endpoint, resp.StatusCode, sanitizeResponseBody(respBody))
		}

		if isTransientStatus(resp.StatusCode) {
			return &TransientError{Err: err}
		}

		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding response from %s: %w", apperrors.ErrAPIResponse, endpoint, err)
		}
	}

	return nil
}

// isTransientStatus returns true for HTTP status codes that indicate a
// temporary server-side problem worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}

// UploadFolder returns the remote camera upload folder of a group, or
// nil when the account has none configured.
func (c *Client) UploadFolder(ctx context.Context, group models.BucketGroup) (*Folder, error) {
	var resp uploadFolderResponse

	endpoint := "/v1/camera-uploads/folders/" + url.PathEscape(string(group))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("resolving %s upload folder: %w", group, err)
	}

	if resp.Folder == nil || resp.Folder.Handle == "" {
		return nil, nil
	}

	return resp.Folder, nil
}

// Children lists the direct children of a folder.
func (c *Client) Children(ctx context.Context, handle string) ([]Node, error) {
	var resp childrenResponse

	endpoint := "/v1/nodes/" + url.PathEscape(handle) + "/children"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing folder %s: %w", handle, err)
	}

	return resp.Nodes, nil
}

// RootFolders returns the folders directly under the drive root.
func (c *Client) RootFolders(ctx context.Context) ([]Folder, error) {
	nodes, err := c.Children(ctx, "root")
	if err != nil {
		return nil, err
	}

	folders := make([]Folder, 0, len(nodes))
	for _, n := range nodes {
		if n.Folder {
			folders = append(folders, Folder{Handle: n.Handle, Name: n.Name})
		}
	}

	return folders, nil
}

// ReportHeartbeat sends a folder group's backup state.
func (c *Client) ReportHeartbeat(ctx context.Context, group models.BucketGroup, state models.BackupState) error {
	req := HeartbeatRequest{
		Group:     string(group),
		State:     string(state),
		Timestamp: time.Now().UnixMilli(),
	}

	if err := c.do(ctx, http.MethodPost, "/v1/backups/heartbeat", req, nil); err != nil {
		return fmt.Errorf("reporting %s heartbeat: %w", group, err)
	}

	return nil
}
