// Package auth guards the MCP status endpoint with a static bearer token
// whose bcrypt hash is supplied through configuration.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type contextKey int

const ctxRemoteIP contextKey = iota

// RequestRemoteIP returns the client IP from the context, or "".
func RequestRemoteIP(ctx context.Context) string {
	v, _ := ctx.Value(ctxRemoteIP).(string)
	return v
}

// HashToken returns the bcrypt hash of token for MCP_TOKEN_HASH.
func HashToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("token is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}

	return string(hash), nil
}

// Verifier checks bearer tokens against a bcrypt hash. bcrypt is slow by
// construction, so the digest of the last accepted token is remembered
// and later requests with the same token skip the hash comparison.
type Verifier struct {
	hash []byte

	mu       sync.Mutex
	accepted []byte
}

// NewVerifier creates a verifier for the given bcrypt hash.
func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: []byte(hash)}
}

// Verify reports whether token matches the configured hash.
func (v *Verifier) Verify(token string) bool {
	if token == "" {
		return false
	}

	digest := sha256.Sum256([]byte(token))

	v.mu.Lock()
	cached := v.accepted
	v.mu.Unlock()

	if cached != nil && subtle.ConstantTimeCompare(cached, digest[:]) == 1 {
		return true
	}

	if bcrypt.CompareHashAndPassword(v.hash, []byte(token)) != nil {
		return false
	}

	v.mu.Lock()
	v.accepted = digest[:]
	v.mu.Unlock()

	return true
}

// Middleware returns HTTP middleware that validates Bearer tokens.
// Unauthenticated requests get a 401 with a WWW-Authenticate challenge.
func Middleware(v *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	const (
		wwwAuthNoToken = `Bearer realm="camera-sync"`
		wwwAuthInvalid = `Bearer realm="camera-sync", error="invalid_token"`
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.Debug("middleware: no bearer token",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("WWW-Authenticate", wwwAuthNoToken)
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			if !v.Verify(strings.TrimPrefix(authHeader, "Bearer ")) {
				logger.Debug("middleware: invalid bearer token",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("WWW-Authenticate", wwwAuthInvalid)
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			ctx := context.WithValue(r.Context(), ctxRemoteIP, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
