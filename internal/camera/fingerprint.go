package camera

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"golang.org/x/crypto/blake2b"
)

// Fingerprinter computes a content fingerprint comparable with the
// fingerprints the remote API reports for uploaded nodes. It returns
// ErrFingerprintUnavailable when the item has no content to hash, and a
// plain error when the content exists but cannot be read.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (string, error)
}

// ContentFingerprinter hashes file contents with BLAKE2b-256.
type ContentFingerprinter struct{}

// Fingerprint streams the file at path through the hash. An empty path
// reports ErrFingerprintUnavailable so the caller can fall back to
// metadata matching. Missing, unreadable or non-regular files fail.
func (ContentFingerprinter) Fingerprint(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", apperrors.ErrFingerprintUnavailable)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("fingerprinting %s: not a regular file", path)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("creating hash: %w", err)
	}

	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: f}); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ctxReader aborts a long hash of a large video when ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
