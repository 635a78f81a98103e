package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
)

// SDCard moves completed downloads out of the SD card staging cache into
// their final location.
type SDCard struct {
	cacheDir string
	logger   *slog.Logger
}

// NewSDCard creates a mover whose staging cache is cacheDir. An empty
// cacheDir means no path is treated as a cache path.
func NewSDCard(cacheDir string, logger *slog.Logger) *SDCard {
	if cacheDir != "" {
		cacheDir = filepath.Clean(cacheDir)
	}

	return &SDCard{cacheDir: cacheDir, logger: logger}
}

// IsSDCardCachePath reports whether path lies inside the staging cache.
func (s *SDCard) IsSDCardCachePath(path string) bool {
	if s.cacheDir == "" || path == "" {
		return false
	}

	rel, err := filepath.Rel(s.cacheDir, filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// MoveFileToSDCard moves src into destDir joined with subFolders and
// returns the new path. A rename is tried first; across filesystems the
// file is copied and the source removed. A missing source returns an
// error wrapping ErrSourceMissing.
func (s *SDCard) MoveFileToSDCard(ctx context.Context, src, destDir string, subFolders []string) (string, error) {
	if destDir == "" {
		return "", fmt.Errorf("empty destination for %s", src)
	}

	for _, seg := range subFolders {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return "", fmt.Errorf("invalid sub folder %q", seg)
		}
	}

	info, err := os.Lstat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrSourceMissing, src)
	}

	if err != nil {
		return "", fmt.Errorf("inspecting %s: %w", src, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", src)
	}

	dir := filepath.Join(append([]string{destDir}, subFolders...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	dest := filepath.Join(dir, filepath.Base(src))

	err = os.Rename(src, dest)
	if err == nil {
		return dest, nil
	}

	s.logger.Debug("rename failed, copying", slog.String("src", src), slog.String("error", err.Error()))

	if err := copyFile(ctx, src, dest, info); err != nil {
		return "", err
	}

	if err := os.Remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("removing cached download", slog.String("path", src), slog.String("error", err.Error()))
	}

	return dest, nil
}

// copyFile writes src to a temp file beside dest and renames it into
// place so a partial copy is never visible at dest.
func copyFile(ctx context.Context, src, dest string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", apperrors.ErrSourceMissing, src)
	}

	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".sdcard-move-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: in}); err != nil {
		cleanup()
		return fmt.Errorf("copying %s: %w", src, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	_ = os.Chmod(tmpName, info.Mode().Perm())
	_ = os.Chtimes(tmpName, info.ModTime(), info.ModTime())

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", dest, err)
	}

	return nil
}

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
