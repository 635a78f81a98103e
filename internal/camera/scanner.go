package camera

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// MediaQuery selects the items a MediaSource yields.
type MediaQuery struct {
	Bucket     models.Bucket
	ParentPath string
	Watermark  int64 // only items strictly newer than this are returned
	Filter     *SelectionFilter
}

// MediaSource enumerates local media. Implementations must stop yielding
// once ctx is done.
type MediaSource interface {
	QueryMedia(ctx context.Context, q MediaQuery) iter.Seq[models.Media]
}

type settingsLoader interface {
	Load(ctx context.Context) (*Settings, error)
}

// Scanner yields the candidate media of a bucket newer than a watermark.
type Scanner struct {
	settings settingsLoader
	source   MediaSource
	logger   *slog.Logger
}

// NewScanner creates a scanner reading folders from settings.
func NewScanner(settings settingsLoader, source MediaSource, logger *slog.Logger) *Scanner {
	return &Scanner{settings: settings, source: source, logger: logger}
}

// Scan returns the bucket's items with a timestamp after watermark. An
// unconfigured or unreadable folder yields an empty sequence.
func (s *Scanner) Scan(ctx context.Context, bucket models.Bucket, watermark int64) iter.Seq[models.Media] {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Warn("loading settings for scan", slog.String("bucket", string(bucket)), slog.String("error", err.Error()))
		return emptySeq
	}

	folder := settings.LocalFolder(bucket)
	if folder == "" {
		s.logger.Debug("no local folder configured", slog.String("bucket", string(bucket)))
		return emptySeq
	}

	return s.source.QueryMedia(ctx, MediaQuery{
		Bucket:     bucket,
		ParentPath: folder,
		Watermark:  watermark,
		Filter:     &settings.Selection,
	})
}

func emptySeq(func(models.Media) bool) {}

// FSMediaSource walks a local folder tree and classifies files by their
// content type.
type FSMediaSource struct {
	logger *slog.Logger
}

// NewFSMediaSource creates a filesystem-backed media source.
func NewFSMediaSource(logger *slog.Logger) *FSMediaSource {
	return &FSMediaSource{logger: logger}
}

// QueryMedia walks q.ParentPath in lexical order. Hidden entries and
// symlinks are skipped. An item's ID is its path relative to the folder
// and its timestamp is the file's modification time.
func (s *FSMediaSource) QueryMedia(ctx context.Context, q MediaQuery) iter.Seq[models.Media] {
	return func(yield func(models.Media) bool) {
		root := q.ParentPath

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			s.logger.Debug("media folder unavailable", slog.String("path", root))
			return
		}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}

			if err != nil {
				s.logger.Warn("walking media folder", slog.String("path", path), slog.String("error", err.Error()))

				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}

				return nil
			}

			if path == root {
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if d.IsDir() || d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
				return nil
			}

			m, ok := s.inspect(root, path, d, q)
			if !ok {
				return nil
			}

			if !yield(m) {
				return fs.SkipAll
			}

			return nil
		})
	}
}

func (s *FSMediaSource) inspect(root, path string, d fs.DirEntry, q MediaQuery) (models.Media, bool) {
	info, err := d.Info()
	if err != nil {
		return models.Media{}, false
	}

	if !q.Filter.Allow(d.Name(), info.Size()) {
		return models.Media{}, false
	}

	ts := info.ModTime().UnixMilli()
	if ts <= q.Watermark {
		return models.Media{}, false
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		s.logger.Debug("detecting content type", slog.String("path", path), slog.String("error", err.Error()))
		return models.Media{}, false
	}

	isVideo, ok := classify(mt)
	if !ok || isVideo != q.Bucket.IsVideo() {
		return models.Media{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.Media{}, false
	}

	return models.Media{
		ID:        filepath.ToSlash(rel),
		Path:      path,
		Name:      d.Name(),
		Size:      info.Size(),
		Timestamp: ts,
		MimeType:  mt.String(),
		Bucket:    q.Bucket,
	}, true
}

// classify reports whether a detected type is a video. ok is false for
// anything that is neither an image nor a video.
func classify(mt *mimetype.MIME) (isVideo, ok bool) {
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "image/"):
			return false, true
		case strings.HasPrefix(m.String(), "video/"):
			return true, true
		}
	}

	return false, false
}
