package camera

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"time"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"github.com/alexjbarnes/camera-sync/internal/models"
)

type snapshotter interface {
	Snapshot(ctx context.Context, bucket models.Bucket) (*Snapshot, error)
}

type mediaScanner interface {
	Scan(ctx context.Context, bucket models.Bucket, watermark int64) iter.Seq[models.Media]
}

// PendingUploads is the outcome of deduplicating one bucket: the records
// to persist and the watermark to advance to.
type PendingUploads struct {
	Bucket    models.Bucket
	Records   []models.SyncRecord
	Watermark int64
	Scanned   int
	Skipped   int
}

// Resolver turns scanned candidates into new sync records, dropping
// anything already uploaded or already queued.
type Resolver struct {
	fetcher       snapshotter
	scanner       mediaScanner
	fingerprinter Fingerprinter
	matcher       Matcher
	logger        *slog.Logger
	now           func() time.Time
}

// NewResolver creates a resolver. A nil matcher disables the metadata
// fallback, so items without a fingerprint are always queued.
func NewResolver(fetcher snapshotter, scanner mediaScanner, fp Fingerprinter, matcher Matcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher:       fetcher,
		scanner:       scanner,
		fingerprinter: fp,
		matcher:       matcher,
		logger:        logger,
		now:           time.Now,
	}
}

// GetPendingUploadList scans the bucket and returns the records that
// still need uploading. Candidates are visited oldest first so that of
// two identical items the earlier one is kept. The returned watermark is
// the newest timestamp seen, whether or not that item was queued.
func (r *Resolver) GetPendingUploadList(ctx context.Context, bucket models.Bucket) (*PendingUploads, error) {
	snap, err := r.fetcher.Snapshot(ctx, bucket)
	if err != nil {
		return nil, err
	}

	candidates := slices.Collect(r.scanner.Scan(ctx, bucket, snap.Watermark))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b models.Media) int {
		return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), cmp.Compare(a.ID, b.ID))
	})

	out := &PendingUploads{
		Bucket:    bucket,
		Watermark: snap.Watermark,
		Scanned:   len(candidates),
	}

	seen := make(map[string]struct{})
	queued := make([]models.Media, 0, len(candidates))
	now := r.now()

	for _, m := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out.Watermark = max(out.Watermark, m.Timestamp)

		if snap.IsRecorded(m.ID) {
			out.Skipped++
			continue
		}

		fp, err := r.fingerprinter.Fingerprint(ctx, m.Path)

		switch {
		case err == nil:
			if snap.HasFingerprint(fp) {
				out.Skipped++
				continue
			}

			if _, dup := seen[fp]; dup {
				out.Skipped++
				continue
			}

			seen[fp] = struct{}{}

		case errors.Is(err, apperrors.ErrFingerprintUnavailable):
			if r.matchesExisting(m, snap, queued) {
				out.Skipped++
				continue
			}

		case ctx.Err() != nil:
			return nil, ctx.Err()

		default:
			r.logger.Warn("fingerprinting candidate",
				slog.String("bucket", string(bucket)),
				slog.String("path", m.Path),
				slog.String("error", err.Error()),
			)
			out.Skipped++

			continue
		}

		queued = append(queued, m)
		out.Records = append(out.Records, models.SyncRecord{
			LocalID:      m.ID,
			LocalPath:    m.Path,
			Bucket:       bucket,
			FileName:     m.Name,
			Size:         m.Size,
			Timestamp:    m.Timestamp,
			Fingerprint:  fp,
			TargetHandle: snap.Folder.Handle,
			Status:       models.SyncPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	return out, nil
}

// matchesExisting applies the metadata matcher against remote nodes and
// the items already queued in this run.
func (r *Resolver) matchesExisting(m models.Media, snap *Snapshot, queued []models.Media) bool {
	if r.matcher == nil {
		return false
	}

	for _, n := range snap.Nodes {
		if r.matcher.Match(m, n) {
			return true
		}
	}

	for _, q := range queued {
		if r.matcher.Match(m, nodeOf(q)) {
			return true
		}
	}

	return false
}
