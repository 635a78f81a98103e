package camera

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -source=processor.go -destination=mocks_test.go -package=camera -mock_names=uploadOptions=MockUploadOptions,pendingUploadLister=MockPendingUploadLister,syncRecordWriter=MockSyncRecordWriter,backupStateUpdater=MockBackupStateUpdater

// uploadOptions are the per-run toggles read at the start of a run.
type uploadOptions interface {
	IncludeVideos(ctx context.Context) (bool, error)
	IsSecondaryFolderEnabled(ctx context.Context) (bool, error)
}

type pendingUploadLister interface {
	GetPendingUploadList(ctx context.Context, bucket models.Bucket) (*PendingUploads, error)
}

// syncRecordWriter is the write side of the persisted sync state.
type syncRecordWriter interface {
	SaveSyncRecords(records []models.SyncRecord) error
	UpdateTimestamp(bucket models.Bucket, ts int64) error
}

type backupStateUpdater interface {
	UpdatePrimaryFolderBackupState(ctx context.Context, state models.BackupState)
	UpdateSecondaryFolderBackupState(ctx context.Context, state models.BackupState)
}

// BucketResult summarises one bucket of a run.
type BucketResult struct {
	Bucket    models.Bucket `json:"bucket"`
	Scanned   int           `json:"scanned"`
	Queued    int           `json:"queued"`
	Skipped   int           `json:"skipped"`
	Watermark int64         `json:"watermark"`
	Error     string        `json:"error,omitempty"`

	err error
}

// Err returns the bucket's failure, if any.
func (b BucketResult) Err() error { return b.err }

// Report is the outcome of one upload run.
type Report struct {
	RunID            string         `json:"run_id"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	VideosEnabled    bool           `json:"videos_enabled"`
	SecondaryEnabled bool           `json:"secondary_enabled"`
	Buckets          []BucketResult `json:"buckets"`
}

// Queued returns the number of records persisted across all buckets.
func (r *Report) Queued() int {
	n := 0
	for _, b := range r.Buckets {
		n += b.Queued
	}

	return n
}

// Failed returns the buckets that did not commit.
func (r *Report) Failed() []BucketResult {
	var out []BucketResult

	for _, b := range r.Buckets {
		if b.err != nil {
			out = append(out, b)
		}
	}

	return out
}

// Processor runs the upload pipeline: for each enabled bucket it resolves
// pending uploads, persists them and advances the bucket's watermark,
// then marks each processed folder group active.
type Processor struct {
	options   uploadOptions
	uploads   pendingUploadLister
	records   syncRecordWriter
	heartbeat backupStateUpdater
	logger    *slog.Logger
	now       func() time.Time
}

// NewProcessor creates a processor.
func NewProcessor(options uploadOptions, uploads pendingUploadLister, records syncRecordWriter, heartbeat backupStateUpdater, logger *slog.Logger) *Processor {
	return &Processor{
		options:   options,
		uploads:   uploads,
		records:   records,
		heartbeat: heartbeat,
		logger:    logger,
		now:       time.Now,
	}
}

// Process runs one pass over the enabled buckets in order: primary photo,
// primary video, secondary photo, secondary video. Video buckets run
// only when videos are included and secondary buckets only when the
// secondary folder is enabled; both toggles are read once per run.
//
// A bucket whose resolution fails is recorded in the report and the run
// moves on. An unresolvable upload folder aborts the run. Cancellation is
// checked before every write; once a bucket's writes have started they
// complete, so a bucket never persists records without its watermark.
// The returned error then wraps both ErrCancelled and the context error.
func (p *Processor) Process(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartedAt: p.now(), Buckets: []BucketResult{}}
	defer func() { report.FinishedAt = p.now() }()

	logger := p.logger.With(slog.String("run_id", report.RunID))

	videos, err := p.options.IncludeVideos(ctx)
	if err != nil {
		return report, p.setupError(ctx, "reading video option", err)
	}

	secondary, err := p.options.IsSecondaryFolderEnabled(ctx)
	if err != nil {
		return report, p.setupError(ctx, "reading secondary folder option", err)
	}

	report.VideosEnabled = videos
	report.SecondaryEnabled = secondary

	primaryBuckets := []models.Bucket{models.PrimaryPhoto}
	secondaryBuckets := []models.Bucket{models.SecondaryPhoto}

	if videos {
		primaryBuckets = append(primaryBuckets, models.PrimaryVideo)
		secondaryBuckets = append(secondaryBuckets, models.SecondaryVideo)
	}

	if err := p.processGroup(ctx, logger, report, primaryBuckets, p.heartbeat.UpdatePrimaryFolderBackupState); err != nil {
		return report, err
	}

	if secondary {
		if err := p.processGroup(ctx, logger, report, secondaryBuckets, p.heartbeat.UpdateSecondaryFolderBackupState); err != nil {
			return report, err
		}
	}

	logger.Info("camera upload run complete",
		slog.Int("queued", report.Queued()),
		slog.Int("failed_buckets", len(report.Failed())),
	)

	return report, nil
}

func (p *Processor) processGroup(
	ctx context.Context,
	logger *slog.Logger,
	report *Report,
	buckets []models.Bucket,
	markActive func(context.Context, models.BackupState),
) error {
	for _, bucket := range buckets {
		res, err := p.processBucket(ctx, logger, bucket)
		report.Buckets = append(report.Buckets, res)

		if err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	markActive(ctx, models.BackupActive)

	return nil
}

func (p *Processor) processBucket(ctx context.Context, logger *slog.Logger, bucket models.Bucket) (BucketResult, error) {
	res := BucketResult{Bucket: bucket}
	logger = logger.With(slog.String("bucket", string(bucket)))

	if err := ctx.Err(); err != nil {
		return res, cancelled(err)
	}

	pending, err := p.uploads.GetPendingUploadList(ctx, bucket)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, cancelled(cmp.Or(ctx.Err(), err))
		}

		if errors.Is(err, apperrors.ErrUploadFolderUnresolved) {
			res.fail(err)
			return res, fmt.Errorf("%s: %w", bucket, err)
		}

		logger.Warn("resolving pending uploads", slog.String("error", err.Error()))
		res.fail(err)

		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, cancelled(err)
	}

	res.Scanned = pending.Scanned
	res.Skipped = pending.Skipped
	res.Watermark = pending.Watermark

	if len(pending.Records) > 0 {
		if err := p.records.SaveSyncRecords(pending.Records); err != nil {
			logger.Error("saving sync records", slog.String("error", err.Error()))
			res.fail(fmt.Errorf("saving %s records: %w", bucket, err))

			return res, nil
		}
	}

	if err := p.records.UpdateTimestamp(bucket, pending.Watermark); err != nil {
		logger.Error("advancing watermark", slog.String("error", err.Error()))
		res.fail(fmt.Errorf("advancing %s watermark: %w", bucket, err))

		return res, nil
	}

	res.Queued = len(pending.Records)

	logger.Debug("bucket committed",
		slog.Int("scanned", res.Scanned),
		slog.Int("queued", res.Queued),
		slog.Int64("watermark", res.Watermark),
	)

	return res, nil
}

func (p *Processor) setupError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return cancelled(ctx.Err())
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (b *BucketResult) fail(err error) {
	b.err = err
	b.Error = err.Error()
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrCancelled, err)
}
