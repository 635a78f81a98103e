package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexjbarnes/camera-sync/internal/models"
)

type syncRecordStatusStore interface {
	SetSyncRecordStatus(bucket models.Bucket, localID string, status models.SyncStatus) (bool, error)
	DeleteSyncRecord(bucket models.Bucket, localID string) error
}

// UploadTracker moves camera upload sync records through their lifecycle
// as the engine reports upload progress: started on start, removed on a
// clean finish, failed on an error finish.
type UploadTracker struct {
	store  syncRecordStatusStore
	logger *slog.Logger
}

// NewUploadTracker creates a tracker.
func NewUploadTracker(store syncRecordStatusStore, logger *slog.Logger) *UploadTracker {
	return &UploadTracker{store: store, logger: logger}
}

// Run handles events from sub until ctx is cancelled.
func (u *UploadTracker) Run(ctx context.Context, sub *Subscription) error {
	return consume(ctx, sub, u.logger, u.Handle)
}

// Handle applies one event. Events for anything other than a camera
// upload are ignored.
func (u *UploadTracker) Handle(_ context.Context, e Event) error {
	if e.Transfer.Type != Upload {
		return nil
	}

	bucket, localID, ok := e.Transfer.CameraUpload()
	if !ok {
		return nil
	}

	switch e.Type {
	case EventStart:
		return u.setStatus(bucket, localID, models.SyncStarted)

	case EventFinish:
		if e.Failed() {
			return u.setStatus(bucket, localID, models.SyncFailed)
		}

		if err := u.store.DeleteSyncRecord(bucket, localID); err != nil {
			return fmt.Errorf("removing uploaded record %s/%s: %w", bucket, localID, err)
		}

		u.logger.Debug("camera upload complete", slog.String("bucket", string(bucket)), slog.String("local_id", localID))
	}

	return nil
}

func (u *UploadTracker) setStatus(bucket models.Bucket, localID string, status models.SyncStatus) error {
	found, err := u.store.SetSyncRecordStatus(bucket, localID, status)
	if err != nil {
		return fmt.Errorf("marking %s/%s %s: %w", bucket, localID, status, err)
	}

	if !found {
		u.logger.Debug("upload event for unknown sync record",
			slog.String("bucket", string(bucket)),
			slog.String("local_id", localID),
		)
	}

	return nil
}
