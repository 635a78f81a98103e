package camera

import (
	"context"
	"log/slog"

	"github.com/alexjbarnes/camera-sync/internal/models"
)

type backupStateStore interface {
	SetBackupState(group models.BucketGroup, state models.BackupState) error
}

type heartbeatReporter interface {
	ReportHeartbeat(ctx context.Context, group models.BucketGroup, state models.BackupState) error
}

// Heartbeat records folder group backup state locally and, when a
// reporter is set, forwards it to the API. Failures are logged and never
// surface to the upload run.
type Heartbeat struct {
	store    backupStateStore
	reporter heartbeatReporter
	logger   *slog.Logger
}

// NewHeartbeat creates a heartbeat. reporter may be nil.
func NewHeartbeat(store backupStateStore, reporter heartbeatReporter, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{store: store, reporter: reporter, logger: logger}
}

func (h *Heartbeat) UpdatePrimaryFolderBackupState(ctx context.Context, state models.BackupState) {
	h.update(ctx, models.PrimaryGroup, state)
}

func (h *Heartbeat) UpdateSecondaryFolderBackupState(ctx context.Context, state models.BackupState) {
	h.update(ctx, models.SecondaryGroup, state)
}

func (h *Heartbeat) update(ctx context.Context, group models.BucketGroup, state models.BackupState) {
	if err := h.store.SetBackupState(group, state); err != nil {
		h.logger.Warn("persisting backup state",
			slog.String("group", string(group)),
			slog.String("error", err.Error()),
		)
	}

	if h.reporter == nil {
		return
	}

	if err := h.reporter.ReportHeartbeat(ctx, group, state); err != nil {
		h.logger.Warn("reporting backup heartbeat",
			slog.String("group", string(group)),
			slog.String("error", err.Error()),
		)
	}
}
