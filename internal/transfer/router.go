package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"github.com/alexjbarnes/camera-sync/internal/models"
)

//go:generate mockgen -source=router.go -destination=mock_router_test.go -package=transfer -mock_names=sdTransferStore=MockSdTransferStore,fileMover=MockFileMover

// sdTransferStore is the SdTransfer table. The router is its only writer.
type sdTransferStore interface {
	InsertSdTransfer(t models.SdTransfer) error
	SdTransfer(tag int64) (*models.SdTransfer, error)
	DeleteSdTransferByTag(tag int64) error
}

type fileMover interface {
	IsSDCardCachePath(path string) bool
	MoveFileToSDCard(ctx context.Context, src, destDir string, subFolders []string) (string, error)
}

// TransferError is the most recent temporary error reported by the
// transfer engine, such as an exceeded quota.
type TransferError struct {
	Tag      int64     `json:"tag"`
	FileName string    `json:"file_name"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Router follows downloads destined for the SD card. It records each one
// when it starts, moves finished files out of the staging cache and drops
// the record once the root transfer completes.
type Router struct {
	store  sdTransferStore
	mover  fileMover
	logger *slog.Logger
	now    func() time.Time

	wg sync.WaitGroup

	mu      sync.Mutex
	tempErr *TransferError
}

// NewRouter creates a router.
func NewRouter(store sdTransferStore, mover fileMover, logger *slog.Logger) *Router {
	return &Router{store: store, mover: mover, logger: logger, now: time.Now}
}

// Run handles events from sub until ctx is cancelled. The subscription is
// released and in-flight relocations are joined before it returns.
func (r *Router) Run(ctx context.Context, sub *Subscription) error {
	defer r.Wait()

	return consume(ctx, sub, r.logger, r.Handle)
}

// Wait blocks until all started relocations have finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Handle applies a single event. Only downloads that are SD card bound,
// by app data or by staging path, are considered; a temporary error of
// any transfer is recorded.
func (r *Router) Handle(ctx context.Context, e Event) error {
	if e.Type == EventTemporaryError {
		r.setTransferError(e)
		return nil
	}

	t := e.Transfer
	path := t.Path()

	if t.Type != Download || !(t.IsSDCardDownload() || r.mover.IsSDCardCachePath(path)) {
		return nil
	}

	switch e.Type {
	case EventStart:
		err := r.store.InsertSdTransfer(models.SdTransfer{
			Tag:        t.Tag,
			FileName:   t.FileName,
			TotalBytes: t.TotalBytes,
			NodeHandle: t.NodeHandle,
			Path:       path,
			AppData:    t.AppData,
		})
		if err != nil {
			return fmt.Errorf("recording sd transfer %d: %w", t.Tag, err)
		}

		r.logger.Debug("sd transfer started", slog.Int64("tag", t.Tag), slog.String("file", t.FileName))

	case EventFinish:
		if e.Failed() {
			r.logger.Debug("sd transfer finished with error, keeping record",
				slog.Int64("tag", t.Tag),
				slog.String("error", e.Error),
			)

			return nil
		}

		if !t.IsFolderTransfer {
			r.relocate(ctx, t)
		}

		if t.IsRootTransfer && t.IsSDCardDownload() {
			if err := r.store.DeleteSdTransferByTag(t.Tag); err != nil {
				return fmt.Errorf("removing sd transfer %d: %w", t.Tag, err)
			}
		}
	}

	return nil
}

// relocate starts moving a finished file to its destination without
// blocking event handling. The destination is resolved now, before the
// row can be deleted, from the event's app data or the stored row's.
func (r *Router) relocate(ctx context.Context, t Transfer) {
	dest, ok := t.Destination()
	if !ok {
		dest, ok = r.storedDestination(t.Tag)
	}

	if !ok {
		r.logger.Debug("no sd card destination for finished transfer", slog.Int64("tag", t.Tag))
		return
	}

	src := t.LocalPath
	moveCtx := context.WithoutCancel(ctx)

	r.wg.Go(func() {
		moved, err := r.mover.MoveFileToSDCard(moveCtx, src, dest.Path, dest.SubFolders)
		if err != nil {
			level := slog.LevelError
			if errors.Is(err, apperrors.ErrSourceMissing) {
				level = slog.LevelWarn
			}

			r.logger.Log(moveCtx, level, "moving download to sd card",
				slog.Int64("tag", t.Tag),
				slog.String("src", src),
				slog.String("error", err.Error()),
			)

			return
		}

		r.logger.Info("moved download to sd card", slog.Int64("tag", t.Tag), slog.String("path", moved))
	})
}

func (r *Router) storedDestination(tag int64) (Destination, bool) {
	row, err := r.store.SdTransfer(tag)
	if err != nil {
		r.logger.Warn("reading sd transfer", slog.Int64("tag", tag), slog.String("error", err.Error()))
		return Destination{}, false
	}

	if row == nil {
		return Destination{}, false
	}

	return parseDestination(row.AppData)
}

func (r *Router) setTransferError(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tempErr = &TransferError{
		Tag:      e.Transfer.Tag,
		FileName: e.Transfer.FileName,
		Message:  e.Error,
		At:       r.now(),
	}
}

// TransferErrorState returns the last temporary transfer error, or nil.
func (r *Router) TransferErrorState() *TransferError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tempErr == nil {
		return nil
	}

	te := *r.tempErr

	return &te
}

// ClearTransferError discards the recorded temporary error.
func (r *Router) ClearTransferError() {
	r.mu.Lock()
	r.tempErr = nil
	r.mu.Unlock()
}
