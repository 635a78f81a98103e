package camera

import (
	"context"
	"fmt"

	apperrors "github.com/alexjbarnes/camera-sync/internal/errors"
	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/alexjbarnes/camera-sync/internal/remote"
)

// nodeService is the subset of the remote client the fetcher needs.
type nodeService interface {
	UploadFolder(ctx context.Context, group models.BucketGroup) (*remote.Folder, error)
	Children(ctx context.Context, handle string) ([]remote.Node, error)
}

// syncStateReader is the read side of the persisted sync state.
type syncStateReader interface {
	SyncTimestamp(bucket models.Bucket) (int64, error)
	SyncRecords(bucket models.Bucket) ([]models.SyncRecord, error)
}

// Snapshot is everything known about a bucket before deduplication: the
// remote target folder and its contents, the bucket's watermark and its
// outstanding records.
type Snapshot struct {
	Bucket    models.Bucket
	Folder    remote.Folder
	Nodes     []remote.Node
	Watermark int64
	Records   []models.SyncRecord

	fingerprints map[string]struct{}
	recorded     map[string]struct{}
}

func newSnapshot(bucket models.Bucket, folder remote.Folder, nodes []remote.Node, watermark int64, records []models.SyncRecord) *Snapshot {
	s := &Snapshot{
		Bucket:       bucket,
		Folder:       folder,
		Nodes:        nodes,
		Watermark:    watermark,
		Records:      records,
		fingerprints: make(map[string]struct{}, len(nodes)+len(records)),
		recorded:     make(map[string]struct{}, len(records)),
	}

	for _, n := range nodes {
		if !n.Folder && n.Fingerprint != "" {
			s.fingerprints[n.Fingerprint] = struct{}{}
		}
	}

	for _, r := range records {
		s.recorded[r.LocalID] = struct{}{}
		if r.Fingerprint != "" {
			s.fingerprints[r.Fingerprint] = struct{}{}
		}
	}

	return s
}

// HasFingerprint reports whether fp belongs to a remote node or to an
// already queued record.
func (s *Snapshot) HasFingerprint(fp string) bool {
	_, ok := s.fingerprints[fp]
	return ok
}

// IsRecorded reports whether a local item already has a sync record.
func (s *Snapshot) IsRecorded(localID string) bool {
	_, ok := s.recorded[localID]
	return ok
}

// Fetcher gathers a bucket's Snapshot.
type Fetcher struct {
	nodes nodeService
	state syncStateReader
}

// NewFetcher creates a fetcher.
func NewFetcher(nodes nodeService, state syncStateReader) *Fetcher {
	return &Fetcher{nodes: nodes, state: state}
}

// Snapshot resolves the bucket's remote upload folder and loads its
// listing along with the local watermark and records. A group with no
// upload folder returns ErrUploadFolderUnresolved.
func (f *Fetcher) Snapshot(ctx context.Context, bucket models.Bucket) (*Snapshot, error) {
	folder, err := f.nodes.UploadFolder(ctx, bucket.Group())
	if err != nil {
		return nil, err
	}

	if folder == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUploadFolderUnresolved, bucket.Group())
	}

	nodes, err := f.nodes.Children(ctx, folder.Handle)
	if err != nil {
		return nil, err
	}

	watermark, err := f.state.SyncTimestamp(bucket)
	if err != nil {
		return nil, fmt.Errorf("reading %s watermark: %w", bucket, err)
	}

	records, err := f.state.SyncRecords(bucket)
	if err != nil {
		return nil, fmt.Errorf("reading %s records: %w", bucket, err)
	}

	return newSnapshot(bucket, *folder, nodes, watermark, records), nil
}
