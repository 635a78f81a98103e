// Package models defines types shared across internal packages.
package models

import (
	"fmt"
	"time"
)

// Bucket is one of the four local/remote media sync categories. It
// selects the local folder, the remote target folder and the watermark
// namespace for a media item.
type Bucket string

const (
	PrimaryPhoto   Bucket = "primary_photo"
	PrimaryVideo   Bucket = "primary_video"
	SecondaryPhoto Bucket = "secondary_photo"
	SecondaryVideo Bucket = "secondary_video"
)

// Buckets lists every bucket in processing order.
var Buckets = []Bucket{PrimaryPhoto, PrimaryVideo, SecondaryPhoto, SecondaryVideo}

// IsSecondary reports whether the bucket belongs to the secondary folder.
func (b Bucket) IsSecondary() bool {
	return b == SecondaryPhoto || b == SecondaryVideo
}

// IsVideo reports whether the bucket holds videos.
func (b Bucket) IsVideo() bool {
	return b == PrimaryVideo || b == SecondaryVideo
}

// Group returns the folder group the bucket reports heartbeats under.
func (b Bucket) Group() BucketGroup {
	if b.IsSecondary() {
		return SecondaryGroup
	}

	return PrimaryGroup
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	switch b {
	case PrimaryPhoto, PrimaryVideo, SecondaryPhoto, SecondaryVideo:
		return true
	}

	return false
}

// ParseBucket converts a bucket name into a Bucket.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown bucket %q", s)
	}

	return b, nil
}

// BucketGroup is the primary or secondary folder pair.
type BucketGroup string

const (
	PrimaryGroup   BucketGroup = "primary"
	SecondaryGroup BucketGroup = "secondary"
)

// Media is a candidate local media item found by a scan. It is never
// persisted directly; selected items become SyncRecords.
type Media struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Timestamp int64  `json:"timestamp"` // capture time, unix ms
	MimeType  string `json:"mime_type"`
	Bucket    Bucket `json:"bucket"`
}

// SyncStatus is the upload status of a SyncRecord.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncStarted SyncStatus = "started"
	SyncFailed  SyncStatus = "failed"
)

// Valid reports whether s is a known status.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncPending, SyncStarted, SyncFailed:
		return true
	}

	return false
}

// SyncRecord pairs a local media item with its remote destination.
// Records are keyed by Bucket and LocalID and deleted once the upload
// completes.
type SyncRecord struct {
	LocalID      string     `json:"local_id"`
	LocalPath    string     `json:"local_path"`
	Bucket       Bucket     `json:"bucket"`
	FileName     string     `json:"file_name"`
	Size         int64      `json:"size"`
	Timestamp    int64      `json:"timestamp"`
	Fingerprint  string     `json:"fingerprint,omitempty"`
	TargetHandle string     `json:"target_handle"`
	Status       SyncStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BackupState is the heartbeat signal for a folder group.
type BackupState string

const (
	BackupInactive BackupState = "inactive"
	BackupActive   BackupState = "active"
	BackupPaused   BackupState = "paused"
	BackupDisabled BackupState = "disabled"
)

// BackupStatus is the persisted heartbeat state of a folder group.
type BackupStatus struct {
	Group     BucketGroup `json:"group"`
	State     BackupState `json:"state"`
	UpdatedAt time.Time   `json:"updated_at"`
}
