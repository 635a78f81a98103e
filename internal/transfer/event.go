// Package transfer consumes the transfer engine's lifecycle event feed.
// It finalises downloads destined for removable storage and tracks the
// progress of camera uploads against their sync records.
package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/tidwall/gjson"
)

// EventType is the lifecycle stage an event reports.
type EventType string

const (
	EventStart          EventType = "start"
	EventUpdate         EventType = "update"
	EventFinish         EventType = "finish"
	EventTemporaryError EventType = "temporary_error"
	EventPause          EventType = "pause"
)

func (t EventType) valid() bool {
	switch t {
	case EventStart, EventUpdate, EventFinish, EventTemporaryError, EventPause:
		return true
	}

	return false
}

// Type is the direction of a transfer.
type Type string

const (
	Download Type = "download"
	Upload   Type = "upload"
)

// Transfer describes one transfer as reported by the engine.
type Transfer struct {
	Tag              int64  `json:"tag"`
	Type             Type   `json:"type"`
	FileName         string `json:"file_name"`
	TotalBytes       int64  `json:"total_bytes"`
	NodeHandle       string `json:"node_handle"`
	LocalPath        string `json:"local_path"`
	ParentPath       string `json:"parent_path"`
	AppData          string `json:"app_data,omitempty"`
	IsFolderTransfer bool   `json:"is_folder"`
	IsRootTransfer   bool   `json:"is_root"`
}

// Event is a single transfer lifecycle notification.
type Event struct {
	Type     EventType `json:"type"`
	Transfer Transfer  `json:"transfer"`
	Error    string    `json:"error,omitempty"`
}

// Failed reports whether the event carries an error.
func (e Event) Failed() bool { return e.Error != "" }

// Path is the transfer's local path, or its parent path for transfers
// that have not been assigned a file path yet.
func (t Transfer) Path() string {
	if t.LocalPath != "" {
		return t.LocalPath
	}

	return t.ParentPath
}

// Destination is where a completed SD card download belongs.
type Destination struct {
	Path       string
	SubFolders []string
}

// IsSDCardDownload reports whether the transfer is a download whose app
// data names an SD card destination.
func (t Transfer) IsSDCardDownload() bool {
	if t.Type != Download {
		return false
	}

	_, ok := parseDestination(t.AppData)

	return ok
}

// Destination returns the SD card destination from the app data.
func (t Transfer) Destination() (Destination, bool) {
	return parseDestination(t.AppData)
}

// CameraUpload returns the sync record an upload belongs to.
func (t Transfer) CameraUpload() (models.Bucket, string, bool) {
	if t.AppData == "" || !gjson.Valid(t.AppData) {
		return "", "", false
	}

	cu := gjson.Get(t.AppData, "camera_upload")
	bucket, err := models.ParseBucket(cu.Get("bucket").String())
	localID := cu.Get("local_id").String()

	if err != nil || localID == "" {
		return "", "", false
	}

	return bucket, localID, true
}

// parseDestination reads sd_card.target_path and sd_card.sub_folders
// from transfer app data.
func parseDestination(appData string) (Destination, bool) {
	if appData == "" || !gjson.Valid(appData) {
		return Destination{}, false
	}

	sd := gjson.Get(appData, "sd_card")

	target := sd.Get("target_path").String()
	if target == "" {
		return Destination{}, false
	}

	d := Destination{Path: target}
	for _, sub := range sd.Get("sub_folders").Array() {
		if s := sub.String(); s != "" {
			d.SubFolders = append(d.SubFolders, s)
		}
	}

	return d, true
}

// decodeEvent parses a feed message. ok is false for messages that are
// not transfer events (keepalives, unknown types).
func decodeEvent(data []byte) (Event, bool, error) {
	if !gjson.ValidBytes(data) {
		return Event{}, false, fmt.Errorf("invalid JSON message")
	}

	if !EventType(gjson.GetBytes(data, "type").String()).valid() {
		return Event{}, false, nil
	}

	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, false, fmt.Errorf("decoding transfer event: %w", err)
	}

	return e, true, nil
}
