package models

import "time"

// SdTransfer tracks a download destined for removable storage so it can
// be finalised after a process restart. One row exists per active tag.
type SdTransfer struct {
	Tag        int64     `json:"tag"`
	FileName   string    `json:"file_name"`
	TotalBytes int64     `json:"total_bytes"`
	NodeHandle string    `json:"node_handle"`
	Path       string    `json:"path"`
	AppData    string    `json:"app_data,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
