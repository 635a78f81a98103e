// Package mcpserver registers MCP tools that expose camera upload and SD
// card transfer state, and let a client trigger an upload run.
package mcpserver

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/alexjbarnes/camera-sync/internal/camera"
	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/alexjbarnes/camera-sync/internal/remote"
	"github.com/alexjbarnes/camera-sync/internal/transfer"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StateReader is the read side of the sync state store.
type StateReader interface {
	BackupStatuses() ([]models.BackupStatus, error)
	AllSyncRecords() ([]models.SyncRecord, error)
	AllSdTransfers() ([]models.SdTransfer, error)
}

// UploadRunner runs the upload pipeline on demand.
type UploadRunner interface {
	RunOnce(ctx context.Context) (*camera.Report, error)
	LastReport() *camera.Report
}

// TransferErrors exposes the last temporary transfer error.
type TransferErrors interface {
	TransferErrorState() *transfer.TransferError
	ClearTransferError()
}

// FolderLister lists top-level remote folders.
type FolderLister interface {
	RootFolders(ctx context.Context) ([]remote.Folder, error)
}

// Deps are the services the tools read from. Transfers may be nil when the
// transfer feed is disabled.
type Deps struct {
	State     StateReader
	Runner    UploadRunner
	Transfers TransferErrors
	Folders   FolderLister
}

// RegisterTools adds all camera-sync tools to the given MCP server.
func RegisterTools(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "camera_upload_status",
		Description: "Summarise camera upload state: heartbeat state of each folder group, the most recent upload run, queued record and SD card transfer counts, and the last temporary transfer error.",
	}, statusHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pending_uploads",
		Description: "List sync records queued for upload, oldest first. Optionally filter by bucket (primary_photo, primary_video, secondary_photo, secondary_video) or status (pending, started, failed).",
	}, listPendingHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sd_transfers",
		Description: "List in-flight downloads destined for the SD card, keyed by transfer tag.",
	}, listSdTransfersHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_camera_upload",
		Description: "Run the camera upload pipeline now and return its report. Joins a run already in progress instead of starting another.",
	}, runHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_transfer_error",
		Description: "Dismiss the last temporary transfer error, such as an exceeded quota, once it has been dealt with.",
	}, clearTransferErrorHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_remote_folders",
		Description: "List top-level folders in the cloud drive, for choosing camera upload targets.",
	}, listRemoteFoldersHandler(d))
}

// --- Input types ---
// The MCP SDK infers JSON schema from these struct types via jsonschema tags.

// StatusInput has no parameters.
type StatusInput struct{}

// ListPendingInput holds parameters for list_pending_uploads.
type ListPendingInput struct {
	Bucket string `json:"bucket,omitempty" jsonschema:"only records in this bucket"`
	Status string `json:"status,omitempty" jsonschema:"only records with this status"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of records, defaults to 100"`
}

// ListSdTransfersInput has no parameters.
type ListSdTransfersInput struct{}

// RunInput has no parameters.
type RunInput struct{}

// ClearTransferErrorInput has no parameters.
type ClearTransferErrorInput struct{}

// ListRemoteFoldersInput has no parameters.
type ListRemoteFoldersInput struct{}

// --- Output types ---

// StatusResult is the camera_upload_status output.
type StatusResult struct {
	Backups       []models.BackupStatus   `json:"backups"`
	LastRun       *camera.Report          `json:"last_run,omitempty"`
	Pending       int                     `json:"pending"`
	SdTransfers   int                     `json:"sd_transfers"`
	TransferError *transfer.TransferError `json:"transfer_error,omitempty"`
}

// PendingResult is the list_pending_uploads output.
type PendingResult struct {
	Records   []models.SyncRecord `json:"records"`
	Total     int                 `json:"total"`
	Truncated bool                `json:"truncated,omitempty"`
}

// SdTransfersResult is the list_sd_transfers output.
type SdTransfersResult struct {
	Transfers []models.SdTransfer `json:"transfers"`
}

// ClearResult is the clear_transfer_error output.
type ClearResult struct {
	Cleared *transfer.TransferError `json:"cleared,omitempty"`
}

// FoldersResult is the list_remote_folders output.
type FoldersResult struct {
	Folders []remote.Folder `json:"folders"`
}

const defaultPendingLimit = 100

// --- Handlers ---

func statusHandler(d Deps) mcp.ToolHandlerFor[StatusInput, *StatusResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, *StatusResult, error) {
		backups, err := d.State.BackupStatuses()
		if err != nil {
			return nil, nil, fmt.Errorf("reading backup states: %w", err)
		}

		records, err := d.State.AllSyncRecords()
		if err != nil {
			return nil, nil, fmt.Errorf("reading sync records: %w", err)
		}

		transfers, err := d.State.AllSdTransfers()
		if err != nil {
			return nil, nil, fmt.Errorf("reading sd transfers: %w", err)
		}

		result := &StatusResult{
			Backups:     backups,
			LastRun:     d.Runner.LastReport(),
			Pending:     len(records),
			SdTransfers: len(transfers),
		}

		if d.Transfers != nil {
			result.TransferError = d.Transfers.TransferErrorState()
		}

		return textResult(result), result, nil
	}
}

func listPendingHandler(d Deps) mcp.ToolHandlerFor[ListPendingInput, *PendingResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListPendingInput) (*mcp.CallToolResult, *PendingResult, error) {
		var bucket models.Bucket

		if input.Bucket != "" {
			b, err := models.ParseBucket(input.Bucket)
			if err != nil {
				return nil, nil, err
			}

			bucket = b
		}

		status := models.SyncStatus(input.Status)
		if status != "" && !status.Valid() {
			return nil, nil, fmt.Errorf("unknown status %q", input.Status)
		}

		records, err := d.State.AllSyncRecords()
		if err != nil {
			return nil, nil, fmt.Errorf("reading sync records: %w", err)
		}

		records = slices.DeleteFunc(records, func(r models.SyncRecord) bool {
			return (bucket != "" && r.Bucket != bucket) || (status != "" && r.Status != status)
		})

		slices.SortStableFunc(records, func(a, b models.SyncRecord) int {
			return cmp.Or(cmp.Compare(a.Timestamp, b.Timestamp), cmp.Compare(a.LocalID, b.LocalID))
		})

		limit := input.Limit
		if limit <= 0 {
			limit = defaultPendingLimit
		}

		result := &PendingResult{Records: records, Total: len(records)}
		if len(records) > limit {
			result.Records = records[:limit]
			result.Truncated = true
		}

		if result.Records == nil {
			result.Records = []models.SyncRecord{}
		}

		return textResult(result), result, nil
	}
}

func listSdTransfersHandler(d Deps) mcp.ToolHandlerFor[ListSdTransfersInput, *SdTransfersResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ListSdTransfersInput) (*mcp.CallToolResult, *SdTransfersResult, error) {
		transfers, err := d.State.AllSdTransfers()
		if err != nil {
			return nil, nil, fmt.Errorf("reading sd transfers: %w", err)
		}

		if transfers == nil {
			transfers = []models.SdTransfer{}
		}

		result := &SdTransfersResult{Transfers: transfers}

		return textResult(result), result, nil
	}
}

func runHandler(d Deps) mcp.ToolHandlerFor[RunInput, *camera.Report] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ RunInput) (*mcp.CallToolResult, *camera.Report, error) {
		report, err := d.Runner.RunOnce(ctx)
		if err != nil {
			return nil, nil, err
		}

		return textResult(report), report, nil
	}
}

func clearTransferErrorHandler(d Deps) mcp.ToolHandlerFor[ClearTransferErrorInput, *ClearResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ClearTransferErrorInput) (*mcp.CallToolResult, *ClearResult, error) {
		if d.Transfers == nil {
			return nil, nil, fmt.Errorf("transfer feed is not enabled")
		}

		result := &ClearResult{Cleared: d.Transfers.TransferErrorState()}
		d.Transfers.ClearTransferError()

		return textResult(result), result, nil
	}
}

func listRemoteFoldersHandler(d Deps) mcp.ToolHandlerFor[ListRemoteFoldersInput, *FoldersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListRemoteFoldersInput) (*mcp.CallToolResult, *FoldersResult, error) {
		folders, err := d.Folders.RootFolders(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("listing remote folders: %w", err)
		}

		if folders == nil {
			folders = []remote.Folder{}
		}

		result := &FoldersResult{Folders: folders}

		return textResult(result), result, nil
	}
}

// textResult builds a CallToolResult with JSON text content from any value.
// This provides the unstructured content alongside the structured output
// that the SDK populates automatically.
func textResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error marshaling result: %v", err)}},
			IsError: true,
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
