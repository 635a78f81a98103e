package errors

import "errors"

// Pipeline errors.
var (
	ErrCancelled              = errors.New("operation cancelled")
	ErrUploadFolderUnresolved = errors.New("upload folder could not be resolved")
	ErrFingerprintUnavailable = errors.New("fingerprint unavailable")
)

// Transfer errors.
var (
	ErrSourceMissing = errors.New("source file missing")
)

// Server/transport errors.
var (
	ErrAPIRequest  = errors.New("API request failed")
	ErrAPIResponse = errors.New("unexpected API response")
)
