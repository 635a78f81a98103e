// Package camera implements the camera upload pipeline: scanning local
// media folders, deduplicating candidates against the remote upload
// folders, persisting pending upload records and watermarks, and
// reporting backup heartbeat state.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alexjbarnes/camera-sync/internal/models"
	"gopkg.in/yaml.v3"
)

// defaultMTimeTolerance is how far apart a local capture time and a
// remote node's mtime may be for the fallback matcher to call them equal.
// Remote mtimes are stored with second precision.
const defaultMTimeTolerance = 2 * time.Second

// Settings are the user's camera upload preferences.
type Settings struct {
	PrimaryFolder    string          `yaml:"primary_folder"`
	SecondaryFolder  string          `yaml:"secondary_folder"`
	UploadVideos     bool            `yaml:"upload_videos"`
	SecondaryEnabled bool            `yaml:"secondary_enabled"`
	Selection        SelectionFilter `yaml:"selection"`
	Fallback         FallbackOptions `yaml:"fallback"`
}

// FallbackOptions tune the name/size/mtime dedup heuristic used when a
// fingerprint cannot be computed.
type FallbackOptions struct {
	MTimeTolerance time.Duration `yaml:"mtime_tolerance"`
}

// LocalFolder returns the local folder scanned for a bucket.
func (s *Settings) LocalFolder(bucket models.Bucket) string {
	if bucket.IsSecondary() {
		return s.SecondaryFolder
	}

	return s.PrimaryFolder
}

// SettingsFile reads Settings from a YAML file on every call so that
// changes apply on the next upload run without a restart.
type SettingsFile struct {
	path string
}

// NewSettingsFile returns a reader for the YAML file at path.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// Path returns the settings file location.
func (f *SettingsFile) Path() string {
	return f.path
}

// Load parses the settings file. A missing file yields default settings
// (no folders configured, so nothing to upload).
func (f *SettingsFile) Load(ctx context.Context) (*Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Settings{Fallback: FallbackOptions{MTimeTolerance: defaultMTimeTolerance}}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", f.path, err)
	}

	if err := s.resolve(filepath.Dir(f.path)); err != nil {
		return nil, err
	}

	return s, nil
}

// resolve makes relative folders absolute against the settings file's
// directory and validates the selection patterns.
func (s *Settings) resolve(base string) error {
	for _, p := range []*string{&s.PrimaryFolder, &s.SecondaryFolder} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if s.Fallback.MTimeTolerance < 0 {
		return fmt.Errorf("fallback.mtime_tolerance must not be negative")
	}

	return s.Selection.validate()
}

// Save writes settings to the file, creating its directory.
func (f *SettingsFile) Save(s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	return os.WriteFile(f.path, data, 0o600)
}

// IncludeVideos reports whether video buckets are uploaded.
func (f *SettingsFile) IncludeVideos(ctx context.Context) (bool, error) {
	s, err := f.Load(ctx)
	if err != nil {
		return false, err
	}

	return s.UploadVideos, nil
}

// IsSecondaryFolderEnabled reports whether the secondary folder is synced.
// A secondary toggle without a folder counts as disabled.
func (f *SettingsFile) IsSecondaryFolderEnabled(ctx context.Context) (bool, error) {
	s, err := f.Load(ctx)
	if err != nil {
		return false, err
	}

	return s.SecondaryEnabled && s.SecondaryFolder != "", nil
}
