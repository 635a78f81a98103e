package camera

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SelectionFilter narrows which files in an upload folder are candidates.
// Patterns are shell globs matched case-insensitively against the base
// name. Hidden files are never candidates.
type SelectionFilter struct {
	Include []string `yaml:"include,omitempty"` // empty means every file
	Exclude []string `yaml:"exclude,omitempty"`
	MinSize int64    `yaml:"min_size,omitempty"`
}

// Allow reports whether a file with the given base name and size passes
// the filter. A nil filter only rejects hidden and empty files.
func (f *SelectionFilter) Allow(name string, size int64) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}

	if size <= 0 {
		return false
	}

	if f == nil {
		return true
	}

	if size < f.MinSize {
		return false
	}

	lower := strings.ToLower(name)

	for _, pattern := range f.Exclude {
		if globMatch(pattern, lower) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if globMatch(pattern, lower) {
			return true
		}
	}

	return false
}

// validate rejects malformed glob patterns up front so a typo fails the
// settings load instead of silently matching nothing.
func (f *SelectionFilter) validate() error {
	for _, group := range [][]string{f.Include, f.Exclude} {
		for _, pattern := range group {
			if _, err := filepath.Match(strings.ToLower(pattern), ""); err != nil {
				return fmt.Errorf("invalid selection pattern %q: %w", pattern, err)
			}
		}
	}

	if f.MinSize < 0 {
		return fmt.Errorf("selection.min_size must not be negative")
	}

	return nil
}

func globMatch(pattern, lowerName string) bool {
	ok, err := filepath.Match(strings.ToLower(pattern), lowerName)
	return err == nil && ok
}
