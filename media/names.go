// ABOUTME: Default display-name derivation for added sound files
// ABOUTME: Embedded title metadata first, cleaned file-name stem as fallback

// Package media covers the file-facing collaborators: deriving display
// names from sound files and tracking the budget of persisted file grants.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// DisplayName derives a default display name for the sound file at path.
// The embedded title tag wins when present; otherwise the file-name stem is
// used with separators normalized to spaces.
func DisplayName(path string) string {
	if title := metadataTitle(path); title != "" {
		return title
	}

	return StemName(path)
}

func metadataTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(meta.Title())
}

// StemName returns the file-name stem with underscores and dashes replaced
// by spaces.
func StemName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}

	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	return strings.Join(strings.Fields(base), " ")
}
