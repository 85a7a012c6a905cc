// ABOUTME: Tests for default display-name derivation
// ABOUTME: Stem cleanup rules and the metadata fallback path

package media

import (
	"testing"
)

func TestStemName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain", "/sounds/rain.ogg", "rain"},
		{"underscores", "/sounds/heavy_rain_loop.ogg", "heavy rain loop"},
		{"dashes", "/sounds/night-wind.flac", "night wind"},
		{"mixed separators", "/sounds/camp_fire-crackle.mp3", "camp fire crackle"},
		{"collapsed spaces", "/sounds/a__b--c.ogg", "a b c"},
		{"no extension", "/sounds/thunder", "thunder"},
		{"relative path", "birds.wav", "birds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StemName(tt.path); got != tt.want {
				t.Errorf("StemName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDisplayNameFallsBackToStem(t *testing.T) {
	// Unreadable paths have no metadata, so the stem rule applies
	if got := DisplayName("/nonexistent/forest_stream.ogg"); got != "forest stream" {
		t.Errorf("Expected stem fallback %q, got %q", "forest stream", got)
	}
}
