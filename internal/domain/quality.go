package domain

import (
	"fmt"
	"strings"
)

// QualityBest is the automatic quality preset
const QualityBest = "Best (auto)"

// QualityPresets lists the selectable presets, best first
var QualityPresets = []string{
	QualityBest,
	"2160p (4K)",
	"1440p (2K)",
	"1080p (Full HD)",
	"720p (HD)",
	"480p",
}

var presetHeights = []struct {
	marker string
	height int
}{
	{"2160", 2160},
	{"1440", 1440},
	{"1080", 1080},
	{"720", 720},
	{"480", 480},
}

// QualityFormat converts a preset label into the yt-dlp format expression
// slotted into the video fallback chain. Unrecognized labels behave like
// QualityBest.
func QualityFormat(preset string) string {
	lower := strings.ToLower(preset)
	for _, p := range presetHeights {
		if strings.Contains(lower, p.marker) {
			return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best/best", p.height)
		}
	}
	return "bestvideo+bestaudio/best"
}
