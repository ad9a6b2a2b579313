package infrastructure

import (
	"strconv"
	"strings"
	"time"

	"github.com/NikiWay00/modern-video-downloader/internal/progress"
)

var sizeUnits = []struct {
	suffix     string
	multiplier float64
}{
	{"TiB", 1 << 40},
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
	{"TB", 1e12},
	{"GB", 1e9},
	{"MB", 1e6},
	{"KB", 1e3},
	{"B", 1},
}

// parseDownloadLine parses the body of a yt-dlp "[download]" progress line,
// e.g. " 42.5% of 10.00MiB at 1.20MiB/s ETA 00:05". It returns the raw
// event, the reported percentage, and whether the line was a progress line
// at all.
func parseDownloadLine(content string, now time.Time) (progress.Raw, float64, bool) {
	fields := strings.Fields(content)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], "%") {
		return progress.Raw{}, 0, false
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return progress.Raw{}, 0, false
	}

	raw := progress.Raw{ETASeconds: -1, At: now}
	for i := 1; i < len(fields)-1; i++ {
		switch fields[i] {
		case "of":
			raw.Total = parseByteSize(fields[i+1])
			i++
		case "at":
			raw.SpeedBPS = parseByteSize(strings.TrimSuffix(fields[i+1], "/s"))
			i++
		case "ETA":
			raw.ETASeconds = parseClock(fields[i+1])
			i++
		}
	}
	if raw.Total > 0 {
		raw.Downloaded = int64(percent / 100 * float64(raw.Total))
	}
	return raw, percent, true
}

// parseByteSize converts a yt-dlp size token like "10.00MiB" or "~1.5GiB"
// to bytes. Returns 0 when the token is unknown or malformed.
func parseByteSize(token string) int64 {
	token = strings.TrimPrefix(strings.TrimSpace(token), "~")
	if token == "" || strings.HasPrefix(token, "Unknown") {
		return 0
	}
	for _, unit := range sizeUnits {
		if strings.HasSuffix(token, unit.suffix) {
			value, err := strconv.ParseFloat(strings.TrimSuffix(token, unit.suffix), 64)
			if err != nil {
				return 0
			}
			return int64(value * unit.multiplier)
		}
	}
	return 0
}

// parseClock converts "MM:SS" or "HH:MM:SS" to seconds, -1 when unknown
func parseClock(token string) int64 {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return -1
	}
	var seconds int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return -1
		}
		seconds = seconds*60 + n
	}
	return seconds
}
