// Package progress derives presentation-ready download snapshots from raw
// transfer events and rate-limits their delivery.
package progress

import (
	"math"
	"time"

	"github.com/NikiWay00/modern-video-downloader/internal/format"
)

// Raw is one progress event as reported by the external tool.
// Total and SpeedBPS are zero or negative when unknown; ETASeconds is
// negative when unknown.
type Raw struct {
	Downloaded int64
	Total      int64
	SpeedBPS   int64
	ETASeconds int64
	At         time.Time
}

// Snapshot is the formatted view of a Raw event, recomputed per tick
type Snapshot struct {
	Percent    float64
	Downloaded string
	Total      string
	Speed      string
	ETA        string
}

// NewSnapshot formats a raw event. Percent is 0 when the total size is
// unknown, otherwise clamped to [0, 100] and rounded to one decimal.
func NewSnapshot(raw Raw) Snapshot {
	var percent float64
	if raw.Total > 0 {
		percent = float64(raw.Downloaded) / float64(raw.Total) * 100
		percent = math.Round(percent*10) / 10
		percent = math.Min(100, math.Max(0, percent))
	}

	total := "?"
	if raw.Total > 0 {
		total = format.Bytes(raw.Total)
	}
	speed := "?"
	if raw.SpeedBPS > 0 {
		speed = format.Bytes(raw.SpeedBPS) + "/s"
	}

	return Snapshot{
		Percent:    percent,
		Downloaded: format.Bytes(raw.Downloaded),
		Total:      total,
		Speed:      speed,
		ETA:        format.Duration(raw.ETASeconds),
	}
}

// Debouncer limits progress delivery to at most one event per interval.
// Not safe for concurrent use; each download run drives its own instance.
type Debouncer struct {
	interval time.Duration
	last     time.Time
}

// NewDebouncer creates a debouncer with the given minimum interval
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Ready reports whether an event at now may pass, recording it if so.
// The first event always passes.
func (d *Debouncer) Ready(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.interval {
		return false
	}
	d.last = now
	return true
}
