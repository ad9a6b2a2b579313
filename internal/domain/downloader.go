package domain

import (
	"context"

	"github.com/NikiWay00/modern-video-downloader/internal/progress"
)

// Mode selects what a download produces
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

// ValidMode reports whether mode is one of the supported download modes
func ValidMode(mode Mode) bool {
	return mode == ModeVideo || mode == ModeAudio
}

// DownloadRequest describes one single-item download operation
type DownloadRequest struct {
	URL       string
	Mode      Mode
	Quality   string // format expression slotted into the video fallback chain
	OutputDir string
}

// ProgressObserver receives progress snapshots and status transitions
// from an in-flight download. Implementations must tolerate calls from
// the worker goroutine.
type ProgressObserver interface {
	OnProgress(snapshot progress.Snapshot)
	OnStatus(message string)
}

// Downloader executes a single download and transcode operation.
// cancelled is polled cooperatively; when it reports true the
// implementation stops as soon as practical and returns a KindCancelled
// error.
type Downloader interface {
	Download(req DownloadRequest, obs ProgressObserver, cancelled func() bool) error
}

// InfoFetcher performs a metadata-only lookup, no download
type InfoFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}
