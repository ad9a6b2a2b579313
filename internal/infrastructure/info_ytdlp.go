package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// YTDLPInfoFetcher performs metadata-only lookups through yt-dlp
type YTDLPInfoFetcher struct {
	cfg    *domain.YTDLPConfig
	logger *zap.Logger
}

// NewYTDLPInfoFetcher creates a yt-dlp backed metadata fetcher
func NewYTDLPInfoFetcher(cfg *domain.YTDLPConfig, logger *zap.Logger) *YTDLPInfoFetcher {
	return &YTDLPInfoFetcher{cfg: cfg, logger: logger}
}

// FetchTitle implements domain.InfoFetcher. The deadline on ctx bounds
// the whole lookup, including the subprocess lifetime.
func (f *YTDLPInfoFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	binary := f.cfg.BinaryPath
	if binary == "" {
		binary = "yt-dlp"
	}

	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(int(f.cfg.SocketTimeout / time.Second)),
		url,
	}
	f.logger.Debug("Fetching title", zap.String("url", url))

	output, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", domain.WrapToolError(string(exitErr.Stderr), err)
		}
		return "", domain.WrapError(domain.KindConfigurationMissing,
			fmt.Sprintf("cannot run %s", binary), err)
	}

	var info struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(output, &info); err != nil {
		return "", domain.WrapError(domain.KindDownloadFailed, "cannot decode video metadata", err)
	}
	if info.Title == "" {
		return "", domain.NewError(domain.KindDownloadFailed, "video metadata has no title")
	}
	return info.Title, nil
}
