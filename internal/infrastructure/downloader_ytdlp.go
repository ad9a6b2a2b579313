package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
	"github.com/NikiWay00/modern-video-downloader/internal/progress"
)

const (
	cancelPollInterval = 100 * time.Millisecond
	outputTemplate     = "%(title)s.%(ext)s"
)

// videoFormatChain builds the format fallback chain for video mode. The
// ordering is a compatibility contract: MP4+M4A up to 4K for maximal
// player compatibility, then any best MP4, then the caller-supplied
// quality expression, then best video+audio of any container, then the
// absolute best single stream.
func videoFormatChain(quality string) string {
	return strings.Join([]string{
		"bestvideo[ext=mp4][height<=2160]+bestaudio[ext=m4a]",
		"best[ext=mp4]",
		quality,
		"bestvideo+bestaudio",
		"best",
	}, "/")
}

// YTDLPDownloader runs yt-dlp as a subprocess for a single queue item,
// translating its line output into progress snapshots and status
// transitions.
type YTDLPDownloader struct {
	cfg              *domain.YTDLPConfig
	progressInterval time.Duration
	logger           *zap.Logger
}

// NewYTDLPDownloader creates a yt-dlp backed downloader
func NewYTDLPDownloader(cfg *domain.YTDLPConfig, progressInterval time.Duration, logger *zap.Logger) *YTDLPDownloader {
	return &YTDLPDownloader{
		cfg:              cfg,
		progressInterval: progressInterval,
		logger:           logger,
	}
}

// Download implements domain.Downloader
func (d *YTDLPDownloader) Download(req domain.DownloadRequest, obs domain.ProgressObserver, cancelled func() bool) error {
	if !domain.ValidMode(req.Mode) {
		return domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("invalid mode %q: must be %q or %q", req.Mode, domain.ModeVideo, domain.ModeAudio))
	}

	binary, err := d.resolveBinary()
	if err != nil {
		return err
	}
	ffmpegDir, err := d.resolveFFmpegDir()
	if err != nil {
		obs.OnStatus(domain.StatusError(err.Error()))
		return err
	}
	if err := EnsureDir(req.OutputDir); err != nil {
		return err
	}

	args := d.buildArgs(req, ffmpegDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The per-line cancellation check stalls when yt-dlp stops producing
	// output, so a watcher kills the process shortly after the flag flips.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		ticker := time.NewTicker(cancelPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-watchDone:
				return
			case <-ticker.C:
				if cancelled() {
					cancel()
					return
				}
			}
		}
	}()

	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.WrapError(domain.KindDownloadFailed, "cannot attach to yt-dlp output", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	d.logger.Info("Starting download",
		zap.String("url", req.URL),
		zap.String("mode", string(req.Mode)),
		zap.String("command", ShellEscapeCommand(binary, args...)))
	obs.OnStatus(domain.StatusDownloading)

	if err := cmd.Start(); err != nil {
		return domain.WrapError(domain.KindConfigurationMissing,
			fmt.Sprintf("cannot start %s", binary), err)
	}

	run := newRunReporter(obs, progress.NewDebouncer(d.progressInterval))
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if cancelled() {
			cancel()
			break
		}
		run.handleLine(scanner.Text(), time.Now())
	}
	waitErr := cmd.Wait()

	if cancelled() || ctx.Err() == context.Canceled {
		obs.OnStatus(domain.StatusCancelled)
		d.logger.Info("Download cancelled", zap.String("url", req.URL))
		return domain.NewError(domain.KindCancelled, "download cancelled by user")
	}

	if waitErr != nil {
		raw := strings.TrimSpace(stderr.String())
		if raw == "" {
			raw = waitErr.Error()
		}
		derr := domain.WrapToolError(raw, waitErr)
		d.logger.Error("Download failed",
			zap.String("url", req.URL),
			zap.String("kind", string(derr.Kind)),
			zap.Error(waitErr))
		obs.OnStatus(domain.StatusError(lastLine(raw)))
		return derr
	}

	obs.OnStatus(domain.StatusComplete)
	d.logger.Info("Download completed", zap.String("url", req.URL))
	return nil
}

func (d *YTDLPDownloader) resolveBinary() (string, error) {
	binary := d.cfg.BinaryPath
	if binary == "" {
		binary = "yt-dlp"
	}
	if strings.ContainsRune(binary, os.PathSeparator) {
		if _, err := os.Stat(binary); err != nil {
			return "", domain.WrapError(domain.KindConfigurationMissing,
				fmt.Sprintf("yt-dlp not found, expected it at %s", binary), err)
		}
		return binary, nil
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", domain.WrapError(domain.KindConfigurationMissing,
			fmt.Sprintf("%s not found in PATH", binary), err)
	}
	return path, nil
}

// resolveFFmpegDir returns the configured ffmpeg directory, or "" when
// ffmpeg is resolvable from PATH and no explicit directory is set.
func (d *YTDLPDownloader) resolveFFmpegDir() (string, error) {
	if dir := d.cfg.FFmpegDir; dir != "" {
		for _, name := range []string{"ffmpeg", "ffmpeg.exe"} {
			if fileExists(filepath.Join(dir, name)) {
				return dir, nil
			}
		}
		return "", domain.NewError(domain.KindConfigurationMissing,
			fmt.Sprintf("ffmpeg not found, expected it under %s", dir))
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", domain.WrapError(domain.KindConfigurationMissing,
			"ffmpeg not found in PATH", err)
	}
	return "", nil
}

func (d *YTDLPDownloader) buildArgs(req domain.DownloadRequest, ffmpegDir string) []string {
	args := []string{
		"--newline",
		"--no-playlist",
		"--no-warnings",
		"-o", filepath.Join(req.OutputDir, outputTemplate),
		"--retries", strconv.Itoa(d.cfg.Retries),
		"--fragment-retries", strconv.Itoa(d.cfg.FragmentRetries),
		"--socket-timeout", strconv.Itoa(int(d.cfg.SocketTimeout / time.Second)),
		"--concurrent-fragments", strconv.Itoa(d.cfg.ConcurrentFragments),
		"--http-chunk-size", strconv.FormatInt(d.cfg.HTTPChunkSize, 10),
	}
	if d.cfg.UserAgent != "" {
		args = append(args, "--user-agent", d.cfg.UserAgent)
	}
	headers := make([]string, 0, len(d.cfg.HTTPHeaders))
	for key := range d.cfg.HTTPHeaders {
		headers = append(headers, key)
	}
	sort.Strings(headers)
	for _, key := range headers {
		args = append(args, "--add-headers", key+":"+d.cfg.HTTPHeaders[key])
	}
	if ffmpegDir != "" {
		args = append(args, "--ffmpeg-location", ffmpegDir)
	}

	switch req.Mode {
	case domain.ModeVideo:
		args = append(args,
			"-f", videoFormatChain(req.Quality),
			"--merge-output-format", "mp4",
			"--postprocessor-args", "ffmpeg:-c:v copy -c:a aac -b:a "+d.cfg.AudioBitrate,
		)
	case domain.ModeAudio:
		args = append(args,
			"-f", "bestaudio/best",
			"--extract-audio",
			"--audio-format", d.cfg.AudioFormat,
			"--audio-quality", d.cfg.AudioQuality,
		)
	}
	return append(args, req.URL)
}

// runReporter tracks per-run reporting state while scanning yt-dlp output
type runReporter struct {
	obs        domain.ProgressObserver
	debounce   *progress.Debouncer
	processing bool
}

func newRunReporter(obs domain.ProgressObserver, debounce *progress.Debouncer) *runReporter {
	return &runReporter{obs: obs, debounce: debounce}
}

var postProcessMarkers = []string{
	"[Merger]",
	"[ExtractAudio]",
	"[VideoConvertor]",
	"[FixupM4a]",
	"[ffmpeg]",
}

func (r *runReporter) handleLine(line string, now time.Time) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if strings.HasPrefix(trimmed, "[download]") {
		content := strings.TrimSpace(strings.TrimPrefix(trimmed, "[download]"))
		raw, percent, ok := parseDownloadLine(content, now)
		if !ok {
			return
		}
		if percent >= 100 {
			// a stream finished downloading, post-processing comes next
			r.markProcessing()
			return
		}
		if !r.debounce.Ready(now) {
			return
		}
		r.obs.OnProgress(progress.NewSnapshot(raw))
		return
	}

	for _, marker := range postProcessMarkers {
		if strings.HasPrefix(trimmed, marker) {
			r.markProcessing()
			return
		}
	}
}

// markProcessing reports the processing transition at most once per run
func (r *runReporter) markProcessing() {
	if r.processing {
		return
	}
	r.processing = true
	r.obs.OnStatus(domain.StatusProcessing)
}

// lastLine extracts the last non-empty line of raw tool output, which for
// yt-dlp is the actual error, and bounds it for status bar display.
func lastLine(raw string) string {
	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return truncateString(line, 200)
		}
	}
	return truncateString(strings.TrimSpace(raw), 200)
}
