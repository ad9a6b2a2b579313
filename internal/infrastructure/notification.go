package infrastructure

import (
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// NotificationService sends desktop notifications for terminal run states
type NotificationService struct {
	cfg    *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a notification service
func NewNotificationService(cfg *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{cfg: cfg, logger: logger}
}

// NotifyRunComplete announces that the queue finished draining
func (s *NotificationService) NotifyRunComplete(completed, failed int) {
	message := fmt.Sprintf("%d download(s) complete", completed)
	if failed > 0 {
		message = fmt.Sprintf("%d download(s) complete, %d failed", completed, failed)
	}
	s.send("Modern Video Downloader", message)
}

// NotifyRunCancelled announces that the queue run was cancelled
func (s *NotificationService) NotifyRunCancelled() {
	s.send("Modern Video Downloader", "Download queue cancelled")
}

// NotifyDownloadFailed announces a single failed item
func (s *NotificationService) NotifyDownloadFailed(title string, err error) {
	s.send("Download failed", fmt.Sprintf("%s: %v", truncateString(title, 60), err))
}

func (s *NotificationService) send(title, message string) {
	if s.cfg == nil || !s.cfg.Enabled {
		return
	}

	var cmd *exec.Cmd
	switch s.method() {
	case "osascript":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		cmd = exec.Command("osascript", "-e", script)
	case "notify-send":
		cmd = exec.Command("notify-send", title, message)
	default:
		s.logger.Debug("No notification method for this platform",
			zap.String("os", runtime.GOOS))
		return
	}

	if err := cmd.Run(); err != nil {
		// notifications are best-effort, never fail a download over them
		s.logger.Debug("Failed to send notification", zap.Error(err))
	}
}

func (s *NotificationService) method() string {
	if s.cfg.Method != "" {
		return s.cfg.Method
	}
	switch runtime.GOOS {
	case "darwin":
		return "osascript"
	case "linux":
		return "notify-send"
	default:
		return ""
	}
}

// truncateString bounds s to max characters, appending an ellipsis
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
