package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultUserAgent is sent with every yt-dlp request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Config represents application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Download     DownloadConfig     `mapstructure:"download"`
	YTDLP        YTDLPConfig        `mapstructure:"ytdlp"`
	Performance  PerformanceConfig  `mapstructure:"performance"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// AppConfig represents application identity settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	UpdateOwner string `mapstructure:"update_owner"`
	UpdateRepo  string `mapstructure:"update_repo"`
}

// DownloadConfig represents the user-adjustable download settings
type DownloadConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	Mode          string `mapstructure:"mode"`
	QualityPreset string `mapstructure:"quality_preset"`
}

// YTDLPConfig represents yt-dlp invocation settings
type YTDLPConfig struct {
	BinaryPath          string            `mapstructure:"binary_path"`
	FFmpegDir           string            `mapstructure:"ffmpeg_dir"`
	Retries             int               `mapstructure:"retries"`
	FragmentRetries     int               `mapstructure:"fragment_retries"`
	SocketTimeout       time.Duration     `mapstructure:"socket_timeout"`
	ConcurrentFragments int               `mapstructure:"concurrent_fragments"`
	HTTPChunkSize       int64             `mapstructure:"http_chunk_size"`
	AudioBitrate        string            `mapstructure:"audio_bitrate"`
	AudioFormat         string            `mapstructure:"audio_format"`
	AudioQuality        string            `mapstructure:"audio_quality"`
	UserAgent           string            `mapstructure:"user_agent"`
	HTTPHeaders         map[string]string `mapstructure:"http_headers"`
}

// PerformanceConfig represents timing knobs for progress and polling
type PerformanceConfig struct {
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`
	TitleFetchTimeout time.Duration `mapstructure:"title_fetch_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
}

// HistoryConfig represents download history persistence settings
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig represents desktop notification settings
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: AppConfig{
			Name:        "Modern Video Downloader",
			Version:     "0.4.1",
			UpdateOwner: "NikiWay00",
			UpdateRepo:  "modern-video-downloader",
		},
		Download: DownloadConfig{
			OutputDir:     filepath.Join(home, "Downloads"),
			Mode:          string(ModeVideo),
			QualityPreset: QualityBest,
		},
		YTDLP: YTDLPConfig{
			BinaryPath:          "yt-dlp",
			Retries:             10,
			FragmentRetries:     10,
			SocketTimeout:       30 * time.Second,
			ConcurrentFragments: 4,
			HTTPChunkSize:       10 * 1024 * 1024,
			AudioBitrate:        "192k",
			AudioFormat:         "mp3",
			AudioQuality:        "192",
			UserAgent:           DefaultUserAgent,
			HTTPHeaders: map[string]string{
				"Accept":          "*/*",
				"Accept-Language": "en-US,en;q=0.9",
				"Referer":         "https://www.youtube.com/",
			},
		},
		Performance: PerformanceConfig{
			ProgressInterval:  100 * time.Millisecond,
			TitleFetchTimeout: 10 * time.Second,
			PollInterval:      80 * time.Millisecond,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: filepath.Join(home, ".mvd", "history.db"),
		},
		Notification: NotificationConfig{
			Enabled: true,
			Method:  defaultNotificationMethod(),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}

func defaultNotificationMethod() string {
	if runtime.GOOS == "darwin" {
		return "osascript"
	}
	return "notify-send"
}
