package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// LoadConfig loads configuration from file and environment variables.
// An empty configPath falls back to the default search locations; a
// missing config file is not an error, defaults apply.
func LoadConfig(configPath string) (*domain.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mvd"))
		}
	}

	v.SetEnvPrefix("MVD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, domain.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig persists the current configuration as YAML, creating the
// parent directory if needed.
func SaveConfig(cfg *domain.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *domain.Config) {
	v.SetDefault("app.name", cfg.App.Name)
	v.SetDefault("app.version", cfg.App.Version)
	v.SetDefault("app.update_owner", cfg.App.UpdateOwner)
	v.SetDefault("app.update_repo", cfg.App.UpdateRepo)

	v.SetDefault("download.output_dir", cfg.Download.OutputDir)
	v.SetDefault("download.mode", cfg.Download.Mode)
	v.SetDefault("download.quality_preset", cfg.Download.QualityPreset)

	v.SetDefault("ytdlp.binary_path", cfg.YTDLP.BinaryPath)
	v.SetDefault("ytdlp.ffmpeg_dir", cfg.YTDLP.FFmpegDir)
	v.SetDefault("ytdlp.retries", cfg.YTDLP.Retries)
	v.SetDefault("ytdlp.fragment_retries", cfg.YTDLP.FragmentRetries)
	v.SetDefault("ytdlp.socket_timeout", cfg.YTDLP.SocketTimeout)
	v.SetDefault("ytdlp.concurrent_fragments", cfg.YTDLP.ConcurrentFragments)
	v.SetDefault("ytdlp.http_chunk_size", cfg.YTDLP.HTTPChunkSize)
	v.SetDefault("ytdlp.audio_bitrate", cfg.YTDLP.AudioBitrate)
	v.SetDefault("ytdlp.audio_format", cfg.YTDLP.AudioFormat)
	v.SetDefault("ytdlp.audio_quality", cfg.YTDLP.AudioQuality)
	v.SetDefault("ytdlp.user_agent", cfg.YTDLP.UserAgent)
	v.SetDefault("ytdlp.http_headers", cfg.YTDLP.HTTPHeaders)

	v.SetDefault("performance.progress_interval", cfg.Performance.ProgressInterval)
	v.SetDefault("performance.title_fetch_timeout", cfg.Performance.TitleFetchTimeout)
	v.SetDefault("performance.poll_interval", cfg.Performance.PollInterval)

	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.database_path", cfg.History.DatabasePath)

	v.SetDefault("notification.enabled", cfg.Notification.Enabled)
	v.SetDefault("notification.method", cfg.Notification.Method)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output_path", cfg.Logging.OutputPath)
}

func expandPaths(cfg *domain.Config) {
	cfg.Download.OutputDir = expandPath(cfg.Download.OutputDir)
	cfg.History.DatabasePath = expandPath(cfg.History.DatabasePath)
	cfg.YTDLP.FFmpegDir = expandPath(cfg.YTDLP.FFmpegDir)
	if p := cfg.Logging.OutputPath; p != "stdout" && p != "stderr" {
		cfg.Logging.OutputPath = expandPath(p)
	}
}

// expandPath resolves a leading ~ and environment variables
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

func validateConfig(cfg *domain.Config) error {
	if !domain.ValidMode(domain.Mode(cfg.Download.Mode)) {
		return fmt.Errorf("invalid download.mode %q", cfg.Download.Mode)
	}
	if strings.TrimSpace(cfg.Download.OutputDir) == "" {
		return fmt.Errorf("download.output_dir must not be empty")
	}
	if cfg.YTDLP.Retries < 0 || cfg.YTDLP.FragmentRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	if cfg.YTDLP.ConcurrentFragments < 1 {
		return fmt.Errorf("ytdlp.concurrent_fragments must be at least 1")
	}
	if cfg.YTDLP.SocketTimeout <= 0 {
		return fmt.Errorf("ytdlp.socket_timeout must be positive")
	}
	if cfg.Performance.ProgressInterval <= 0 {
		return fmt.Errorf("performance.progress_interval must be positive")
	}
	if cfg.Performance.PollInterval <= 0 {
		return fmt.Errorf("performance.poll_interval must be positive")
	}
	return nil
}
