package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NikiWay00/modern-video-downloader/internal/app"
	"github.com/NikiWay00/modern-video-downloader/internal/domain"
	"github.com/NikiWay00/modern-video-downloader/internal/infrastructure"
	"github.com/NikiWay00/modern-video-downloader/pkg/logger"
)

var (
	cfgFile     string
	modeFlag    string
	qualityFlag string
	outputFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "mvd [urls...]",
	Short: "Queue, download and transcode videos with yt-dlp and ffmpeg",
	Long: `mvd downloads one or more videos sequentially, converting video
downloads to MP4 (H.264/AAC) and audio downloads to MP3 for maximal
player compatibility.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.Flags().StringVar(&modeFlag, "mode", "", "download mode: video or audio")
	rootCmd.Flags().StringVar(&qualityFlag, "quality", "", `quality preset, e.g. "1080p (Full HD)"`)
	rootCmd.Flags().StringVar(&outputFlag, "output", "", "output directory")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkUpdateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger shared by all commands
func setup() (*domain.Config, *zap.Logger, error) {
	cfg, err := app.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	zl, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, zl, nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, zl, err := setup()
	if err != nil {
		return err
	}
	defer zl.Sync()

	if modeFlag != "" {
		if !domain.ValidMode(domain.Mode(modeFlag)) {
			return fmt.Errorf("invalid mode %q: must be video or audio", modeFlag)
		}
		cfg.Download.Mode = modeFlag
	}
	if qualityFlag != "" {
		cfg.Download.QualityPreset = qualityFlag
	}
	if outputFlag != "" {
		cfg.Download.OutputDir = outputFlag
	}

	downloader := infrastructure.NewYTDLPDownloader(&cfg.YTDLP, cfg.Performance.ProgressInterval, zl)
	titles := infrastructure.NewYTDLPInfoFetcher(&cfg.YTDLP, zl)

	var history domain.HistoryRepository
	if cfg.History.Enabled {
		repo, err := infrastructure.NewSQLiteHistoryRepository(cfg.History.DatabasePath)
		if err != nil {
			zl.Warn("Download history disabled", zap.Error(err))
		} else {
			history = repo
		}
	}
	notifier := infrastructure.NewNotificationService(&cfg.Notification, zl)

	orch := app.NewOrchestrator(downloader, titles, history, notifier, cfg, zl)
	for _, raw := range args {
		if _, err := orch.Enqueue(raw); err != nil {
			color.Red("Skipping %s: %v", raw, err)
		}
	}
	if len(orch.Snapshot()) == 0 {
		return fmt.Errorf("nothing to download")
	}

	// Ctrl-C requests cooperative cancellation instead of a hard exit
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		orch.RequestCancel()
	}()

	orch.StartRun()

	ticker := time.NewTicker(cfg.Performance.PollInterval)
	defer ticker.Stop()
	for range ticker.C {
		for _, msg := range orch.Poll() {
			if render(msg) {
				return nil
			}
		}
	}
	return nil
}

// render prints one output message, reporting whether the run finished
func render(msg domain.Message) bool {
	switch msg.Kind {
	case domain.MessageProgress:
		s := msg.Progress
		fmt.Printf("\r%5.1f%%  %s / %s  %s  ETA %s   ",
			s.Percent, s.Downloaded, s.Total, s.Speed, s.ETA)
	case domain.MessageStatus:
		fmt.Println()
		statusColor(msg.Text).Println(msg.Text)
	case domain.MessageLog:
		fmt.Println(msg.Text)
	case domain.MessageDetails:
		if msg.Text != "" {
			fmt.Println(msg.Text)
		}
	case domain.MessageShowError:
		color.New(color.FgRed, color.Bold).Printf("%s: %s\n", msg.Notice.Title, msg.Notice.Text)
	case domain.MessageDone:
		fmt.Println()
		return true
	}
	return false
}

// statusColor mirrors the status bar coloring of the desktop build
func statusColor(status string) *color.Color {
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, "complete"):
		return color.New(color.FgGreen)
	case strings.Contains(lower, "error"), strings.Contains(lower, "cancelled"):
		return color.New(color.FgRed)
	case strings.Contains(lower, "downloading"), strings.Contains(lower, "processing"):
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}
