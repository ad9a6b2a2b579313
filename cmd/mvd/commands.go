package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
	"github.com/NikiWay00/modern-video-downloader/internal/infrastructure"
	"github.com/NikiWay00/modern-video-downloader/internal/updater"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently finished downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, zl, err := setup()
		if err != nil {
			return err
		}
		defer zl.Sync()

		repo, err := infrastructure.NewSQLiteHistoryRepository(cfg.History.DatabasePath)
		if err != nil {
			return err
		}
		entries, err := repo.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No downloads recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINISHED\tOUTCOME\tMODE\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.FinishedAt.Format("2006-01-02 15:04"),
				outcomeLabel(e.Outcome),
				e.Mode,
				e.Title)
		}
		return w.Flush()
	},
}

func outcomeLabel(outcome string) string {
	switch outcome {
	case domain.OutcomeCompleted:
		return color.GreenString(outcome)
	case domain.OutcomeFailed:
		return color.RedString(outcome)
	case domain.OutcomeCancelled:
		return color.YellowString(outcome)
	default:
		return outcome
	}
}

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check GitHub for a newer release",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, zl, err := setup()
		if err != nil {
			return err
		}
		defer zl.Sync()

		checker := updater.New(cfg.App.UpdateOwner, cfg.App.UpdateRepo, cfg.App.Version, zl)
		rel, err := checker.Check(context.Background())
		if err != nil {
			return err
		}
		if rel == nil {
			color.Green("You are running the latest version (%s)", cfg.App.Version)
			return nil
		}

		color.Cyan("Version %s is available (you have %s)", rel.Version, cfg.App.Version)
		fmt.Printf("Published: %s\nAsset: %s\nDownload: %s\n",
			rel.PublishedAt, rel.AssetName, rel.DownloadURL)
		if rel.Changelog != "" {
			fmt.Printf("\n%s\n", rel.Changelog)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := setup()
		if err != nil {
			cfg = domain.DefaultConfig()
		}
		fmt.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
}
