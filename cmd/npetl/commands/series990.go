package commands

import (
	"log/slog"

	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/series990"

	"github.com/spf13/cobra"
)

var seriesStartYear *int
var seriesEndYear *int

func init() {
	seriesStartYear = series990Cmd.Flags().Int("start-year", 0, "Oldest filing year to process, 0 for no bound.")
	seriesEndYear = series990Cmd.Flags().Int("end-year", 0, "Newest filing year to process, 0 for no bound.")
	rootCmd.AddCommand(series990Cmd)
}

var series990Cmd = &cobra.Command{
	Use:   "series990 [--start-year <year>] [--end-year <year>]",
	Short: "Flattens the full-text Form 990 XML archives per year and uploads CSV snapshots to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		client := fetchClient()
		scraper := series990.NewScraper(client, cfg.Series990.ListingURL)
		downloader := series990.NewDownloader(client, cfg.Series990.dataDir())
		processor := series990.NewProcessor(scraper, downloader, driveClient(ctx, cfg))

		uploaded, err := processor.ProcessYears(ctx, *seriesStartYear, *seriesEndYear)
		if err != nil {
			serviceutil.Fatal("series 990 run failed", err)
		}
		for year, file := range uploaded {
			slog.Info("uploaded", "year", year, "name", file.Name, "link", file.WebViewLink)
		}
	},
}
