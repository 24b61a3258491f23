package commands

import (
	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/postcard"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(postcardCmd)
}

var postcardCmd = &cobra.Command{
	Use:   "postcard",
	Short: "Downloads the 990-N e-Postcard dataset and uploads a snapshot to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		downloader := postcard.NewDownloader(fetchClient(), cfg.Postcard.URL)
		processor := postcard.NewProcessor(downloader, driveClient(ctx, cfg))

		if _, err := processor.ProcessAndUpload(ctx); err != nil {
			serviceutil.Fatal("postcard run failed", err)
		}
	},
}
