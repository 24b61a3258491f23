package commands

import (
	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/pub78"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pub78Cmd)
}

var pub78Cmd = &cobra.Command{
	Use:   "pub78",
	Short: "Downloads the Publication 78 dataset and uploads a snapshot to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		downloader := pub78.NewDownloader(fetchClient(), cfg.Pub78.URL)
		processor := pub78.NewProcessor(downloader, driveClient(ctx, cfg))

		if _, err := processor.ProcessAndUpload(ctx); err != nil {
			serviceutil.Fatal("pub78 run failed", err)
		}
	},
}
