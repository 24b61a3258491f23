package commands

import (
	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/master"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(masterCmd)
}

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Downloads the exempt-organization business master file and uploads a snapshot to Drive.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		downloader := master.NewDownloader(fetchClient(), cfg.Master.URLs)
		processor := master.NewProcessor(downloader, driveClient(ctx, cfg))

		if _, err := processor.ProcessAndUpload(ctx); err != nil {
			serviceutil.Fatal("master file run failed", err)
		}
	},
}
