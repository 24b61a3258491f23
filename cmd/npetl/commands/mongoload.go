package commands

import (
	"log/slog"

	"npetl-backend/lib/batch"
	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/mongoload"

	"github.com/spf13/cobra"
)

var loadYear *int
var loadStartYear *int
var loadEndYear *int

func init() {
	loadYear = mongoloadCmd.Flags().Int("year", 0, "Load exactly this filing year.")
	loadStartYear = mongoloadCmd.Flags().Int("start-year", 0, "Oldest filing year to load, 0 for no bound.")
	loadEndYear = mongoloadCmd.Flags().Int("end-year", 0, "Newest filing year to load, 0 for no bound.")
	rootCmd.AddCommand(mongoloadCmd)
}

var mongoloadCmd = &cobra.Command{
	Use:   "mongo-load [--year <year> | --start-year <year> --end-year <year>]",
	Short: "Loads the newest series 990 snapshot per year from Drive into MongoDB.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		start, end := *loadStartYear, *loadEndYear
		if *loadYear != 0 {
			start, end = *loadYear, *loadYear
		}

		client, coll, err := mongoload.Connect(ctx, cfg.Mongo)
		if err != nil {
			serviceutil.Fatal("failed to connect to mongo", err)
		}
		defer client.Disconnect(ctx)

		svc := mongoload.NewService(
			driveClient(ctx, cfg),
			batch.NewMongoSink(coll),
			cfg.Series990.dataDir(),
		)
		total, err := svc.ProcessAll(ctx, start, end)
		if err != nil {
			serviceutil.Fatal("mongo load failed", err)
		}
		slog.Info("load complete", "documents", total)
	},
}
