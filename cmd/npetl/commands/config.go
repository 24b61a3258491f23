package commands

import (
	"context"

	"npetl-backend/lib/configutil"
	"npetl-backend/lib/fetch"
	"npetl-backend/lib/gdrive"
	"npetl-backend/lib/serviceutil"
	"npetl-backend/services/mongoload"
)

type DatasetConfig struct {
	URL string `json:"url"`
}

type MasterConfig struct {
	URLs []string `json:"urls"`
}

type Series990Config struct {
	ListingURL string `json:"listing_url"`
	// working directory for year snapshots, defaults to ./data
	DataDir string `json:"data_dir"`
}

func (c Series990Config) dataDir() string {
	if c.DataDir == "" {
		return "data"
	}
	return c.DataDir
}

type Config struct {
	Drive     gdrive.Config    `json:"drive"`
	Mongo     mongoload.Config `json:"mongo"`
	Pub78     DatasetConfig    `json:"pub78"`
	Postcard  DatasetConfig    `json:"postcard"`
	Master    MasterConfig     `json:"master"`
	Series990 Series990Config  `json:"series990"`
}

// loadConfig reads config.json5 and eagerly validates the Drive section;
// every command uploads or downloads through Drive, so a bad config fails
// before any multi-hour download starts.
func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config.json5", err)
	}
	if err := cfg.Drive.Validate(); err != nil {
		serviceutil.Fatal("invalid drive config", err)
	}
	return cfg
}

func driveClient(ctx context.Context, cfg Config) *gdrive.Client {
	client, err := gdrive.NewClient(ctx, cfg.Drive)
	if err != nil {
		serviceutil.Fatal("failed to create drive client", err)
	}
	return client
}

func fetchClient() *fetch.Client {
	return fetch.NewClient()
}
