// Package master processes the IRS exempt-organization business master
// file, published as four regional CSV extracts.
package master

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/fetch"
	"npetl-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/master")

// DefaultURLs are the four regional extracts that together cover every
// registered exempt organization.
var DefaultURLs = []string{
	"https://www.irs.gov/pub/irs-soi/eo1.csv",
	"https://www.irs.gov/pub/irs-soi/eo2.csv",
	"https://www.irs.gov/pub/irs-soi/eo3.csv",
	"https://www.irs.gov/pub/irs-soi/eo4.csv",
}

type Downloader struct {
	client *fetch.Client
	urls   []string
}

func NewDownloader(client *fetch.Client, urls []string) *Downloader {
	if len(urls) == 0 {
		urls = DefaultURLs
	}
	return &Downloader{client: client, urls: urls}
}

// Download fetches every extract and concatenates them into one table.
// Any extract failing to download or parse aborts the run; the extracts
// only make sense as a complete set.
func (d *Downloader) Download(ctx context.Context) (tabular.Table, error) {
	ctx, span := tracer.Start(ctx, "master:Download")
	defer span.End()

	dir, err := os.MkdirTemp("", "master-*")
	if err != nil {
		return tabular.Table{}, err
	}
	defer archive.Cleanup(dir)

	var combined tabular.Table
	for _, url := range d.urls {
		path, err := d.client.File(ctx, url, dir)
		if err != nil {
			span.SetStatus(codes.Error, "download failed")
			return tabular.Table{}, err
		}

		f, err := os.Open(path)
		if err != nil {
			return tabular.Table{}, err
		}
		table, dropped, err := tabular.ReadCSV(f)
		f.Close()
		if err != nil {
			span.SetStatus(codes.Error, "parse failed")
			return tabular.Table{}, fmt.Errorf("parse %s: %w", url, err)
		}

		slog.InfoContext(ctx, "parsed master extract", "url", url, "rows", len(table.Rows), "dropped", dropped)
		combined.Append(table)
	}

	slog.InfoContext(ctx, "combined master extracts", "rows", len(combined.Rows), "columns", len(combined.Columns))
	return combined, nil
}
