// Package pub78 processes the IRS Publication 78 list of organizations
// eligible to receive tax-deductible contributions.
package pub78

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/fetch"
	"npetl-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/pub78")

const DefaultURL = "https://apps.irs.gov/pub/epostcard/data-download-pub78.zip"

// Columns is the fixed pipe-delimited schema of the Pub 78 extract.
var Columns = []string{
	"ein",
	"legal_name",
	"city",
	"state",
	"country",
	"deductibility_status",
}

type Downloader struct {
	client *fetch.Client
	url    string
}

func NewDownloader(client *fetch.Client, url string) *Downloader {
	if url == "" {
		url = DefaultURL
	}
	return &Downloader{client: client, url: url}
}

// Download fetches the zip, extracts the single pipe-delimited text file,
// and parses it against the declared columns. All local artifacts are
// removed whether or not parsing succeeds.
func (d *Downloader) Download(ctx context.Context) (tabular.Table, error) {
	ctx, span := tracer.Start(ctx, "pub78:Download")
	defer span.End()

	dir, err := os.MkdirTemp("", "pub78-*")
	if err != nil {
		return tabular.Table{}, err
	}
	defer archive.Cleanup(dir)

	zipPath, err := d.client.File(ctx, d.url, dir)
	if err != nil {
		span.SetStatus(codes.Error, "download failed")
		return tabular.Table{}, err
	}

	extractDir := filepath.Join(dir, "extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return tabular.Table{}, err
	}
	if err := archive.Extract(zipPath, extractDir); err != nil {
		span.SetStatus(codes.Error, "extract failed")
		return tabular.Table{}, fmt.Errorf("extract pub 78 archive: %w", err)
	}

	txtPath, err := archive.FindByExt(extractDir, ".txt")
	if err != nil {
		return tabular.Table{}, err
	}

	f, err := os.Open(txtPath)
	if err != nil {
		return tabular.Table{}, err
	}
	defer f.Close()

	table, dropped, err := tabular.ReadDelimited(f, "|", Columns)
	if err != nil {
		span.SetStatus(codes.Error, "parse failed")
		return tabular.Table{}, fmt.Errorf("parse pub 78 data: %w", err)
	}

	slog.InfoContext(ctx, "parsed pub 78 data", "rows", len(table.Rows), "dropped", dropped)
	return table, nil
}
