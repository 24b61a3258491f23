// Package postcard processes the IRS Form 990-N (e-Postcard) extract, the
// annual electronic notice filed by small tax-exempt organizations.
package postcard

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

var tracer = otel.Tracer("services/postcard")

const DefaultURL = "https://apps.irs.gov/pub/epostcard/data-download-epostcard.zip"

// Columns is the fixed pipe-delimited schema of the e-Postcard extract.
var Columns = []string{
	"ein",
	"tax_year",
	"organization_name",
	"gross_receipts_not_greater_than",
	"organization_has_terminated",
	"tax_period_begin_date",
	"tax_period_end_date",
	"website_url",
	"principal_officer_name",
	"principal_officer_address_line_1",
	"principal_officer_address_line_2",
	"principal_officer_address_city",
	"principal_officer_address_province",
	"principal_officer_address_state",
	"principal_officer_address_zip_code",
	"principal_officer_address_country",
	"organization_mailing_address_line_1",
	"organization_mailing_address_line_2",
	"organization_mailing_address_city",
	"organization_mailing_address_province",
	"organization_mailing_address_state",
	"organization_mailing_address_postal_code",
	"organization_mailing_address_country",
	"organization_doing_business_as_name_1",
	"organization_doing_business_as_name_2",
	"organization_doing_business_as_name_3",
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

func (d *Downloader) Download(ctx context.Context) (tabular.Table, error) {
	ctx, span := tracer.Start(ctx, "postcard:Download")
	defer span.End()

	dir, err := os.MkdirTemp("", "postcard-*")
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
		return tabular.Table{}, fmt.Errorf("extract e-postcard archive: %w", err)
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
		return tabular.Table{}, fmt.Errorf("parse e-postcard data: %w", err)
	}

	slog.InfoContext(ctx, "parsed e-postcard data", "rows", len(table.Rows), "dropped", dropped)
	return table, nil
}
