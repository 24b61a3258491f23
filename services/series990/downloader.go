package series990

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/batch"
	"npetl-backend/lib/datakind"
	"npetl-backend/lib/fetch"
	"npetl-backend/lib/flatten"

	"go.opentelemetry.io/otel/codes"
)

type Downloader struct {
	client  *fetch.Client
	dataDir string
}

func NewDownloader(client *fetch.Client, dataDir string) *Downloader {
	return &Downloader{client: client, dataDir: dataDir}
}

// ProcessYear downloads every archive for one filing year, flattens each
// filing, and materializes the lot as a single CSV under the data dir. The
// flattened records first land in a JSON-lines file so the full field set is
// known before the CSV header is written; a year can run to millions of
// filings and holding them in memory is not an option. The intermediate file
// is removed on success and kept on failure for inspection.
func (d *Downloader) ProcessYear(ctx context.Context, year int, urls []string) (string, error) {
	ctx, span := tracer.Start(ctx, "series990:ProcessYear")
	defer span.End()

	slog.InfoContext(ctx, "processing filing year", "year", year, "archives", len(urls))

	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return "", err
	}

	stamp := time.Now().Format("2006-01-02_150405")
	prefix := datakind.Series990.ArtifactPrefix()
	jsonlPath := filepath.Join(d.dataDir, fmt.Sprintf("%s_%d_data_temp_%s.jsonl", prefix, year, stamp))
	csvPath := filepath.Join(d.dataDir, fmt.Sprintf("%s_%d_data_%s.csv", prefix, year, stamp))

	fields, err := d.flattenYear(ctx, year, urls, jsonlPath)
	if err != nil {
		span.SetStatus(codes.Error, "flatten failed")
		return "", err
	}

	if err := materializeCSV(jsonlPath, csvPath, fields); err != nil {
		span.SetStatus(codes.Error, "csv materialization failed")
		return "", err
	}

	archive.Cleanup(jsonlPath)
	slog.InfoContext(ctx, "materialized year snapshot", "year", year, "path", csvPath, "fields", len(fields))
	return csvPath, nil
}

// flattenYear streams every filing of the year into the JSON-lines file and
// returns the ordered union of field names across all records.
func (d *Downloader) flattenYear(ctx context.Context, year int, urls []string, jsonlPath string) ([]string, error) {
	out, err := os.Create(jsonlPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	writer := batch.NewWriter(batch.NewFileSink(out))
	seen := map[string]bool{flatten.FileNameKey: true}

	for _, url := range urls {
		if err := d.flattenArchive(ctx, url, writer, seen); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "flattened year", "year", year, "filings", writer.Rows())
	return orderedFields(seen), nil
}

func (d *Downloader) flattenArchive(ctx context.Context, url string, writer *batch.Writer, seen map[string]bool) error {
	ctx, span := tracer.Start(ctx, "series990:flattenArchive")
	defer span.End()

	dir, err := os.MkdirTemp("", "series990-*")
	if err != nil {
		return err
	}
	defer archive.Cleanup(dir)

	zipPath, err := d.client.File(ctx, url, dir)
	if err != nil {
		span.SetStatus(codes.Error, "download failed")
		return err
	}

	extracted := filepath.Join(dir, "extracted")
	if err := archive.Extract(zipPath, extracted); err != nil {
		span.SetStatus(codes.Error, "extraction failed")
		return err
	}
	// the archive is not needed once extracted, and a year's worth of zips
	// would otherwise pile up in tmp
	archive.Cleanup(zipPath)

	filings, err := archive.FindAllByExt(extracted, ".xml")
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "extracted archive", "url", url, "filings", len(filings))

	skipped := 0
	for _, path := range filings {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rec, err := flatten.Filing(data, filepath.Base(path))
		if err != nil {
			// one malformed filing must not sink a multi-hour run
			slog.WarnContext(ctx, "skipping unparseable filing", "file", filepath.Base(path), "err", err)
			skipped++
			continue
		}
		for field := range rec {
			seen[field] = true
		}
		if err := writer.Add(ctx, rec); err != nil {
			return err
		}
		if writer.Rows()%1000 == 0 {
			slog.InfoContext(ctx, "flattened filings", "count", writer.Rows())
		}
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "skipped unparseable filings", "url", url, "skipped", skipped)
	}
	return nil
}

// orderedFields puts the provenance column first and the rest in sorted
// order so snapshot columns are stable across runs.
func orderedFields(seen map[string]bool) []string {
	rest := make([]string, 0, len(seen))
	for field := range seen {
		if field != flatten.FileNameKey {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	return append([]string{flatten.FileNameKey}, rest...)
}

// materializeCSV replays the JSON-lines file into a CSV with the given
// columns. Records missing a column get an empty cell.
func materializeCSV(jsonlPath, csvPath string, fields []string) error {
	in, err := os.Open(jsonlPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(fields); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	// flattened filings with large free-text fields overflow the default
	// scanner buffer
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	row := make([]string, len(fields))
	for scanner.Scan() {
		var rec flatten.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("replay %s: %w", jsonlPath, err)
		}
		for i, field := range fields {
			row[i] = rec[field]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
