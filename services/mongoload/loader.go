package mongoload

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/batch"
	"npetl-backend/lib/gdrive"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/mongoload")

// DriveSource is the slice of the Drive client the loader needs.
type DriveSource interface {
	ListRecentSeriesFiles(ctx context.Context) (map[int]gdrive.YearFile, error)
	Download(ctx context.Context, fileID, dest string) error
}

type Service struct {
	drive   DriveSource
	sink    batch.Sink
	dataDir string
}

func NewService(drive DriveSource, sink batch.Sink, dataDir string) *Service {
	return &Service{drive: drive, sink: sink, dataDir: dataDir}
}

// ProcessAll loads the newest snapshot of every year in [startYear, endYear]
// into the collection. A year that fails is logged and the rest still load.
// Either bound may be zero to leave that side open. Returns the number of
// documents inserted across all years.
func (s *Service) ProcessAll(ctx context.Context, startYear, endYear int) (int, error) {
	ctx, span := tracer.Start(ctx, "mongoload:ProcessAll")
	defer span.End()

	byYear, err := s.drive.ListRecentSeriesFiles(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "listing snapshots failed")
		return 0, err
	}
	slog.InfoContext(ctx, "found year snapshots", "years", len(byYear))

	total := 0
	for _, year := range gdrive.SortedYears(byYear) {
		if startYear != 0 && year < startYear {
			continue
		}
		if endYear != 0 && year > endYear {
			continue
		}

		inserted, err := s.ProcessYear(ctx, byYear[year])
		if err != nil {
			slog.ErrorContext(ctx, "year failed to load", "year", year, "err", err)
			continue
		}
		total += inserted
	}

	slog.InfoContext(ctx, "finished loading", "documents", total)
	return total, nil
}

// ProcessYear downloads one year's snapshot, rebuilds each row into a nested
// document tagged with its filing year, and batch-inserts the lot.
func (s *Service) ProcessYear(ctx context.Context, file gdrive.YearFile) (int, error) {
	ctx, span := tracer.Start(ctx, "mongoload:ProcessYear")
	defer span.End()

	slog.InfoContext(ctx, "loading year", "year", file.Year, "snapshot", file.Name)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return 0, err
	}
	dir, err := os.MkdirTemp(s.dataDir, fmt.Sprintf("load-%d-*", file.Year))
	if err != nil {
		return 0, err
	}
	defer archive.Cleanup(dir)

	zipPath := filepath.Join(dir, file.Name)
	if err := s.drive.Download(ctx, file.ID, zipPath); err != nil {
		span.SetStatus(codes.Error, "download failed")
		return 0, err
	}

	extracted := filepath.Join(dir, "extracted")
	if err := archive.Extract(zipPath, extracted); err != nil {
		span.SetStatus(codes.Error, "extraction failed")
		return 0, err
	}
	csvPath, err := archive.FindByExt(extracted, ".csv")
	if err != nil {
		return 0, err
	}

	inserted, err := s.loadCSV(ctx, csvPath, file.Year)
	if err != nil {
		span.SetStatus(codes.Error, "load failed")
		return 0, err
	}
	return inserted, nil
}

func (s *Service) loadCSV(ctx context.Context, csvPath string, year int) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header of %s: %w", csvPath, err)
	}

	writer := batch.NewWriter(s.sink)
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return writer.Written(), fmt.Errorf("read %s: %w", csvPath, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		doc := BuildDocument(row)
		doc["tax_year"] = year

		if err := writer.Add(ctx, doc); err != nil {
			return writer.Written(), err
		}
	}
	if err := writer.Close(ctx); err != nil {
		return writer.Written(), err
	}

	slog.InfoContext(ctx, "loaded year",
		"year", year,
		"rows", writer.Rows(),
		"inserted", writer.Written(),
	)
	return writer.Written(), nil
}
