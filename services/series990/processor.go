package series990

import (
	"context"
	"log/slog"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/datakind"

	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/drive/v3"
)

type Uploader interface {
	UploadFile(ctx context.Context, kind datakind.Kind, path string) (*drive.File, error)
}

type Processor struct {
	scraper    *Scraper
	downloader *Downloader
	uploader   Uploader
}

func NewProcessor(scraper *Scraper, downloader *Downloader, uploader Uploader) *Processor {
	return &Processor{scraper: scraper, downloader: downloader, uploader: uploader}
}

// ProcessYears scrapes the listing page and processes every year in
// [startYear, endYear], newest first. A year that fails is logged and the
// remaining years still run; the returned map holds only the years that
// uploaded successfully. Either bound may be zero to leave that side open.
func (p *Processor) ProcessYears(ctx context.Context, startYear, endYear int) (map[int]*drive.File, error) {
	ctx, span := tracer.Start(ctx, "series990:ProcessYears")
	defer span.End()

	links, err := p.scraper.DownloadLinks(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "scrape failed")
		return nil, err
	}

	uploaded := map[int]*drive.File{}
	for _, year := range Years(links) {
		if startYear != 0 && year < startYear {
			continue
		}
		if endYear != 0 && year > endYear {
			continue
		}

		file, err := p.processYear(ctx, year, links[year])
		if err != nil {
			slog.ErrorContext(ctx, "year failed", "year", year, "err", err)
			continue
		}
		uploaded[year] = file
	}

	slog.InfoContext(ctx, "finished series run", "years_uploaded", len(uploaded))
	return uploaded, nil
}

func (p *Processor) processYear(ctx context.Context, year int, urls []string) (*drive.File, error) {
	csvPath, err := p.downloader.ProcessYear(ctx, year, urls)
	if err != nil {
		return nil, err
	}
	defer archive.Cleanup(csvPath)

	file, err := p.uploader.UploadFile(ctx, datakind.Series990, csvPath)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "uploaded year snapshot", "year", year, "name", file.Name)
	return file, nil
}
