package postcard

import (
	"context"
	"fmt"
	"log/slog"

	"npetl-backend/lib/datakind"
	"npetl-backend/lib/tabular"

	"google.golang.org/api/drive/v3"
)

type Uploader interface {
	UploadTable(ctx context.Context, kind datakind.Kind, t tabular.Table) (*drive.File, error)
}

type Processor struct {
	downloader *Downloader
	uploader   Uploader
}

func NewProcessor(downloader *Downloader, uploader Uploader) *Processor {
	return &Processor{downloader: downloader, uploader: uploader}
}

func (p *Processor) ProcessAndUpload(ctx context.Context) (*drive.File, error) {
	table, err := p.downloader.Download(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Println(table.Head(5))

	file, err := p.uploader.UploadTable(ctx, datakind.Postcard990, table)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "uploaded e-postcard snapshot", "name", file.Name)
	return file, nil
}
