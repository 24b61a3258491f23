// Package gdrive uploads dataset snapshots to the Google Drive folder
// configured for each data class, and pulls series 990 archives back down
// for the Mongo loader.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"npetl-backend/lib/archive"
	"npetl-backend/lib/datakind"
	"npetl-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var tracer = otel.Tracer("lib/gdrive")

type Config struct {
	CredentialsFile string `json:"credentials_file"`
	// every upload is shared with this address after it lands
	ShareWith string            `json:"share_with"`
	Folders   map[string]string `json:"folders"`
}

func (c Config) Validate() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("drive: credentials_file is required")
	}
	for _, kind := range datakind.All() {
		if c.Folders[string(kind)] == "" {
			return fmt.Errorf("drive: missing folder id for %s", kind)
		}
	}
	return nil
}

func (c Config) folder(kind datakind.Kind) string {
	return c.Folders[string(kind)]
}

type Client struct {
	svc *drive.Service
	cfg Config
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(
			drive.DriveMetadataReadonlyScope,
			drive.DriveFileScope,
			drive.DriveMetadataScope,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc, cfg: cfg}, nil
}

// ArtifactName is the timestamped name a fresh snapshot is uploaded under.
func ArtifactName(kind datakind.Kind, now time.Time) string {
	return fmt.Sprintf("%s_%s_data.csv", kind.ArtifactPrefix(), now.Format("2006-01-02_150405"))
}

// UploadTable writes the table to a timestamped CSV, compresses it, and
// uploads the zip into the kind's folder. Local artifacts are removed on
// every exit path.
func (c *Client) UploadTable(ctx context.Context, kind datakind.Kind, t tabular.Table) (*drive.File, error) {
	ctx, span := tracer.Start(ctx, "gdrive:UploadTable")
	defer span.End()

	dir, err := os.MkdirTemp("", "npetl-upload-*")
	if err != nil {
		return nil, err
	}
	defer archive.Cleanup(dir)

	csvPath := filepath.Join(dir, ArtifactName(kind, time.Now()))
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return c.UploadFile(ctx, kind, csvPath)
}

// UploadFile uploads a local artifact into the kind's folder, compressing
// it first unless it is already a zip. The Drive name is the (compressed)
// file's base name.
func (c *Client) UploadFile(ctx context.Context, kind datakind.Kind, path string) (*drive.File, error) {
	ctx, span := tracer.Start(ctx, "gdrive:UploadFile")
	defer span.End()

	zipPath := path
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		var err error
		zipPath, err = archive.CompressFile(path)
		if err != nil {
			span.SetStatus(codes.Error, "compress failed")
			return nil, fmt.Errorf("compress %s: %w", path, err)
		}
		defer archive.Cleanup(zipPath)
	}

	src, err := os.Open(zipPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	meta := &drive.File{
		Name:     filepath.Base(zipPath),
		MimeType: "application/zip",
		Parents:  []string{c.cfg.folder(kind)},
	}

	file, err := c.svc.Files.Create(meta).
		Context(ctx).
		Media(src, googleapi.ContentType("application/zip")).
		Fields("id", "name", "webViewLink").
		Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, fmt.Errorf("upload %s: %w", meta.Name, err)
	}

	slog.InfoContext(ctx, "uploaded artifact",
		"name", file.Name,
		"id", file.Id,
		"link", file.WebViewLink,
	)
	c.share(ctx, file.Id)

	return file, nil
}

// share grants the configured recipient read access. Best effort: a failed
// share never fails the upload that preceded it.
func (c *Client) share(ctx context.Context, fileID string) {
	if c.cfg.ShareWith == "" {
		return
	}
	_, err := c.svc.Permissions.Create(fileID, &drive.Permission{
		Type:         "user",
		Role:         "reader",
		EmailAddress: c.cfg.ShareWith,
	}).Context(ctx).Fields("id").Do()
	if err != nil {
		slog.WarnContext(ctx, "failed to share file", "file_id", fileID, "email", c.cfg.ShareWith, "err", err)
		return
	}
	slog.InfoContext(ctx, "shared file", "file_id", fileID, "email", c.cfg.ShareWith)
}

type YearFile struct {
	ID      string
	Name    string
	Year    int
	Created time.Time
}

// ParseSeriesYear extracts the year from a "series_990_<year>_..." artifact
// name.
func ParseSeriesYear(name string) (int, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 || parts[0] != "series" || parts[1] != "990" {
		return 0, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1000 || year > 9999 {
		return 0, false
	}
	return year, true
}

// ListRecentSeriesFiles returns the newest series 990 zip per year in the
// Series990 folder. Artifacts whose names do not match the expected pattern
// are skipped with a warning.
func (c *Client) ListRecentSeriesFiles(ctx context.Context) (map[int]YearFile, error) {
	ctx, span := tracer.Start(ctx, "gdrive:ListRecentSeriesFiles")
	defer span.End()

	query := fmt.Sprintf("'%s' in parents and mimeType='application/zip'", c.cfg.folder(datakind.Series990))

	byYear := map[int]YearFile{}
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken", "files(id, name, createdTime)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("list series files: %w", err)
		}

		for _, f := range res.Files {
			year, ok := ParseSeriesYear(f.Name)
			if !ok {
				slog.WarnContext(ctx, "skipping file with unexpected name", "name", f.Name)
				continue
			}
			created, err := time.Parse(time.RFC3339, f.CreatedTime)
			if err != nil {
				slog.WarnContext(ctx, "skipping file with bad created time", "name", f.Name, "err", err)
				continue
			}

			existing, seen := byYear[year]
			if !seen || created.After(existing.Created) {
				byYear[year] = YearFile{ID: f.Id, Name: f.Name, Year: year, Created: created}
			}
		}

		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return byYear, nil
}

// SortedYears returns the keys of a year file map, newest first.
func SortedYears(byYear map[int]YearFile) []int {
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Download streams a Drive file's media into dest.
func (c *Client) Download(ctx context.Context, fileID, dest string) error {
	ctx, span := tracer.Start(ctx, "gdrive:Download")
	defer span.End()

	res, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	defer res.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	return nil
}
