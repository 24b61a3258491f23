// Package fetch wraps a resty client configured for pulling files off IRS
// web servers, which reject requests carrying Go's default user agent.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"npetl-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Client struct {
	Http *resty.Client
}

func NewClient() *Client {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Minute * 30)

	telemetry.InstrumentResty(client, "lib/fetch")

	return &Client{Http: client}
}

// File streams a GET of rawUrl into destDir, naming the file after the last
// path segment of the URL. A non-2xx status aborts with an error and no file
// is left behind. There are no retries.
func (c *Client) File(ctx context.Context, rawUrl, destDir string) (string, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawUrl, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive filename from url %q", rawUrl)
	}
	dest := filepath.Join(destDir, name)

	slog.InfoContext(ctx, "downloading", "url", rawUrl, "dest", dest)

	res, err := c.Http.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(rawUrl)
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("get %s: %w", rawUrl, err)
	}
	if res.IsError() {
		os.Remove(dest)
		return "", fmt.Errorf("get %s: unexpected status %s", rawUrl, res.Status())
	}

	slog.InfoContext(ctx, "download completed", "dest", dest, "bytes", res.Size())
	return dest, nil
}

// Page fetches rawUrl and returns the body, for pages small enough to hold
// in memory (the series 990 listing page).
func (c *Client) Page(ctx context.Context, rawUrl string) ([]byte, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawUrl, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get %s: unexpected status %s", rawUrl, res.Status())
	}
	return res.Body(), nil
}
