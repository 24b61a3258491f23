// Package series990 processes the full-text Form 990 XML filing archives
// the IRS publishes per year, flattening every filing into one record.
package series990

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"npetl-backend/lib/fetch"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/series990")

const DefaultListingURL = "https://www.irs.gov/charities-non-profits/form-990-series-downloads"

// relative download links on the listing page resolve against apps.irs.gov,
// not www.irs.gov
const downloadHost = "https://apps.irs.gov"

// the IRS has changed its URL naming scheme over the years, all known
// shapes are matched
var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/(\d{4})_TEOS_XML`),
	regexp.MustCompile(`/(\d{4})/download990xml`),
	regexp.MustCompile(`download990xml_(\d{4})`),
}

// ExtractYear pulls the 4-digit filing year out of a download URL.
func ExtractYear(url string) (int, bool) {
	for _, pattern := range yearPatterns {
		groups := pattern.FindStringSubmatch(url)
		if len(groups) < 2 {
			continue
		}
		year, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		return year, true
	}
	return 0, false
}

type Scraper struct {
	client *fetch.Client
	url    string
}

func NewScraper(client *fetch.Client, url string) *Scraper {
	if url == "" {
		url = DefaultListingURL
	}
	return &Scraper{client: client, url: url}
}

// DownloadLinks scrapes the listing page for filing archive links, grouped
// by year with duplicates removed.
func (s *Scraper) DownloadLinks(ctx context.Context) (map[int][]string, error) {
	ctx, span := tracer.Start(ctx, "series990:DownloadLinks")
	defer span.End()

	body, err := s.client.Page(ctx, s.url)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse listing page")
		return nil, err
	}

	return extractLinks(ctx, doc), nil
}

func extractLinks(ctx context.Context, doc *goquery.Document) map[int][]string {
	linksByYear := map[int][]string{}
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		lower := strings.ToLower(href)
		if !strings.Contains(lower, "download990xml") &&
			!(strings.Contains(lower, "teos") && strings.Contains(lower, ".zip")) {
			return
		}

		full := href
		if !strings.HasPrefix(lower, "http") {
			full = downloadHost + href
		}
		if seen[full] {
			return
		}

		year, ok := ExtractYear(full)
		if !ok {
			slog.WarnContext(ctx, "skipping link with no recognizable year", "href", full)
			return
		}

		seen[full] = true
		linksByYear[year] = append(linksByYear[year], full)
	})

	total := 0
	for _, links := range linksByYear {
		total += len(links)
	}
	slog.InfoContext(ctx, "found download links", "links", total, "years", len(linksByYear))

	return linksByYear
}

// Years returns the keys of a link map, newest first.
func Years(links map[int][]string) []int {
	years := make([]int, 0, len(links))
	for year := range links {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
