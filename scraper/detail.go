package scraper

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-books-etl/models"
	"github.com/aluiziolira/go-books-etl/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DetailFetcher enriches a listing item from its product detail page.
// Enrichment is best-effort: the summary fields stay authoritative, so a
// failed detail fetch degrades to a zero BookDetail instead of aborting the
// crawl. Fetched pages are cached by URL so a product reachable through more
// than one listing path is only requested once.
type DetailFetcher struct {
	fetcher *Fetcher
	cache   *lru.Cache[string, models.BookDetail]

	failures   int
	failedURLs []string
}

// NewDetailFetcher builds a detail fetcher with an LRU cache of cacheSize
// detail pages.
func NewDetailFetcher(fetcher *Fetcher, cacheSize int) (*DetailFetcher, error) {
	cache, err := lru.New[string, models.BookDetail](cacheSize)
	if err != nil {
		return nil, err
	}
	return &DetailFetcher{fetcher: fetcher, cache: cache}, nil
}

// Fetch returns the detail fields for a product page. It never fails: on
// HTTP error the zero detail is returned and the failure is recorded.
func (d *DetailFetcher) Fetch(detailURL string) models.BookDetail {
	if detail, ok := d.cache.Get(detailURL); ok {
		return detail
	}

	doc, err := d.fetcher.Fetch(detailURL, "detail")
	if err != nil {
		slog.Warn("detail fetch degraded to null enrichment",
			slog.String("url", detailURL),
			slog.Any("error", err),
		)
		d.fetcher.metrics.IncDetailFailure()
		d.failures++
		d.failedURLs = append(d.failedURLs, detailURL)
		return models.BookDetail{}
	}

	detail := extractDetail(doc)
	d.cache.Add(detailURL, detail)
	return detail
}

// Failures reports how many detail fetches were degraded.
func (d *DetailFetcher) Failures() (int, []string) {
	urls := make([]string, len(d.failedURLs))
	copy(urls, d.failedURLs)
	return d.failures, urls
}

func extractDetail(doc *goquery.Document) models.BookDetail {
	var detail models.BookDetail

	if block := doc.Find("#product_description").First(); block.Length() > 0 {
		text := strings.TrimSpace(block.NextAllFiltered("p").First().Text())
		if text != "" {
			detail.Description = &text
		}
	}

	doc.Find("table.table.table-striped tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		if label == "" || value == "" {
			return
		}
		switch label {
		case "UPC":
			upc := value
			detail.UPC = &upc
		case "Availability":
			detail.Stock = parser.StockFromText(value)
		}
	})

	return detail
}
