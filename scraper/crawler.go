// Package scraper implements the catalogue crawl: category discovery,
// paginated listing traversal, best-effort detail enrichment and ordered
// record emission.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aluiziolira/go-books-etl/config"
	"github.com/aluiziolira/go-books-etl/models"
	"github.com/aluiziolira/go-books-etl/parser"
)

const defaultCurrency = "GBP"

// RecordWriter receives crawled records in emission order.
type RecordWriter interface {
	Write(records []*models.BookRecord) error
}

// Crawler drives one crawl run: discovery -> listing walk -> detail fetch ->
// normalization -> id assignment -> emission. It is the sole writer of ids,
// which are 1-based and gap-free across the whole run regardless of how many
// items each category yields.
type Crawler struct {
	cfg     *config.Config
	fetcher *Fetcher
	details *DetailFetcher
	Metrics *Metrics
}

// NewCrawler builds a crawler configured from cfg.
func NewCrawler(cfg *config.Config) (*Crawler, error) {
	metrics := NewMetrics()
	fetcher, err := NewFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}
	details, err := NewDetailFetcher(fetcher, cfg.DetailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("detail cache: %w", err)
	}
	return &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		details: details,
		Metrics: metrics,
	}, nil
}

// Run executes the crawl and streams records to out. The traversal is
// strictly sequential: category order is discovery order, item order is page
// then DOM order. Any structural or listing-level network failure aborts the
// run; detail failures degrade per item. ctx only serves process-signal
// abort between items; there is no finer-grained cancellation.
func (c *Crawler) Run(ctx context.Context, out RecordWriter) (*models.CrawlResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.CrawlResult{StartTime: time.Now()}

	landing, err := c.fetcher.Fetch(c.cfg.BaseURL, "landing")
	if err != nil {
		return nil, &DiscoveryError{URL: c.cfg.BaseURL, Err: err}
	}
	categories, err := DiscoverCategories(landing, c.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	result.CategoryCount = len(categories)
	result.PageCount++

	nextID := 1
	for _, category := range categories {
		slog.Info("scraping category", slog.String("category", category.Name))

		walker := NewListingWalker(c.fetcher, category)
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			item, ok, err := walker.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}

			// Politeness throttle ahead of every detail fetch.
			time.Sleep(c.cfg.Delay)
			detail := c.details.Fetch(item.ProductURL)

			record, err := buildRecord(nextID, category, item, detail)
			if err != nil {
				return nil, err
			}
			if err := out.Write([]*models.BookRecord{record}); err != nil {
				return nil, fmt.Errorf("write record %d: %w", record.ID, err)
			}
			c.Metrics.IncItems()
			nextID++
		}
		result.PageCount += walker.Pages()
	}

	result.TotalItems = nextID - 1
	result.DetailFailures, result.FailedDetailURLs = c.details.Failures()
	result.EndTime = time.Now()
	return result, nil
}

func buildRecord(id int, category models.Category, item models.ItemSummary, detail models.BookDetail) (*models.BookRecord, error) {
	price, err := parser.ParsePrice(item.PriceText)
	if err != nil {
		return nil, err
	}

	return &models.BookRecord{
		ID:             id,
		Title:          item.Title,
		Price:          math.Round(price*100) / 100,
		Currency:       defaultCurrency,
		Rating:         parser.RatingFromLabel(item.RatingLabel),
		Availability:   item.Availability,
		Category:       category.Name,
		ProductPageURL: item.ProductURL,
		ImageURL:       item.ImageURL,
		Description:    detail.Description,
		UPC:            detail.UPC,
		Stock:          detail.Stock,
	}, nil
}
