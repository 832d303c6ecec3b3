package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-books-etl/models"
	"github.com/aluiziolira/go-books-etl/parser"
)

// ListingWalker lazily walks one category's listing pages in page-then-DOM
// order. It owns the next-page cursor: each Next call drains the buffered
// page before following the "next" link. The sequence is finite and not
// restartable.
type ListingWalker struct {
	fetcher  *Fetcher
	category models.Category

	queue   []models.ItemSummary
	nextURL string
	pages   int
	done    bool
}

// NewListingWalker positions a walker at the category's first page.
func NewListingWalker(fetcher *Fetcher, category models.Category) *ListingWalker {
	return &ListingWalker{
		fetcher:  fetcher,
		category: category,
		nextURL:  category.URL,
	}
}

// Next yields the next item summary. The second return is false once the
// category is exhausted. Listing fetch failures and malformed items fail the
// whole walk.
func (w *ListingWalker) Next() (models.ItemSummary, bool, error) {
	for len(w.queue) == 0 && !w.done {
		if err := w.advance(); err != nil {
			w.done = true
			return models.ItemSummary{}, false, err
		}
	}
	if len(w.queue) == 0 {
		return models.ItemSummary{}, false, nil
	}
	item := w.queue[0]
	w.queue = w.queue[1:]
	return item, true, nil
}

// Pages reports how many listing pages have been fetched so far.
func (w *ListingWalker) Pages() int {
	return w.pages
}

func (w *ListingWalker) advance() error {
	pageURL := w.nextURL
	doc, err := w.fetcher.Fetch(pageURL, "listing")
	if err != nil {
		return err
	}
	w.pages++

	var itemErr error
	doc.Find("article.product_pod").EachWithBreak(func(_ int, article *goquery.Selection) bool {
		item, err := extractItem(article, pageURL)
		if err != nil {
			itemErr = err
			return false
		}
		w.queue = append(w.queue, item)
		return true
	})
	if itemErr != nil {
		return itemErr
	}

	next := doc.Find("li.next a").First()
	if href, ok := next.Attr("href"); ok {
		w.nextURL = resolveURL(pageURL, href)
	} else {
		// No next link is the sole termination condition.
		w.done = true
	}
	return nil
}

func extractItem(article *goquery.Selection, pageURL string) (models.ItemSummary, error) {
	anchor := article.Find("h3 a").First()
	if anchor.Length() == 0 {
		return models.ItemSummary{}, &parser.ParseError{Field: "listing item", Input: pageURL}
	}

	title := strings.TrimSpace(anchor.AttrOr("title", ""))
	if title == "" {
		title = strings.TrimSpace(anchor.Text())
	}

	href, ok := anchor.Attr("href")
	if !ok || href == "" {
		return models.ItemSummary{}, &parser.ParseError{Field: "listing item link", Input: pageURL}
	}

	priceText := strings.TrimSpace(article.Find("p.price_color").First().Text())
	if priceText == "" {
		priceText = "£0.00"
	}

	ratingLabel := ""
	if class, ok := article.Find("p.star-rating").First().Attr("class"); ok {
		parts := strings.Fields(class)
		if len(parts) > 1 {
			ratingLabel = parts[1]
		}
	}

	availability := strings.TrimSpace(article.Find("p.instock.availability").First().Text())
	if availability == "" {
		availability = strings.TrimSpace(article.Find("p.availability").First().Text())
	}

	imageURL := ""
	if src, ok := article.Find("img").First().Attr("src"); ok {
		imageURL = resolveURL(pageURL, src)
	}

	return models.ItemSummary{
		Title:        title,
		PriceText:    priceText,
		RatingLabel:  ratingLabel,
		Availability: availability,
		ProductURL:   resolveURL(pageURL, href),
		ImageURL:     imageURL,
	}, nil
}
