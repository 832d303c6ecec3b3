// Package models defines data structures shared by the crawler and the
// store bootstrapper.
package models

import "time"

// Category is one entry of the catalogue's sidebar navigation.
type Category struct {
	Name string
	URL  string
}

// ItemSummary holds the raw listing-page fields for a single product, before
// normalization and detail enrichment.
type ItemSummary struct {
	Title        string
	PriceText    string
	RatingLabel  string
	Availability string
	ProductURL   string
	ImageURL     string
}

// BookDetail carries the optional fields scraped from a product detail page.
// All fields are nil when the detail fetch failed or the markup omits them.
type BookDetail struct {
	Description *string
	UPC         *string
	Stock       *int
}

// BookRecord is the canonical unit of the dataset. ID is assigned by the
// crawler in emission order: 1-based, dense, unique across the whole run.
type BookRecord struct {
	ID             int     `csv:"id" json:"id"`
	Title          string  `csv:"title" json:"title"`
	Price          float64 `csv:"price" json:"price"`
	Currency       string  `csv:"currency" json:"currency"`
	Rating         int     `csv:"rating" json:"rating"`
	Availability   string  `csv:"availability" json:"availability"`
	Category       string  `csv:"category" json:"category"`
	ProductPageURL string  `csv:"product_page_url" json:"product_page_url"`
	ImageURL       string  `csv:"image_url" json:"image_url"`
	Description    *string `csv:"description" json:"description"`
	UPC            *string `csv:"upc" json:"upc"`
	Stock          *int    `csv:"stock" json:"stock"`
}

// CrawlResult holds the overall result of one crawl run.
type CrawlResult struct {
	StartTime        time.Time
	EndTime          time.Time
	TotalItems       int
	CategoryCount    int
	PageCount        int
	DetailFailures   int
	FailedDetailURLs []string
}
