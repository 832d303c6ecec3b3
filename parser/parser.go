// Package parser provides pure normalization helpers for the raw text
// scraped from listing and detail pages.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports text or markup that does not match the catalogue's
// expected shape. Unparseable listing fields are treated as a source-format
// change rather than skipped, so these are fatal to the crawl.
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s from %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s from %q", e.Field, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	priceRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	digitRe = regexp.MustCompile(`[0-9]+`)
)

// ParsePrice extracts the numeric price from a raw price string, stripping
// thousands separators, currency symbols (including the mis-encoded "Â£"
// artifact the site serves under some charsets) and any other ornamentation.
// Rounding is left to the caller.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "Â", "")
	cleaned = strings.ReplaceAll(cleaned, "£", "")
	cleaned = strings.ReplaceAll(cleaned, "GBP", "")

	match := priceRe.FindString(cleaned)
	if match == "" {
		return 0, &ParseError{Field: "price", Input: text}
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &ParseError{Field: "price", Input: text, Err: err}
	}
	return value, nil
}

// StockFromText extracts the first run of digits from an availability
// string, e.g. "In stock (12 available)" -> 12. Returns nil when the text
// carries no digits ("In stock").
func StockFromText(text string) *int {
	match := digitRe.FindString(text)
	if match == "" {
		return nil
	}
	value, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &value
}

// RatingFromLabel converts the star-rating CSS class token to its numeric
// value. Unrecognized labels map to 0 rather than failing: the source markup
// sometimes omits the rating entirely.
func RatingFromLabel(label string) int {
	switch strings.TrimSpace(label) {
	case "One":
		return 1
	case "Two":
		return 2
	case "Three":
		return 3
	case "Four":
		return 4
	case "Five":
		return 5
	default:
		return 0
	}
}
