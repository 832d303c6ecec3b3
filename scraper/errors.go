package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// DiscoveryError indicates the landing page no longer carries the expected
// category navigation. This is a structural break in the source site and
// aborts the crawl; it is deliberately distinct from NetworkError so
// operators can tell "site changed" from "network blip".
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("discover categories at %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("discover categories at %s: navigation container missing", e.URL)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NetworkError indicates an HTTP-level failure while fetching a page. Kind
// carries the classified failure category and doubles as the metrics label.
type NetworkError struct {
	URL    string
	Status int
	Kind   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func newNetworkError(url string, status int, err error) *NetworkError {
	return &NetworkError{
		URL:    url,
		Status: status,
		Kind:   classifyFetchError(err, status),
		Err:    err,
	}
}

func classifyFetchError(err error, statusCode int) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection"
	}

	switch statusCode {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	return "other"
}
