package scraper

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-books-etl/config"
	"github.com/gocolly/colly/v2"
)

// Fetcher issues synchronous page fetches and hands back parsed documents.
// One fetch is one request: there is no retry and no concurrency, because
// the crawl's ordering and id assignment depend on strictly sequential
// traversal.
type Fetcher struct {
	cfg     *config.Config
	metrics *Metrics

	// transport overrides the HTTP transport; tests install an httpmock
	// transport here.
	transport http.RoundTripper
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}
	return &Fetcher{cfg: cfg, metrics: metrics}, nil
}

// Fetch retrieves pageURL and parses the body into a goquery document.
// phase labels the request in metrics (landing, listing, detail).
func (f *Fetcher) Fetch(pageURL, phase string) (*goquery.Document, error) {
	collector := f.newCollector()

	var (
		doc      *goquery.Document
		status   int
		fetchErr error
	)

	collector.OnResponse(func(r *colly.Response) {
		parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = err
			return
		}
		doc = parsed
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	f.metrics.IncRequest(phase)
	start := time.Now()
	visitErr := collector.Visit(pageURL)
	collector.Wait()
	f.metrics.ObserveDuration(time.Since(start))

	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr != nil || doc == nil {
		if fetchErr == nil {
			fetchErr = fmt.Errorf("empty response")
		}
		netErr := newNetworkError(pageURL, status, fetchErr)
		f.metrics.IncError(netErr.Kind)
		return nil, netErr
	}
	return doc, nil
}

func (f *Fetcher) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.IgnoreRobotsTxt = true

	if f.transport != nil {
		collector.WithTransport(f.transport)
	} else {
		collector.WithTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   f.cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		})
	}
	return collector
}

// resolveURL turns href absolute against the page it was found on.
func resolveURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
