package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

// defaultHeaders is the browser profile sent with every remote fetch.
// Scraped sites serve different (or no) markup to obvious bots.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// Fetcher is the shared remote-fetch helper used by every adapter. Retries
// live here, not in the aggregator, and a global rate limiter keeps the
// whole process under the configured request budget across concurrent
// fan-outs.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	attempts uint
}

// NewFetcher builds a fetcher with a pooled transport. perMinute <= 0
// disables rate limiting; attempts < 1 means a single try.
func NewFetcher(timeout time.Duration, attempts int, perMinute int) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = 100
	transport.IdleConnTimeout = 30 * time.Second

	limiter := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		limiter:  limiter,
		attempts: uint(attempts),
	}
}

// Document fetches a page and parses it into a goquery document.
func (f *Fetcher) Document(ctx context.Context, url string, headers map[string]string) (*goquery.Document, error) {
	body, err := f.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrSourceUnavailable, url, err)
	}
	return doc, nil
}

// JSON fetches a URL and decodes the response body into target.
func (f *Fetcher) JSON(ctx context.Context, url string, headers map[string]string, target any) error {
	merged := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	body, err := f.get(ctx, url, merged)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrSourceUnavailable, url, err)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := retry.DoWithData(
		func() (io.ReadCloser, error) { return f.doGET(ctx, url, headers) },
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		// Deadline errors stay visible through the wrap so the aggregator
		// can report "timeout" instead of "unavailable".
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) doGET(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrSourceUnavailable, url, err)
	}
	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrSourceUnavailable, url, resp.StatusCode)
	}
	return resp.Body, nil
}
