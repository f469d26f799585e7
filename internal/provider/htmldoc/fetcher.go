package htmldoc

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// HTTPFetcher fetches pages over HTTP.
type HTTPFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.client.SetHeader("User-Agent", ua)
		}
	}
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.SetHeaders(headers)
	}
}

// WithCookie sets a raw Cookie header, as copied from a browser session.
func WithCookie(cookie string) HTTPOption {
	return func(f *HTTPFetcher) {
		if cookie != "" {
			f.client.SetHeader("Cookie", cookie)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.SetTimeout(d)
		}
	}
}

// WithRetry sets how many times a failed request is retried.
func WithRetry(count int) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client.SetRetryCount(count)
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher with a 30 second timeout and the
// default user agent.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	client := resty.New()
	client.SetHeader("User-Agent", DefaultUserAgent)
	client.SetHeader("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.8")
	client.SetTimeout(30 * time.Second)

	f := &HTTPFetcher{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s returned %s", ErrHTTPStatus, rawURL, res.Status())
	}

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", res.StatusCode(),
		"bytes", len(res.Body()),
		"elapsed", res.Time(),
	)
	return res.Body(), nil
}

// StaticFetcher serves pages from memory. URLs are compared after query
// parameters are sorted, so "?b=2&a=1" and "?a=1&b=2" are the same page.
type StaticFetcher struct {
	mu       sync.Mutex
	pages    map[string][]byte
	requests []string
}

// NewStaticFetcher creates a fetcher serving the given URL to markup map.
func NewStaticFetcher(pages map[string]string) *StaticFetcher {
	f := &StaticFetcher{pages: make(map[string][]byte, len(pages))}
	for u, body := range pages {
		f.Add(u, body)
	}
	return f
}

// Add registers or replaces a page.
func (f *StaticFetcher) Add(rawURL, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[CanonicalURL(rawURL)] = []byte(body)
}

// Fetch implements Fetcher.
func (f *StaticFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := CanonicalURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, key)
	body, ok := f.pages[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, rawURL)
	}
	return body, nil
}

// Requests returns the canonical URLs fetched so far, in order.
func (f *StaticFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// CanonicalURL re-encodes the query of rawURL with sorted keys and drops
// the fragment. Unparseable input is returned unchanged.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawQuery = u.Query().Encode()
	return u.String()
}
