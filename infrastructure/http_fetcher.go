package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pension720/domain/interfaces"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

var (
	// ErrFetchStatus is returned when the source answers with a non-success status
	ErrFetchStatus = errors.New("unexpected response status")

	// ErrBlockedPage is returned when the source serves a block or queue page instead of results
	ErrBlockedPage = errors.New("source returned a blocking page")
)

const maxBodyBytes = 8 << 20

// blockMarkers are fragments of the pages served instead of results when the source throttles
var blockMarkers = []string{
	"Access Denied",
	"접속이 원활하지",
	"접속자가 많아",
	"서비스 접근 대기",
}

// FetcherOption customizes an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithTimeout sets the per request timeout
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed request is retried
func WithMaxRetries(n int) FetcherOption {
	return func(f *HTTPFetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithRetryInterval sets the first backoff interval
func WithRetryInterval(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.retryInterval = d
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// HTTPFetcher downloads the draw history page
type HTTPFetcher struct {
	client        *http.Client
	sourceURL     string
	userAgent     string
	maxRetries    int
	retryInterval time.Duration
}

// NewHTTPFetcher creates a fetcher for sourceURL
func NewHTTPFetcher(sourceURL string, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:        &http.Client{Timeout: 20 * time.Second},
		sourceURL:     sourceURL,
		userAgent:     "Mozilla/5.0 (compatible; pension720/1.0)",
		maxRetries:    3,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page, retrying transient failures with exponential backoff.
// Client errors other than 429 are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context) (*interfaces.SourceDocument, error) {
	var doc *interfaces.SourceDocument
	attempt := 0

	operation := func() error {
		attempt++
		d, err := f.fetchOnce(ctx)
		if err != nil {
			return err
		}
		doc = d
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.retryInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxRetries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"url":     f.sourceURL,
			"attempt": attempt,
			"wait":    wait,
		}).WithError(err).Warn("Fetch failed, retrying")
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"url":      f.sourceURL,
		"bytes":    len(doc.Body),
		"attempts": attempt,
	}).Info("Fetched source page")
	return doc, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context) (*interfaces.SourceDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.sourceURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("%w: %s", ErrFetchStatus, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	// the source historically serves EUC-KR; decode to UTF-8 from the header or meta tag
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to detect page encoding: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	text := string(body)
	for _, marker := range blockMarkers {
		if strings.Contains(text, marker) {
			return nil, fmt.Errorf("%w: matched %q", ErrBlockedPage, marker)
		}
	}

	return &interfaces.SourceDocument{
		URL:       f.sourceURL,
		Body:      text,
		FetchedAt: time.Now().UTC(),
	}, nil
}
