package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// UserAgent is sent with every catalog request. The catalog serves reduced
// markup to clients that do not look like a browser.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DefaultLanguage is used when no locale, or the "default" locale, is given.
const DefaultLanguage = "en-US"

// Fetcher retrieves and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (Document, error)
}

// HeadersFor returns the request headers for the given locale.
func HeadersFor(locale string) map[string]string {
	return map[string]string{
		"Accept-Language": acceptLanguage(locale),
		"User-Agent":      UserAgent,
	}
}

func acceptLanguage(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" || strings.EqualFold(locale, "default") {
		return DefaultLanguage
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// HTTPFetcher fetches HTML over HTTP, retrying transient failures.
type HTTPFetcher struct {
	client     *http.Client
	attempts   uint
	retryDelay time.Duration
	logger     zerolog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithRetries sets how many attempts are made per fetch and the initial
// delay between them. The delay doubles after each failure.
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(f *HTTPFetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
		f.retryDelay = delay
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher with a 10 second timeout and three
// attempts per request.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:     &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		retryDelay: time.Second,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %s returned %s", e.URL, e.Status)
}

// Temporary reports whether a retry could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (Document, error) {
	var doc Document
	err := retry.Do(
		func() error {
			d, err := f.fetchOnce(ctx, url, headers)
			if err != nil {
				var statusErr *StatusError
				if errors.As(err, &statusErr) && !statusErr.Temporary() {
					return retry.Unrecoverable(err)
				}
				return err
			}
			doc = d
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn().
				Str("url", url).
				Uint("attempt", n+1).
				Err(err).
				Msg("fetch failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return doc, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string, headers map[string]string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	f.logger.Debug().Str("url", url).Msg("fetching page")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	f.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Msg("received response")

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	doc, err := ParseHTML(resp.Body)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	return doc, nil
}
