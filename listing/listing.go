package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/fetch"
)

// Progress stages reported through ProgressFunc.
const (
	StagePage    = "page"
	StageConvert = "convert"
)

// ProgressFunc receives ephemeral progress updates. Consumers that are not
// interactive may ignore them.
type ProgressFunc func(stage string, current, total int)

func noProgress(string, int, int) {}

// ProbeResult is what one probe learns about a listing.
type ProbeResult struct {
	Total    int
	PageSize int
}

// Client probes, validates and collects catalog listings. Pages are fetched
// one at a time, in order, with a pause after each.
type Client struct {
	fetcher   fetch.Fetcher
	extractor Extractor
	limiter   RateLimiter
	headers   func(locale string) map[string]string
	progress  ProgressFunc
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithExtractor overrides the page extractor.
func WithExtractor(e Extractor) Option {
	return func(c *Client) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithRateLimiter overrides the pause between pages.
func WithRateLimiter(l RateLimiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithHeaders overrides how request headers are built for a locale.
func WithHeaders(fn func(locale string) map[string]string) Option {
	return func(c *Client) {
		if fn != nil {
			c.headers = fn
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.progress = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client that fetches through f.
func NewClient(f fetch.Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher:   f,
		extractor: NewSelectorExtractor(Selectors{}),
		limiter:   FixedDelay{Interval: PageDelay},
		headers:   fetch.HeadersFor,
		progress:  noProgress,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe fetches the first page of a listing to learn its total item count.
// It makes exactly one fetch.
func (c *Client) Probe(ctx context.Context, ref catalog.Reference, locale string) (ProbeResult, error) {
	ref, err := ref.WithKind()
	if err != nil {
		return ProbeResult{}, err
	}

	doc, err := c.fetcher.Fetch(ctx, ref.URL, c.headers(locale))
	if err != nil {
		return ProbeResult{}, fmt.Errorf("failed to probe listing: %w", err)
	}

	total, err := c.extractor.TotalCount(doc, ref.Kind)
	switch {
	case errors.Is(err, catalog.ErrNoResults):
		return ProbeResult{}, fmt.Errorf("%w: IMDb Error: No Results at URL: %s", catalog.ErrNoResults, ref.URL)
	case errors.Is(err, catalog.ErrParseFailure):
		return ProbeResult{}, fmt.Errorf("%w: IMDb Error: Failed to parse URL: %s", catalog.ErrParseFailure, ref.URL)
	case err != nil:
		return ProbeResult{}, err
	}

	return ProbeResult{Total: total, PageSize: ref.Kind.PageSize()}, nil
}

// Validate checks a raw reference and confirms with one probe that it
// resolves to a non-empty listing. It returns the canonical reference.
func (c *Client) Validate(ctx context.Context, rawURL, locale string) (catalog.Reference, error) {
	ref, err := catalog.Normalize(rawURL)
	if err != nil {
		return catalog.Reference{}, err
	}

	result, err := c.Probe(ctx, ref, locale)
	if err != nil {
		return catalog.Reference{}, err
	}
	if result.Total < 1 {
		return catalog.Reference{}, fmt.Errorf("%w: IMDb Error: %s failed to parse", catalog.ErrParseFailure, rawURL)
	}
	return ref, nil
}

// ValidateLists validates each configured entry in order and returns the
// corresponding requests. It stops at the first invalid entry.
func (c *Client) ValidateLists(ctx context.Context, entries []catalog.ListEntry, locale string) ([]catalog.ListRequest, error) {
	requests := make([]catalog.ListRequest, 0, len(entries))
	for _, entry := range entries {
		if err := entry.Check(); err != nil {
			return nil, err
		}
		ref, err := c.Validate(ctx, entry.URL, locale)
		if err != nil {
			return nil, err
		}
		limit := entry.Limit
		if limit < 0 {
			limit = 0
		}
		requests = append(requests, catalog.ListRequest{URL: ref.URL, Kind: ref.Kind, Limit: limit})
	}
	return requests, nil
}

// Collect pages through a listing and returns its item identifiers in page
// order, then item order. A zero ref.Kind is derived from ref.URL. At most limit items are collected; a limit below
// 1 collects the whole listing.
func (c *Client) Collect(ctx context.Context, ref catalog.Reference, locale string, limit int) ([]string, error) {
	ref, err := ref.WithKind()
	if err != nil {
		return nil, err
	}

	current, err := catalog.Fixup(ref.URL)
	if err != nil {
		return nil, err
	}
	ref.URL = current

	probe, err := c.Probe(ctx, ref, locale)
	if err != nil {
		return nil, err
	}

	current = catalog.StripPaging(current)
	plan := NewPlan(probe.Total, probe.PageSize, limit)
	headers := c.headers(locale)

	ids := []string{}
	for _, page := range plan.Pages() {
		c.progress(StagePage, page.Number, plan.NumPages)
		c.logger.Debug().
			Int("page", page.Number).
			Int("pages", plan.NumPages).
			Int("start", page.Start).
			Int("end", plan.End(page)).
			Msgf("Parsing Page %d/%d %d-%d", page.Number, plan.NumPages, page.Start, plan.End(page))

		doc, err := c.fetcher.Fetch(ctx, pageURL(current, ref.Kind, page), headers)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page.Number, err)
		}

		found, err := c.extractor.Identifiers(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", page.Number, err)
		}
		// Keyword pages have a fixed size, so the last one can overshoot.
		if ref.Kind == catalog.KeywordSearch && page.Last && len(found) > plan.Remainder {
			found = found[:plan.Remainder]
		}
		ids = append(ids, found...)

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: IMDb Error: No IMDb IDs Found at %s", catalog.ErrNoResults, ref.URL)
	}
	return ids, nil
}

// pageURL builds the request for one page. Keyword searches page by number;
// everything else asks for an exact slice.
func pageURL(base string, kind catalog.Kind, page Page) string {
	if kind == catalog.KeywordSearch {
		return fmt.Sprintf("%s&page=%d", base, page.Number)
	}
	return fmt.Sprintf("%s&count=%d&start=%d", base, page.Count, page.Start)
}
