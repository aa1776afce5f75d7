package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// DefaultTMDbBaseURL is the public TMDb API root.
const DefaultTMDbBaseURL = "https://api.themoviedb.org/3"

// TMDb converts ids through the TMDb find and external_ids endpoints.
type TMDb struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
	attempts   uint
	retryDelay time.Duration
	logger     zerolog.Logger
}

var _ Converter = (*TMDb)(nil)

// Option configures a TMDb client.
type Option func(*TMDb)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *TMDb) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *TMDb) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLanguage sets the language parameter sent with every request.
func WithLanguage(language string) Option {
	return func(c *TMDb) {
		c.language = strings.TrimSpace(language)
	}
}

// WithRetries sets the attempts per request and the initial backoff.
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *TMDb) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *TMDb) {
		c.logger = logger
	}
}

// NewTMDb creates a TMDb converter.
func NewTMDb(apiKey string, opts ...Option) (*TMDb, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	c := &TMDb{
		apiKey:     apiKey,
		baseURL:    DefaultTMDbBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		attempts:   3,
		retryDelay: 300 * time.Millisecond,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type findResponse struct {
	MovieResults []struct {
		ID int `json:"id"`
	} `json:"movie_results"`
	TVResults []struct {
		ID int `json:"id"`
	} `json:"tv_results"`
}

type externalIDsResponse struct {
	TVDbID int `json:"tvdb_id"`
}

// IMDbToTMDb implements Converter.
func (c *TMDb) IMDbToTMDb(ctx context.Context, imdbID string) (int, error) {
	found, err := c.find(ctx, imdbID)
	if err != nil {
		return 0, err
	}
	if len(found.MovieResults) == 0 || found.MovieResults[0].ID == 0 {
		return 0, ErrNotFound
	}
	return found.MovieResults[0].ID, nil
}

// IMDbToTVDb implements Converter. The show is found on TMDb first, then
// its TVDb id is read from the show's external ids.
func (c *TMDb) IMDbToTVDb(ctx context.Context, imdbID string) (int, error) {
	found, err := c.find(ctx, imdbID)
	if err != nil {
		return 0, err
	}
	if len(found.TVResults) == 0 || found.TVResults[0].ID == 0 {
		return 0, ErrNotFound
	}

	var ids externalIDsResponse
	endpoint := c.baseURL + "/tv/" + strconv.Itoa(found.TVResults[0].ID) + "/external_ids"
	if err := c.get(ctx, endpoint, nil, &ids); err != nil {
		return 0, err
	}
	if ids.TVDbID == 0 {
		return 0, ErrNotFound
	}
	return ids.TVDbID, nil
}

func (c *TMDb) find(ctx context.Context, imdbID string) (*findResponse, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id required")
	}
	if !strings.HasPrefix(imdbID, "tt") {
		imdbID = "tt" + imdbID
	}

	var found findResponse
	params := url.Values{}
	params.Set("external_source", "imdb_id")
	if err := c.get(ctx, c.baseURL+"/find/"+url.PathEscape(imdbID), params, &found); err != nil {
		return nil, err
	}
	return &found, nil
}

// get performs a GET with retries on transport errors, 429 and 5xx.
func (c *TMDb) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	full := endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}

			requestStart := time.Now()
			resp, err := c.httpClient.Do(req)
			latency := time.Since(requestStart)
			if err != nil {
				return fmt.Errorf("execute request (latency=%v): %w", latency, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrNotFound)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Uint("attempt", n+1).
				Err(err).
				Msg("tmdb request failed, retrying")
		}),
	)
}
