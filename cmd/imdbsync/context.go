package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pevans/imdbsync/config"
	"github.com/pevans/imdbsync/convert"
	"github.com/pevans/imdbsync/fetch"
	"github.com/pevans/imdbsync/listing"
	"github.com/pevans/imdbsync/resolve"
)

// appContext holds what every command needs once flags are parsed.
type appContext struct {
	flags    *globalFlags
	cfg      *config.FileConfig
	logger   zerolog.Logger
	progress *progressReporter
}

func newAppContext(flags *globalFlags) *appContext {
	return &appContext{flags: flags, logger: zerolog.Nop()}
}

func (a *appContext) init(stderr io.Writer) error {
	level, err := zerolog.ParseLevel(strings.ToLower(a.flags.logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	var cfg *config.FileConfig
	if path := strings.TrimSpace(a.flags.config); path != "" {
		cfg, err = config.LoadConfigFileFrom(path)
	} else {
		cfg, err = config.LoadConfigFile()
	}
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &config.FileConfig{}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	a.cfg = cfg

	a.progress = newProgressReporter(stderr)
	return nil
}

// locale is the --locale flag, falling back to settings.language.
func (a *appContext) locale() string {
	if l := strings.TrimSpace(a.flags.locale); l != "" {
		return l
	}
	return a.cfg.Settings.Language
}

func (a *appContext) listingClient() *listing.Client {
	settings := a.cfg.Settings
	fetcher := fetch.NewHTTPFetcher(
		fetch.WithHTTPClient(&http.Client{Timeout: settings.FetchTimeout.Std()}),
		fetch.WithRetries(uint(settings.FetchRetries), time.Second),
		fetch.WithLogger(a.logger),
	)
	return listing.NewClient(fetcher,
		listing.WithExtractor(listing.NewSelectorExtractor(a.cfg.Selectors)),
		listing.WithRateLimiter(listing.FixedDelay{Interval: settings.PageDelay.Std()}),
		listing.WithProgress(a.progress.Update),
		listing.WithLogger(a.logger),
	)
}

// pipeline wires client and the converter. The returned func releases the
// conversion cache.
func (a *appContext) pipeline(client *listing.Client) (*resolve.Pipeline, func(), error) {
	if a.cfg.TMDb.APIKey == "" {
		return nil, nil, errors.New("tmdb api key required: set tmdb.apikey or IMDBSYNC_TMDB_APIKEY")
	}
	tmdb, err := convert.NewTMDb(a.cfg.TMDb.APIKey,
		convert.WithBaseURL(a.cfg.TMDb.BaseURL),
		convert.WithLanguage(a.cfg.TMDb.Language),
		convert.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, err
	}

	var converter convert.Converter = tmdb
	closer := func() {}
	if path := a.cfg.Cache.Path; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		cache, err := convert.NewCache(path, a.cfg.CacheExpiration())
		if err != nil {
			return nil, nil, err
		}
		converter = convert.NewCached(tmdb, cache, convert.WithCacheLogger(a.logger))
		closer = func() { cache.Close() }
	}

	p := resolve.New(client, converter,
		resolve.WithProgress(a.progress.Update),
		resolve.WithLogger(a.logger),
	)
	return p, closer, nil
}
