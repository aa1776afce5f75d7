package convert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Cache stores id mappings in SQLite.
type Cache struct {
	db         *sql.DB
	expiration time.Duration
	now        func() time.Time
}

// NewCache opens (creating if needed) a cache at dbPath. Entries older than
// expiration are ignored; zero means they never expire.
func NewCache(dbPath string, expiration time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cache := &Cache{db: db, expiration: expiration, now: time.Now}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return cache, nil
}

// initSchema creates the id_map table if it doesn't exist.
func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS id_map (
		imdb_id TEXT NOT NULL,
		space TEXT NOT NULL,
		target_id INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (imdb_id, space)
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a cached mapping. The second result is false on a miss or an
// expired entry.
func (c *Cache) Get(ctx context.Context, imdbID string, space Space) (int, bool, error) {
	query := "SELECT target_id, updated_at FROM id_map WHERE imdb_id = ? AND space = ?"

	var targetID int
	var updatedAt string
	err := c.db.QueryRowContext(ctx, query, imdbID, string(space)).Scan(&targetID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query id map: %w", err)
	}

	if c.expiration > 0 {
		updated, err := time.Parse(time.RFC3339, updatedAt)
		if err != nil || c.now().Sub(updated) > c.expiration {
			return 0, false, nil
		}
	}
	return targetID, true, nil
}

// Put records a mapping, replacing any previous one.
func (c *Cache) Put(ctx context.Context, imdbID string, space Space, targetID int) error {
	query := "INSERT OR REPLACE INTO id_map (imdb_id, space, target_id, updated_at) VALUES (?, ?, ?, ?)"
	_, err := c.db.ExecContext(ctx, query, imdbID, string(space), targetID, c.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update id map: %w", err)
	}
	return nil
}

// Cached is a Converter that consults a Cache before its upstream. Only
// successful lookups are stored.
type Cached struct {
	upstream Converter
	cache    *Cache
	logger   zerolog.Logger
}

var _ Converter = (*Cached)(nil)

// CachedOption configures a Cached converter.
type CachedOption func(*Cached)

// WithCacheLogger sets the logger that reports cache read and write
// failures.
func WithCacheLogger(logger zerolog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

// NewCached wraps upstream with cache.
func NewCached(upstream Converter, cache *Cache, opts ...CachedOption) *Cached {
	c := &Cached{upstream: upstream, cache: cache, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IMDbToTMDb implements Converter.
func (c *Cached) IMDbToTMDb(ctx context.Context, imdbID string) (int, error) {
	return c.lookup(ctx, Movie, imdbID)
}

// IMDbToTVDb implements Converter.
func (c *Cached) IMDbToTVDb(ctx context.Context, imdbID string) (int, error) {
	return c.lookup(ctx, Show, imdbID)
}

func (c *Cached) lookup(ctx context.Context, space Space, imdbID string) (int, error) {
	id, ok, err := c.cache.Get(ctx, imdbID, space)
	switch {
	case err != nil:
		c.logger.Warn().
			Err(err).
			Str("imdb_id", imdbID).
			Str("space", string(space)).
			Msg("id cache read failed, asking upstream")
	case ok:
		return id, nil
	}

	id, err = Lookup(ctx, c.upstream, space, imdbID)
	if err != nil {
		return 0, err
	}
	// A failed write costs one upstream lookup on the next run.
	if err := c.cache.Put(ctx, imdbID, space, id); err != nil {
		c.logger.Warn().
			Err(err).
			Str("imdb_id", imdbID).
			Str("space", string(space)).
			Msg("id cache write failed")
	}
	return id, nil
}
