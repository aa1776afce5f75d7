package convert

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an identifier has no counterpart in the
// requested target space.
var ErrNotFound = errors.New("no matching id")

// Space names a target identifier space.
type Space string

const (
	// Movie ids are TMDb movie ids.
	Movie Space = "tmdb"
	// Show ids are TVDb series ids.
	Show Space = "tvdb"
)

// Label is the display name used in log lines.
func (s Space) Label() string {
	switch s {
	case Movie:
		return "TMDb"
	case Show:
		return "TVDb"
	default:
		return string(s)
	}
}

// Converter translates source catalog ids into the target spaces.
// Implementations return ErrNotFound when there is no counterpart.
type Converter interface {
	IMDbToTMDb(ctx context.Context, imdbID string) (int, error)
	IMDbToTVDb(ctx context.Context, imdbID string) (int, error)
}

// Lookup dispatches to the converter method for space.
func Lookup(ctx context.Context, c Converter, space Space, imdbID string) (int, error) {
	switch space {
	case Movie:
		return c.IMDbToTMDb(ctx, imdbID)
	case Show:
		return c.IMDbToTVDb(ctx, imdbID)
	default:
		return 0, errors.New("unknown target space: " + string(space))
	}
}
