package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/convert"
	"github.com/pevans/imdbsync/listing"
)

// Method selects how a request's payload is interpreted.
type Method string

const (
	// SingleID converts one explicit identifier.
	SingleID Method = "imdb_id"
	// List collects a listing and converts every identifier on it.
	List Method = "imdb_list"
)

// String returns the display name used in log lines.
func (m Method) String() string {
	switch m {
	case SingleID:
		return "IMDb ID"
	case List:
		return "IMDb List"
	default:
		return string(m)
	}
}

// Request is one resolution job.
type Request struct {
	Method Method
	// ID is the payload for SingleID.
	ID string
	// List is the payload for List.
	List    catalog.ListRequest
	Locale  string
	IsMovie bool
}

// Result holds the partitioned identifiers of one run.
type Result struct {
	RunID     uuid.UUID `json:"run_id"`
	Method    Method    `json:"method"`
	MovieIDs  []int     `json:"movie_ids"`
	ShowIDs   []int     `json:"show_ids"`
	Failed    []string  `json:"failed"`
	Processed int       `json:"processed"`
}

// Collector produces the identifiers on a listing. *listing.Client
// satisfies it.
type Collector interface {
	Collect(ctx context.Context, ref catalog.Reference, locale string, limit int) ([]string, error)
}

var _ Collector = (*listing.Client)(nil)

// Pipeline resolves requests into target space identifiers. Conversion
// failures for individual identifiers are logged and returned in
// Result.Failed; they never fail the run.
type Pipeline struct {
	collector Collector
	converter convert.Converter
	progress  listing.ProgressFunc
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress sets the callback for the convert stage.
func WithProgress(fn listing.ProgressFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.progress = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline.
func New(collector Collector, converter convert.Converter, opts ...Option) *Pipeline {
	p := &Pipeline{
		collector: collector,
		converter: converter,
		progress:  func(string, int, int) {},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve dispatches req by method.
func (p *Pipeline) Resolve(ctx context.Context, req Request) (*Result, error) {
	switch req.Method {
	case SingleID:
		return p.ResolveID(ctx, req.ID, req.IsMovie)
	case List:
		return p.ResolveList(ctx, req.List, req.Locale, req.IsMovie)
	default:
		return nil, fmt.Errorf("%w: IMDb Error: Method %s not supported", catalog.ErrUnsupportedMethod, req.Method)
	}
}

// ResolveID converts a single identifier.
func (p *Pipeline) ResolveID(ctx context.Context, imdbID string, isMovie bool) (*Result, error) {
	result, logger := p.begin(SingleID)
	logger.Info().Str("imdb_id", imdbID).Msgf("Processing IMDb ID: %s", imdbID)

	var acc Accumulator
	p.convert(ctx, logger, &acc, imdbID, isMovie)
	return p.finish(logger, result, &acc, 1), nil
}

// ResolveList collects the listing and converts each identifier in
// extraction order. Duplicates are converted as often as they appear.
func (p *Pipeline) ResolveList(ctx context.Context, req catalog.ListRequest, locale string, isMovie bool) (*Result, error) {
	result, logger := p.begin(List)

	size := ""
	if req.Limit > 0 {
		size = fmt.Sprintf("%d Items at ", req.Limit)
	}
	logger.Info().Str("url", req.URL).Int("limit", req.Limit).
		Msgf("Processing IMDb List: %s%s", size, req.URL)

	ids, err := p.collector.Collect(ctx, req.Reference(), locale, req.Limit)
	if err != nil {
		return nil, err
	}

	var acc Accumulator
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.progress(listing.StageConvert, i+1, len(ids))
		p.convert(ctx, logger, &acc, id, isMovie)
	}
	logger.Info().Int("count", len(ids)).Msgf("Processed %d IMDb IDs", len(ids))

	return p.finish(logger, result, &acc, len(ids)), nil
}

func (p *Pipeline) begin(method Method) (*Result, zerolog.Logger) {
	result := &Result{RunID: uuid.New(), Method: method}
	logger := p.logger.With().
		Str("run_id", result.RunID.String()).
		Str("method", method.String()).
		Logger()
	return result, logger
}

func (p *Pipeline) convert(ctx context.Context, logger zerolog.Logger, acc *Accumulator, imdbID string, isMovie bool) {
	start := time.Now()
	out := ResolveOne(ctx, p.converter, imdbID, isMovie)
	for _, err := range out.Errs {
		logger.Warn().Err(err).Str("imdb_id", imdbID).Msg("conversion lookup failed")
	}
	if out.Kind == Failed {
		logger.Error().Str("imdb_id", imdbID).Msg(out.Diagnostic())
	} else {
		logger.Debug().
			Str("imdb_id", imdbID).
			Str("kind", out.Kind.String()).
			Int("target_id", out.TargetID).
			Dur("latency", time.Since(start)).
			Msg("converted")
	}
	acc.Add(out)
}

func (p *Pipeline) finish(logger zerolog.Logger, result *Result, acc *Accumulator, processed int) *Result {
	result.MovieIDs = acc.MovieIDs
	result.ShowIDs = acc.ShowIDs
	result.Failed = acc.Failed
	result.Processed = processed

	logger.Debug().
		Int("failed", len(acc.Failed)).
		Strs("failed_ids", acc.Failed).
		Int("movies", len(acc.MovieIDs)).
		Ints("movie_ids", acc.MovieIDs).
		Int("shows", len(acc.ShowIDs)).
		Ints("show_ids", acc.ShowIDs).
		Msg("resolution complete")
	return result
}
