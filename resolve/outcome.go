package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pevans/imdbsync/convert"
)

// OutcomeKind says where a single identifier ended up.
type OutcomeKind int

const (
	Failed OutcomeKind = iota
	MovieHit
	ShowHit
)

func (k OutcomeKind) String() string {
	switch k {
	case MovieHit:
		return "movie"
	case ShowHit:
		return "show"
	default:
		return "failed"
	}
}

// Outcome is the result of converting one identifier.
type Outcome struct {
	IMDbID   string
	Kind     OutcomeKind
	TargetID int
	// Checked lists the target spaces consulted, in order.
	Checked []convert.Space
	// Errs holds converter errors other than "not found". They do not
	// change the outcome; a failed lookup counts as no match.
	Errs []error
}

// Diagnostic describes a failed outcome for the log.
func (o Outcome) Diagnostic() string {
	labels := make([]string, 0, len(o.Checked))
	for _, space := range o.Checked {
		labels = append(labels, space.Label()+" ID")
	}
	return fmt.Sprintf("Convert Error: No %s found for IMDb: %s", strings.Join(labels, " or "), o.IMDbID)
}

// ResolveOne converts a single identifier. Unless isMovie is set, the show
// space is tried first; the movie space is tried only when the show lookup
// was skipped or found nothing.
func ResolveOne(ctx context.Context, conv convert.Converter, imdbID string, isMovie bool) Outcome {
	out := Outcome{IMDbID: imdbID}

	showID := 0
	if !isMovie {
		out.Checked = append(out.Checked, convert.Show)
		id, err := conv.IMDbToTVDb(ctx, imdbID)
		switch {
		case err == nil:
			showID = id
		case !errors.Is(err, convert.ErrNotFound):
			out.Errs = append(out.Errs, err)
		}
	}

	if showID == 0 {
		out.Checked = append(out.Checked, convert.Movie)
		id, err := conv.IMDbToTMDb(ctx, imdbID)
		switch {
		case err == nil && id != 0:
			out.Kind = MovieHit
			out.TargetID = id
			return out
		case err != nil && !errors.Is(err, convert.ErrNotFound):
			out.Errs = append(out.Errs, err)
		}
	}

	if showID != 0 {
		out.Kind = ShowHit
		out.TargetID = showID
	}
	return out
}

// Accumulator folds outcomes into ordered result sets.
type Accumulator struct {
	MovieIDs []int
	ShowIDs  []int
	Failed   []string
}

// Add records one outcome.
func (a *Accumulator) Add(o Outcome) {
	switch o.Kind {
	case MovieHit:
		a.MovieIDs = append(a.MovieIDs, o.TargetID)
	case ShowHit:
		a.ShowIDs = append(a.ShowIDs, o.TargetID)
	default:
		a.Failed = append(a.Failed, o.IMDbID)
	}
}
