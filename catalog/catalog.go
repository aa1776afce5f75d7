package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Errors returned while resolving catalog references. Callers match them
// with errors.Is; the wrapped message carries the offending URL.
var (
	ErrInvalidReference  = errors.New("invalid reference")
	ErrParseFailure      = errors.New("parse failure")
	ErrNoResults         = errors.New("no results")
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// BaseURL is the root of the external catalog.
const BaseURL = "https://www.imdb.com"

// Recognized URL prefixes. Matching is exact and case-sensitive against the
// start of the trimmed input.
const (
	ListPrefix    = BaseURL + "/list/ls"
	SearchPrefix  = BaseURL + "/search/title/?"
	KeywordPrefix = BaseURL + "/search/keyword/?"
)

// Page-size conventions imposed by the crawler, per URL kind.
const (
	KeywordPageSize = 50
	SearchPageSize  = 250
)

// Kind identifies which listing family a reference belongs to.
type Kind int

const (
	ListBrowsing Kind = iota + 1
	TitleSearch
	KeywordSearch
)

func (k Kind) String() string {
	switch k {
	case ListBrowsing:
		return "list"
	case TitleSearch:
		return "search"
	case KeywordSearch:
		return "keyword"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < ListBrowsing || k > KeywordSearch {
		return nil, fmt.Errorf("unknown listing kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{ListBrowsing, TitleSearch, KeywordSearch} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown listing kind %q", text)
}

// PageSize returns the number of items requested per page for this kind.
func (k Kind) PageSize() int {
	if k == KeywordSearch {
		return KeywordPageSize
	}
	return SearchPageSize
}

// Classify reports the kind of a raw reference. Surrounding whitespace is
// ignored.
func Classify(rawURL string) (Kind, error) {
	rawURL = strings.TrimSpace(rawURL)
	switch {
	case strings.HasPrefix(rawURL, ListPrefix):
		return ListBrowsing, nil
	case strings.HasPrefix(rawURL, SearchPrefix):
		return TitleSearch, nil
	case strings.HasPrefix(rawURL, KeywordPrefix):
		return KeywordSearch, nil
	}
	return 0, fmt.Errorf("%w: IMDb Error: %s must begin with either:\n%s (For Lists)\n%s (For Searches)\n%s (For Keyword Searches)",
		ErrInvalidReference, rawURL, ListPrefix, SearchPrefix, KeywordPrefix)
}

var listIDPattern = regexp.MustCompile(`(\d+)`)

// Fixup rewrites a reference into its canonical fetchable form. List
// references become a title search filtered by the list id; any other
// reference loses one trailing slash. Applying Fixup to its own output
// returns it unchanged.
func Fixup(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, ListPrefix) {
		m := listIDPattern.FindStringSubmatch(rawURL)
		if m == nil {
			return "", fmt.Errorf("%w: IMDb Error: Failed to parse List ID from %s", ErrParseFailure, rawURL)
		}
		return SearchPrefix + "lists=ls" + m[1], nil
	}
	if strings.HasSuffix(rawURL, "/") {
		return rawURL[:len(rawURL)-1], nil
	}
	return rawURL, nil
}

// Reference is a validated, canonical listing reference. Kind is the kind
// of the reference as the user supplied it, so a rewritten list keeps
// ListBrowsing even though its URL is a title search.
type Reference struct {
	URL  string
	Kind Kind
}

// WithKind returns r with Kind filled in from the URL when it is unset.
func (r Reference) WithKind() (Reference, error) {
	if r.Kind != 0 {
		return r, nil
	}
	kind, err := Classify(r.URL)
	if err != nil {
		return Reference{}, err
	}
	r.Kind = kind
	return r, nil
}

// Normalize classifies and canonicalizes a raw reference without touching
// the network.
func Normalize(rawURL string) (Reference, error) {
	rawURL = strings.TrimSpace(rawURL)
	kind, err := Classify(rawURL)
	if err != nil {
		return Reference{}, err
	}
	canonical, err := Fixup(rawURL)
	if err != nil {
		return Reference{}, err
	}
	return Reference{URL: canonical, Kind: kind}, nil
}

// ListRequest is a validated listing plus the caller's item cap. A zero
// Limit means the whole listing; a zero Kind is derived from URL.
type ListRequest struct {
	URL   string `json:"url"`
	Kind  Kind   `json:"kind,omitempty"`
	Limit int    `json:"limit"`
}

// Reference returns the canonical reference carried by the request.
func (r ListRequest) Reference() Reference {
	return Reference{URL: r.URL, Kind: r.Kind}
}

var pagingParams = map[string]bool{
	"start": true,
	"count": true,
	"page":  true,
}

// StripPaging removes start, count and page parameters from the query
// string, keeping every other parameter in order.
func StripPaging(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return rawURL
	}

	kept := []string{}
	for _, param := range strings.Split(query, "&") {
		key, _, _ := strings.Cut(param, "=")
		if pagingParams[key] {
			continue
		}
		kept = append(kept, param)
	}
	return base + "?" + strings.Join(kept, "&")
}
