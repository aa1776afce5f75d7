package listing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pevans/imdbsync/catalog"
	"github.com/pevans/imdbsync/fetch"
)

// Selectors holds the path expressions used to read listing pages. Any
// expression may use either dialect understood by fetch.Document.
type Selectors struct {
	// KeywordTotal matches the description lines of a keyword search.
	KeywordTotal string `yaml:"keyword_total"`
	// SearchTotal matches the description span of a list or title search.
	SearchTotal string `yaml:"search_total"`
	// Identifiers matches the item identifier attribute of each result.
	Identifiers string `yaml:"identifiers"`
}

// DefaultSelectors returns the expressions matching the catalog's lister
// markup.
func DefaultSelectors() Selectors {
	return Selectors{
		KeywordTotal: "//div[@class='desc']/text()",
		SearchTotal:  "//div[@class='desc']/span/text()",
		Identifiers:  "//div[contains(@class, 'lister-item-image')]//a/img//@data-tconst",
	}
}

// withDefaults fills empty expressions from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if s.KeywordTotal == "" {
		s.KeywordTotal = def.KeywordTotal
	}
	if s.SearchTotal == "" {
		s.SearchTotal = def.SearchTotal
	}
	if s.Identifiers == "" {
		s.Identifiers = def.Identifiers
	}
	return s
}

// Extractor reads the values the crawler needs from a fetched page.
type Extractor interface {
	TotalCount(doc fetch.Document, kind catalog.Kind) (int, error)
	Identifiers(doc fetch.Document) ([]string, error)
}

// SelectorExtractor implements Extractor with configurable expressions.
type SelectorExtractor struct {
	selectors Selectors
}

// NewSelectorExtractor creates an extractor. Empty expressions fall back
// to the defaults.
func NewSelectorExtractor(selectors Selectors) *SelectorExtractor {
	return &SelectorExtractor{selectors: selectors.withDefaults()}
}

var totalPattern = regexp.MustCompile(`(\d+) title`)

// TotalCount implements Extractor. A missing description node is a parse
// failure; a description without a count means the listing is empty.
func (e *SelectorExtractor) TotalCount(doc fetch.Document, kind catalog.Kind) (int, error) {
	if kind == catalog.KeywordSearch {
		return e.keywordTotal(doc)
	}
	return e.searchTotal(doc)
}

func (e *SelectorExtractor) keywordTotal(doc fetch.Document) (int, error) {
	lines, err := doc.Query(e.selectors.KeywordTotal)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", catalog.ErrParseFailure, err)
	}
	for _, line := range lines {
		if !strings.Contains(line, "title") {
			continue
		}
		if total, ok := parseTotal(line); ok {
			return total, nil
		}
	}
	return 0, catalog.ErrNoResults
}

func (e *SelectorExtractor) searchTotal(doc fetch.Document) (int, error) {
	spans, err := doc.Query(e.selectors.SearchTotal)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", catalog.ErrParseFailure, err)
	}
	if len(spans) == 0 {
		return 0, catalog.ErrParseFailure
	}
	total, ok := parseTotal(spans[0])
	if !ok {
		return 0, catalog.ErrNoResults
	}
	return total, nil
}

// parseTotal reads the count in front of "title", ignoring thousands
// separators.
func parseTotal(text string) (int, bool) {
	m := totalPattern.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if m == nil {
		return 0, false
	}
	total, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return total, true
}

// Identifiers implements Extractor.
func (e *SelectorExtractor) Identifiers(doc fetch.Document) ([]string, error) {
	ids, err := doc.Query(e.selectors.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrParseFailure, err)
	}
	return ids, nil
}
