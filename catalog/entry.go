package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ListEntry is one listing reference as written in a config file: either a
// bare URL or a mapping with url and limit keys.
type ListEntry struct {
	URL   string
	Limit int
}

var firstIntPattern = regexp.MustCompile(`(\d+)`)

// UnmarshalYAML accepts both the scalar and the mapping form. Mapping keys
// are matched case-insensitively; unknown keys are ignored.
func (e *ListEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		e.URL = strings.TrimSpace(value.Value)
		e.Limit = 0
		return nil
	case yaml.MappingNode:
		*e = ListEntry{}
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := strings.ToLower(strings.TrimSpace(value.Content[i].Value))
			val := value.Content[i+1]
			switch key {
			case "url":
				e.URL = strings.TrimSpace(val.Value)
			case "limit":
				e.Limit = FirstInt(val.Value, 0)
			}
		}
		return nil
	default:
		return fmt.Errorf("imdb_list entry must be a URL or a mapping (line %d)", value.Line)
	}
}

// Check reports whether the entry carries a URL.
func (e ListEntry) Check() error {
	if e.URL == "" {
		return fmt.Errorf("%w: Collection Error: imdb_list attribute url is required", ErrInvalidReference)
	}
	return nil
}

// FirstInt returns the first run of digits in s as an integer, or def when
// there is none.
func FirstInt(s string, def int) int {
	m := firstIntPattern.FindString(s)
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return def
	}
	return n
}
