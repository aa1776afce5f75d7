package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestClassify_KnownPrefixes verifies each recognized prefix maps to its kind
func TestClassify_KnownPrefixes(t *testing.T) {
	tests := []struct {
		url  string
		kind Kind
	}{
		{"https://www.imdb.com/list/ls012345678/", ListBrowsing},
		{"  https://www.imdb.com/search/title/?genres=horror  ", TitleSearch},
		{"https://www.imdb.com/search/keyword/?keywords=dystopia", KeywordSearch},
	}

	for _, tt := range tests {
		kind, err := Classify(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.kind, kind, tt.url)
	}
}

// TestClassify_UnknownPrefix verifies unrecognized URLs are rejected
func TestClassify_UnknownPrefix(t *testing.T) {
	for _, raw := range []string{
		"https://imdb.com/list/ls012345678/",
		"HTTPS://WWW.IMDB.COM/list/ls012345678/",
		"https://www.imdb.com/title/tt0111161/",
		"",
	} {
		_, err := Classify(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidReference), raw)
	}
}

// TestKind_PageSize verifies the page-size convention per kind
func TestKind_PageSize(t *testing.T) {
	assert.Equal(t, 50, KeywordSearch.PageSize())
	assert.Equal(t, 250, TitleSearch.PageSize())
	assert.Equal(t, 250, ListBrowsing.PageSize())
}

// TestFixup_ListURL verifies list URLs are rewritten to a title search
func TestFixup_ListURL(t *testing.T) {
	fixed, err := Fixup("https://www.imdb.com/list/ls012345678/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.imdb.com/search/title/?lists=ls012345678", fixed)
	assert.NotEqual(t, byte('/'), fixed[len(fixed)-1])
}

// TestFixup_ListURLWithoutDigits verifies a list URL needs a numeric id
func TestFixup_ListURLWithoutDigits(t *testing.T) {
	_, err := Fixup("https://www.imdb.com/list/ls/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParseFailure))
}

// TestFixup_TrailingSlash verifies exactly one trailing slash is removed
func TestFixup_TrailingSlash(t *testing.T) {
	fixed, err := Fixup("https://www.imdb.com/search/keyword/?keywords=heist/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.imdb.com/search/keyword/?keywords=heist", fixed)
}

// TestFixup_Unchanged verifies already canonical URLs pass through
func TestFixup_Unchanged(t *testing.T) {
	raw := "https://www.imdb.com/search/title/?genres=horror&sort=moviemeter,asc"
	fixed, err := Fixup(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, fixed)
}

// TestFixup_Idempotent verifies applying Fixup twice equals applying it once
func TestFixup_Idempotent(t *testing.T) {
	for _, raw := range []string{
		"https://www.imdb.com/list/ls012345678/",
		"https://www.imdb.com/list/ls000000001",
		"https://www.imdb.com/search/title/?lists=ls012345678",
		"https://www.imdb.com/search/title/?genres=horror/",
		"https://www.imdb.com/search/keyword/?keywords=heist&sort=year",
	} {
		once, err := Fixup(raw)
		require.NoError(t, err, raw)
		twice, err := Fixup(once)
		require.NoError(t, err, raw)
		assert.Equal(t, once, twice, raw)
	}
}

// TestNormalize_KeepsSourceKind verifies list references keep their kind after rewriting
func TestNormalize_KeepsSourceKind(t *testing.T) {
	ref, err := Normalize(" https://www.imdb.com/list/ls012345678/ ")
	require.NoError(t, err)
	assert.Equal(t, ListBrowsing, ref.Kind)
	assert.Equal(t, "https://www.imdb.com/search/title/?lists=ls012345678", ref.URL)
}

// TestNormalize_Invalid verifies invalid references fail before rewriting
func TestNormalize_Invalid(t *testing.T) {
	_, err := Normalize("https://example.com/list/ls1/")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

// TestStripPaging verifies paging parameters are removed and others kept
func TestStripPaging(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://www.imdb.com/search/title/?lists=ls1&count=250&start=251",
			"https://www.imdb.com/search/title/?lists=ls1",
		},
		{
			"https://www.imdb.com/search/keyword/?page=3&keywords=heist",
			"https://www.imdb.com/search/keyword/?keywords=heist",
		},
		{
			"https://www.imdb.com/search/title/?genres=horror&sort=year",
			"https://www.imdb.com/search/title/?genres=horror&sort=year",
		},
		{
			"https://www.imdb.com/search/title/?",
			"https://www.imdb.com/search/title/?",
		},
	}

	for _, tt := range tests {
		got := StripPaging(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, StripPaging(got), "should be idempotent")
	}
}

// TestListEntry_Scalar verifies a bare URL entry decodes with no limit
func TestListEntry_Scalar(t *testing.T) {
	var entries []ListEntry
	err := yaml.Unmarshal([]byte(`- https://www.imdb.com/list/ls012345678/`), &entries)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://www.imdb.com/list/ls012345678/", entries[0].URL)
	assert.Equal(t, 0, entries[0].Limit)
}

// TestListEntry_Mapping verifies mapping entries with mixed-case keys
func TestListEntry_Mapping(t *testing.T) {
	doc := `
- URL: https://www.imdb.com/search/title/?genres=horror
  Limit: 50 items
- url: https://www.imdb.com/search/keyword/?keywords=heist
`
	var entries []ListEntry
	require.NoError(t, yaml.Unmarshal([]byte(doc), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "https://www.imdb.com/search/title/?genres=horror", entries[0].URL)
	assert.Equal(t, 50, entries[0].Limit)
	assert.Equal(t, 0, entries[1].Limit)
}

// TestListEntry_Sequence verifies a nested list is rejected
func TestListEntry_Sequence(t *testing.T) {
	var entries []ListEntry
	err := yaml.Unmarshal([]byte("- [a, b]"), &entries)
	assert.Error(t, err)
}

// TestListEntry_CheckRequiresURL verifies entries without a URL are invalid
func TestListEntry_CheckRequiresURL(t *testing.T) {
	err := ListEntry{Limit: 10}.Check()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Contains(t, err.Error(), "url is required")
}

// TestFirstInt verifies integer extraction with a default
func TestFirstInt(t *testing.T) {
	assert.Equal(t, 25, FirstInt("top 25", 0))
	assert.Equal(t, 7, FirstInt("7", 0))
	assert.Equal(t, 0, FirstInt("none", 0))
	assert.Equal(t, -1, FirstInt("", -1))
}

// TestListRequest_JSONKeepsKind verifies a request read back from JSON keeps its kind
func TestListRequest_JSONKeepsKind(t *testing.T) {
	req := ListRequest{URL: "https://www.imdb.com/search/keyword/?keywords=heist", Kind: KeywordSearch, Limit: 20}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"keyword"`)

	var decoded ListRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"feed"}`), &decoded))
}

// TestReference_WithKind verifies a missing kind is derived from the URL
func TestReference_WithKind(t *testing.T) {
	ref, err := Reference{URL: "https://www.imdb.com/search/keyword/?keywords=heist"}.WithKind()
	require.NoError(t, err)
	assert.Equal(t, KeywordSearch, ref.Kind)

	ref, err = Reference{URL: "https://www.imdb.com/search/title/?lists=ls1", Kind: ListBrowsing}.WithKind()
	require.NoError(t, err)
	assert.Equal(t, ListBrowsing, ref.Kind, "an explicit kind is kept")

	_, err = Reference{URL: "https://example.com/"}.WithKind()
	assert.ErrorIs(t, err, ErrInvalidReference)
}
