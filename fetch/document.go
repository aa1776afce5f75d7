package fetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed page that can be queried by path expression.
//
// Two expression dialects are supported. Expressions beginning with "/" or
// "(" are XPath; anything else is a CSS selector, optionally followed by a
// final " @name" token to select an attribute instead of element text.
// Query returns the matched text or attribute values in document order.
type Document interface {
	Query(expr string) ([]string, error)
}

// HTMLDocument is a Document backed by a parsed HTML tree.
type HTMLDocument struct {
	root *html.Node
}

// ParseHTML parses r into an HTMLDocument.
func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{root: root}, nil
}

// Query implements Document.
func (d *HTMLDocument) Query(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty query expression")
	}
	if isXPath(expr) {
		return d.queryXPath(expr)
	}
	return d.queryCSS(expr), nil
}

func isXPath(expr string) bool {
	return strings.HasPrefix(expr, "/") || strings.HasPrefix(expr, "(")
}

func (d *HTMLDocument) queryXPath(expr string) ([]string, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		// Attribute and text nodes both come back as nodes whose inner
		// text is the value.
		values = append(values, htmlquery.InnerText(n))
	}
	return values, nil
}

func (d *HTMLDocument) queryCSS(expr string) []string {
	selector, attr := splitAttr(expr)
	doc := goquery.NewDocumentFromNode(d.root)

	values := []string{}
	doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		if attr == "" {
			values = append(values, s.Text())
			return
		}
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}

// splitAttr separates a trailing "@name" token from a CSS selector.
func splitAttr(expr string) (selector, attr string) {
	fields := strings.Fields(expr)
	last := fields[len(fields)-1]
	if len(fields) > 1 && strings.HasPrefix(last, "@") {
		return strings.Join(fields[:len(fields)-1], " "), last[1:]
	}
	return expr, ""
}
