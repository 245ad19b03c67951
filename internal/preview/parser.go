package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/bilgisen/addconnect/internal/models"
	"golang.org/x/net/html"
)

// ParseMeta extracts OpenGraph/meta preview fields from an HTML document.
// og:title falls back to <title>, og:description to the description meta.
func ParseMeta(r io.Reader) (*models.Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	m := metaIndex{byProperty: map[string]string{}, byName: map[string]string{}}
	var title string
	walk(doc, &m, &title)

	p := &models.Preview{
		Title:       models.NullIfEmpty(cleanText(m.lookup("og:title"))),
		Description: models.NullIfEmpty(cleanText(m.lookup("og:description"))),
		Image:       models.NullIfEmpty(strings.TrimSpace(m.lookup("og:image"))),
		Site:        models.NullIfEmpty(cleanText(m.lookup("og:site_name"))),
	}
	if p.Title == nil {
		p.Title = models.NullIfEmpty(cleanText(title))
	}
	if p.Description == nil {
		p.Description = models.NullIfEmpty(cleanText(m.lookup("description")))
	}
	return p, nil
}

type metaIndex struct {
	byProperty map[string]string
	byName     map[string]string
}

// lookup prefers property= over name= and the first occurrence of each
func (m metaIndex) lookup(key string) string {
	if v, ok := m.byProperty[key]; ok {
		return v
	}
	return m.byName[key]
}

func walk(n *html.Node, m *metaIndex, title *string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			content, hasContent := attr(n, "content")
			if !hasContent {
				break
			}
			if prop, ok := attr(n, "property"); ok {
				if _, seen := m.byProperty[prop]; !seen {
					m.byProperty[prop] = content
				}
			}
			if name, ok := attr(n, "name"); ok {
				if _, seen := m.byName[name]; !seen {
					m.byName[name] = content
				}
			}
		case "title":
			if *title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				*title = n.FirstChild.Data
			}
		case "svg":
			// <title> inside inline svg is not the page title
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, m, title)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// cleanText normalizes whitespace; the tokenizer already unescaped entities
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
