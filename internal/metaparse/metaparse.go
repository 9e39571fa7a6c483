package metaparse

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page holds everything the metadata extractor needs from one HTML document:
// meta tags in document order, the <title> text, the canonical link, and all
// parseable JSON-LD items. Real-world publisher markup is messy, so the
// parser is tolerant by construction: attribute order and quote style do not
// matter, and one malformed JSON-LD block never hides the others.
type Page struct {
	metas     []metaTag
	title     string
	canonical string
	ldItems   []map[string]any
}

type metaTag struct {
	property string
	name     string
	content  string
}

// Parse scans a raw HTML document. It never fails: unparseable input yields
// an empty Page. Truncated documents parse with whatever made it through.
func Parse(html string) *Page {
	page := &Page{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return page
	}

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		tag := metaTag{}
		tag.property, _ = sel.Attr("property")
		tag.name, _ = sel.Attr("name")
		tag.content, _ = sel.Attr("content")
		if tag.property == "" && tag.name == "" {
			return
		}
		page.metas = append(page.metas, tag)
	})

	page.title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("link").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		if !strings.EqualFold(strings.TrimSpace(rel), "canonical") {
			return true
		}
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			page.canonical = strings.TrimSpace(href)
			return false
		}
		return true
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		scriptType, _ := sel.Attr("type")
		if !isJSONLD(scriptType) {
			return
		}
		page.ldItems = append(page.ldItems, parseLDBlock(sel.Text())...)
	})

	return page
}

func isJSONLD(scriptType string) bool {
	scriptType = strings.ToLower(strings.TrimSpace(scriptType))
	if idx := strings.IndexByte(scriptType, ';'); idx >= 0 {
		scriptType = strings.TrimSpace(scriptType[:idx])
	}
	return scriptType == "application/ld+json"
}

// parseLDBlock decodes one script body. A block may hold a single object or
// an array of objects; @graph wrappers are flattened one level. A block that
// fails to decode is skipped so later blocks still contribute.
func parseLDBlock(raw string) []map[string]any {
	var decoded any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &decoded); err != nil {
		return nil
	}

	var items []map[string]any
	collect := func(v any) {
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		items = append(items, obj)
		if graph, ok := obj["@graph"].([]any); ok {
			for _, g := range graph {
				if nested, ok := g.(map[string]any); ok {
					items = append(items, nested)
				}
			}
		}
	}

	switch v := decoded.(type) {
	case map[string]any:
		collect(v)
	case []any:
		for _, entry := range v {
			collect(entry)
		}
	}
	return items
}

// FindMeta returns the first non-empty content among the candidate keys,
// matched case-insensitively against either property= or name=. Candidates
// are tried in the given order, not document order.
func (p *Page) FindMeta(keys ...string) string {
	for _, key := range keys {
		for _, tag := range p.metas {
			if !strings.EqualFold(tag.property, key) && !strings.EqualFold(tag.name, key) {
				continue
			}
			if content := strings.TrimSpace(tag.content); content != "" {
				return content
			}
		}
	}
	return ""
}

// Title returns the <title> element inner text.
func (p *Page) Title() string {
	return p.title
}

// Canonical returns the <link rel="canonical"> href, if any.
func (p *Page) Canonical() string {
	return p.canonical
}

var articleTypes = map[string]struct{}{
	"article":          {},
	"newsarticle":      {},
	"reportage":        {},
	"satiricalarticle": {},
	"scholarlyarticle": {},
	"technicalarticle": {},
	"webpage":          {},
	"webpageelement":   {},
}

// ArticleLD carries the fields extracted from the first article-like
// JSON-LD item on the page.
type ArticleLD struct {
	Headline      string
	DatePublished string
	Publisher     string
	Author        string
	Image         string
}

// FindArticleLD locates the first JSON-LD item whose @type matches a known
// article-like type and extracts its fields. Returns nil when no item
// qualifies.
func (p *Page) FindArticleLD() *ArticleLD {
	for _, item := range p.ldItems {
		if !isArticleType(item["@type"]) {
			continue
		}

		ld := &ArticleLD{
			Headline:      stringValue(item["headline"]),
			DatePublished: stringValue(item["datePublished"]),
			Publisher:     nameOf(item["publisher"]),
			Author:        nameOf(firstOf(item["author"])),
			Image:         imageOf(item["image"]),
		}
		if ld.DatePublished == "" {
			ld.DatePublished = stringValue(item["dateModified"])
		}
		return ld
	}
	return nil
}

// isArticleType accepts a bare string @type or the first entry of an array.
func isArticleType(v any) bool {
	switch t := v.(type) {
	case string:
		_, ok := articleTypes[strings.ToLower(t)]
		return ok
	case []any:
		if len(t) == 0 {
			return false
		}
		return isArticleType(t[0])
	default:
		return false
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// nameOf accepts either an object carrying .name or a bare string.
func nameOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringValue(t["name"])
	default:
		return ""
	}
}

func firstOf(v any) any {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	}
	return v
}

// imageOf accepts a bare URL string or an object carrying .url.
func imageOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringValue(t["url"])
	case []any:
		if len(t) == 0 {
			return ""
		}
		return imageOf(t[0])
	default:
		return ""
	}
}
