package metaparse

import "testing"

func TestFindMetaAttributeTolerance(t *testing.T) {
	t.Parallel()

	// content appears before the key, mixed quote styles, name= vs property=.
	html := `<html><head>
	<meta content="OG Title" property="og:title">
	<meta name='twitter:description' content='tw desc'>
	<meta content=unquoted name=author>
	</head></html>`

	page := Parse(html)

	if got := page.FindMeta("og:title"); got != "OG Title" {
		t.Fatalf("expected og:title regardless of attribute order, got %q", got)
	}
	if got := page.FindMeta("twitter:description"); got != "tw desc" {
		t.Fatalf("expected single-quoted meta, got %q", got)
	}
	if got := page.FindMeta("author"); got != "unquoted" {
		t.Fatalf("expected unquoted attribute value, got %q", got)
	}
}

func TestFindMetaCandidateOrderAndCase(t *testing.T) {
	t.Parallel()

	html := `<head>
	<meta property="OG:Description" content="og desc">
	<meta name="description" content="plain desc">
	</head>`

	page := Parse(html)

	if got := page.FindMeta("og:description", "description"); got != "og desc" {
		t.Fatalf("expected first candidate key to win case-insensitively, got %q", got)
	}
	if got := page.FindMeta("missing", "description"); got != "plain desc" {
		t.Fatalf("expected fallback to later candidate, got %q", got)
	}
	if got := page.FindMeta("nope"); got != "" {
		t.Fatalf("expected empty for unknown key, got %q", got)
	}
}

func TestTitleAndCanonical(t *testing.T) {
	t.Parallel()

	html := `<head>
	<title> Budget &amp; Housing </title>
	<link href="https://example.com/canonical" rel="canonical">
	</head>`

	page := Parse(html)

	if got := page.Title(); got != "Budget & Housing" {
		t.Fatalf("expected decoded trimmed title, got %q", got)
	}
	if got := page.Canonical(); got != "https://example.com/canonical" {
		t.Fatalf("expected canonical href with rel after href, got %q", got)
	}
}

func TestJSONLDBadBlockIsolation(t *testing.T) {
	t.Parallel()

	html := `<head>
	<script type="application/ld+json">{not valid json</script>
	<script type="application/ld+json">
	{"@type": "NewsArticle", "headline": "Survivor", "datePublished": "2024-05-01T10:00:00Z"}
	</script>
	</head>`

	ld := Parse(html).FindArticleLD()
	if ld == nil {
		t.Fatalf("malformed block must not hide later blocks")
	}
	if ld.Headline != "Survivor" {
		t.Fatalf("unexpected headline: %q", ld.Headline)
	}
}

func TestJSONLDArrayAndGraph(t *testing.T) {
	t.Parallel()

	html := `<head><script type="application/ld+json">
	{"@context": "https://schema.org", "@graph": [
		{"@type": "BreadcrumbList"},
		{"@type": ["NewsArticle", "Article"],
		 "headline": "Graph Story",
		 "dateModified": "2024-06-02T08:00:00Z",
		 "publisher": {"name": "The Example"},
		 "author": [{"name": "Jo Writer"}, {"name": "Second"}],
		 "image": {"url": "https://cdn.example.com/a.jpg"}}
	]}
	</script></head>`

	ld := Parse(html).FindArticleLD()
	if ld == nil {
		t.Fatalf("expected article item inside @graph")
	}
	if ld.Headline != "Graph Story" {
		t.Fatalf("unexpected headline: %q", ld.Headline)
	}
	if ld.DatePublished != "2024-06-02T08:00:00Z" {
		t.Fatalf("expected dateModified fallback, got %q", ld.DatePublished)
	}
	if ld.Publisher != "The Example" {
		t.Fatalf("unexpected publisher: %q", ld.Publisher)
	}
	if ld.Author != "Jo Writer" {
		t.Fatalf("expected first author, got %q", ld.Author)
	}
	if ld.Image != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected image: %q", ld.Image)
	}
}

func TestJSONLDBareStringFields(t *testing.T) {
	t.Parallel()

	html := `<head><script type="application/ld+json">
	[{"@type": "webpage", "headline": "Bare", "publisher": "Plain Outlet", "author": "A. Name", "image": "https://img.example/i.png"}]
	</script></head>`

	ld := Parse(html).FindArticleLD()
	if ld == nil {
		t.Fatalf("expected article-like item from array block")
	}
	if ld.Publisher != "Plain Outlet" || ld.Author != "A. Name" || ld.Image != "https://img.example/i.png" {
		t.Fatalf("bare string fields mis-extracted: %+v", ld)
	}
}

func TestJSONLDNonArticleTypesIgnored(t *testing.T) {
	t.Parallel()

	html := `<head><script type="application/ld+json">
	{"@type": "Organization", "name": "Corp"}
	</script></head>`

	if ld := Parse(html).FindArticleLD(); ld != nil {
		t.Fatalf("non-article type must not match, got %+v", ld)
	}
}

func TestParseNeverFails(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "<<<", "plain text", "<head><meta property='og:title' content='x'"} {
		page := Parse(input)
		if page == nil {
			t.Fatalf("Parse returned nil for %q", input)
		}
	}
}
