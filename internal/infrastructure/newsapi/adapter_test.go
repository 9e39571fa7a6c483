package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ingest"
)

func TestBuildQueryWithinBudget(t *testing.T) {
	t.Parallel()

	query, included := BuildQuery([]string{"rent control", "zoning"}, DefaultQueryBudget)
	if query != `"rent control" OR "zoning"` {
		t.Fatalf("unexpected query: %q", query)
	}
	if included != 2 {
		t.Fatalf("expected 2 included, got %d", included)
	}
}

func TestBuildQueryStopsAtBudget(t *testing.T) {
	t.Parallel()

	// "aaaa" -> 6 chars quoted; "bb" -> +4 (" OR ") +4 = 14 total, over 13.
	query, included := BuildQuery([]string{"aaaa", "bb", "cc"}, 13)
	if query != `"aaaa"` {
		t.Fatalf("expected truncation at the first keyword, got %q", query)
	}
	if included != 1 {
		t.Fatalf("expected 1 included, got %d", included)
	}

	// Exact fit is still allowed.
	query, included = BuildQuery([]string{"aaaa", "bb"}, 14)
	if query != `"aaaa" OR "bb"` || included != 2 {
		t.Fatalf("exact-budget query mangled: %q (%d)", query, included)
	}
}

func TestBuildQuerySkipsBlankKeywords(t *testing.T) {
	t.Parallel()

	query, included := BuildQuery([]string{"", "  ", "zoning"}, DefaultQueryBudget)
	if query != `"zoning"` || included != 1 {
		t.Fatalf("blank keywords leaked into query: %q (%d)", query, included)
	}
}

func TestDisabledAdapterIsIdle(t *testing.T) {
	t.Parallel()

	adapter := NewAdapter(nil, 0, nil)
	if adapter.Enabled() {
		t.Fatalf("adapter without provider must report disabled")
	}

	result := adapter.Fetch(context.Background(), ingest.Options{}, []string{"zoning"})
	if result.Err != "" || len(result.Candidates) != 0 {
		t.Fatalf("disabled adapter must return an empty clean result, got %+v", result)
	}
}

type fakeProvider struct {
	candidates []domain.Candidate
	err        error
	gotQuery   string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, query string, _ ingest.Options) ([]domain.Candidate, error) {
	f.gotQuery = query
	return f.candidates, f.err
}

func TestFetchRefiltersProviderResults(t *testing.T) {
	t.Parallel()

	published := time.Date(2024, time.May, 7, 12, 0, 0, 0, time.UTC)
	stale := time.Date(2022, time.May, 7, 12, 0, 0, 0, time.UTC)
	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	provider := &fakeProvider{candidates: []domain.Candidate{
		{Title: "Zoning reform passes", URL: "https://a.example/1", PublishedAt: published},
		{Title: "[Removed]", URL: "https://a.example/2", PublishedAt: published},
		{Title: "Zoning item without url", PublishedAt: published},
		{Title: "Weather report", URL: "https://a.example/3", PublishedAt: published},
		{Title: "Old zoning story", URL: "https://a.example/4", PublishedAt: stale},
	}}

	adapter := NewAdapter(provider, DefaultQueryBudget, nil)
	result := adapter.Fetch(context.Background(), ingest.Options{From: &from}, []string{"zoning"})

	if result.Err != "" {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if result.Raw != 5 {
		t.Fatalf("expected 5 raw candidates, got %d", result.Raw)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].URL != "https://a.example/1" {
		t.Fatalf("re-filter kept the wrong candidates: %+v", result.Candidates)
	}
	if provider.gotQuery != `"zoning"` {
		t.Fatalf("provider received query %q", provider.gotQuery)
	}
}

func TestFetchProviderFailureIsContained(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: errors.New("quota exceeded")}
	adapter := NewAdapter(provider, DefaultQueryBudget, nil)

	result := adapter.Fetch(context.Background(), ingest.Options{}, []string{"zoning"})
	if result.Err == "" || !strings.Contains(result.Err, "fake") {
		t.Fatalf("expected provider-tagged error string, got %q", result.Err)
	}
	if len(result.Candidates) != 0 {
		t.Fatalf("failed search must yield zero candidates")
	}
}

func TestNewsAPIProviderSearch(t *testing.T) {
	t.Parallel()

	body := `{
		"status": "ok",
		"articles": [{
			"source": {"name": "Example Times"},
			"author": "Sam Reporter",
			"title": "Council weighs &amp; debates zoning",
			"description": "<p>Zoning debate continues.</p>",
			"url": "https://www.example.com/zoning?utm_source=api",
			"urlToImage": "https://cdn.example.com/z.jpg",
			"publishedAt": "2024-05-07T12:00:00Z"
		}]
	}`

	var gotPath, gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	provider := NewNewsAPIProvider("secret-key", server.Client())
	provider.baseURL = server.URL

	from := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	candidates, err := provider.Search(context.Background(), `"zoning"`, ingest.Options{From: &from})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotPath != "/v2/everything" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Fatalf("api key not sent in header, got %q", gotKey)
	}
	if gotQuery != `"zoning"` {
		t.Fatalf("query not forwarded, got %q", gotQuery)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.Title != "Council weighs & debates zoning" {
		t.Fatalf("title not sanitized: %q", got.Title)
	}
	if got.URL != "https://www.example.com/zoning" {
		t.Fatalf("url not normalized: %q", got.URL)
	}
	if got.Snippet != "Zoning debate continues." {
		t.Fatalf("snippet not sanitized: %q", got.Snippet)
	}
	if got.OutletDomain != "example.com" {
		t.Fatalf("outlet domain not derived: %q", got.OutletDomain)
	}
	if got.Source != domain.SourceNewsAPI {
		t.Fatalf("unexpected source tag: %q", got.Source)
	}
}

func TestNewsAPIProviderErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "message": "apiKeyInvalid"}`))
	}))
	defer server.Close()

	provider := NewNewsAPIProvider("bad-key", server.Client())
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), `"zoning"`, ingest.Options{})
	if err == nil || !strings.Contains(err.Error(), "apiKeyInvalid") {
		t.Fatalf("expected provider error with message, got %v", err)
	}
}

func TestGNewsProviderSearch(t *testing.T) {
	t.Parallel()

	body := `{
		"articles": [{
			"title": "Zoning vote scheduled",
			"description": "The vote is next week.",
			"url": "https://example.org/vote?fbclid=abc",
			"image": "https://cdn.example.org/v.jpg",
			"publishedAt": "2024-05-07T09:00:00Z",
			"source": {"name": "Example Org", "url": "https://www.example.org"}
		}]
	}`

	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	provider := NewGNewsProvider("gnews-key", server.Client())
	provider.baseURL = server.URL

	candidates, err := provider.Search(context.Background(), `"zoning"`, ingest.Options{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if gotAPIKey != "gnews-key" {
		t.Fatalf("api key not sent as query param, got %q", gotAPIKey)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.URL != "https://example.org/vote" {
		t.Fatalf("url not normalized: %q", got.URL)
	}
	if got.OutletDomain != "example.org" {
		t.Fatalf("outlet domain not taken from source url: %q", got.OutletDomain)
	}
}
