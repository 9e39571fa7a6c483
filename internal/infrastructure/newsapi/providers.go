package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/sanitize"
	"NewsCurator/internal/urlnorm"
)

const (
	searchTimeout = 20 * time.Second
	pageSize      = 50
	snippetMax    = 500

	newsAPIBaseURL = "https://newsapi.org"
	gnewsBaseURL   = "https://gnews.io"
)

// NewsAPIProvider talks to newsapi.org /v2/everything.
type NewsAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ingest.SearchProvider = (*NewsAPIProvider)(nil)

// NewNewsAPIProvider builds the newsapi.org provider.
func NewNewsAPIProvider(apiKey string, client *http.Client) *NewsAPIProvider {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &NewsAPIProvider{apiKey: apiKey, baseURL: newsAPIBaseURL, client: client}
}

// Name identifies the provider inside the registry.
func (p *NewsAPIProvider) Name() string {
	return "newsapi"
}

// Search runs one everything-query and maps the response.
func (p *NewsAPIProvider) Search(ctx context.Context, query string, opts ingest.Options) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	if opts.From != nil {
		params.Set("from", opts.From.UTC().Format(time.RFC3339))
	}
	if opts.To != nil {
		params.Set("to", opts.To.UTC().Format(time.RFC3339))
	}

	endpoint := p.baseURL + "/v2/everything?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)

	var payload struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			Author      string `json:"author"`
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			URLToImage  string `json:"urlToImage"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}

	if err := doJSON(p.client, req, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("provider status %s: %s", payload.Status, payload.Message)
	}

	candidates := make([]domain.Candidate, 0, len(payload.Articles))
	for _, art := range payload.Articles {
		candidates = append(candidates, domain.Candidate{
			Title:        sanitize.Sanitize(art.Title),
			URL:          urlnorm.Normalize(strings.TrimSpace(art.URL)),
			Outlet:       sanitize.Sanitize(art.Source.Name),
			OutletDomain: domainOf(art.URL),
			PublishedAt:  parseDate(art.PublishedAt),
			Snippet:      sanitize.SanitizeAndTruncate(art.Description, snippetMax),
			ImageURL:     strings.TrimSpace(art.URLToImage),
			Author:       sanitize.Sanitize(art.Author),
			Source:       domain.SourceNewsAPI,
		})
	}
	return candidates, nil
}

// GNewsProvider talks to gnews.io /api/v4/search.
type GNewsProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ingest.SearchProvider = (*GNewsProvider)(nil)

// NewGNewsProvider builds the gnews.io provider.
func NewGNewsProvider(apiKey string, client *http.Client) *GNewsProvider {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &GNewsProvider{apiKey: apiKey, baseURL: gnewsBaseURL, client: client}
}

// Name identifies the provider inside the registry.
func (p *GNewsProvider) Name() string {
	return "gnews"
}

// Search runs one search query and maps the response.
func (p *GNewsProvider) Search(ctx context.Context, query string, opts ingest.Options) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en")
	params.Set("max", fmt.Sprintf("%d", pageSize))
	params.Set("apikey", p.apiKey)
	if opts.From != nil {
		params.Set("from", opts.From.UTC().Format(time.RFC3339))
	}
	if opts.To != nil {
		params.Set("to", opts.To.UTC().Format(time.RFC3339))
	}

	endpoint := p.baseURL + "/api/v4/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			Image       string `json:"image"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"source"`
		} `json:"articles"`
	}

	if err := doJSON(p.client, req, &payload); err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(payload.Articles))
	for _, art := range payload.Articles {
		outletDomain := domainOf(art.Source.URL)
		if outletDomain == "" {
			outletDomain = domainOf(art.URL)
		}
		candidates = append(candidates, domain.Candidate{
			Title:        sanitize.Sanitize(art.Title),
			URL:          urlnorm.Normalize(strings.TrimSpace(art.URL)),
			Outlet:       sanitize.Sanitize(art.Source.Name),
			OutletDomain: outletDomain,
			PublishedAt:  parseDate(art.PublishedAt),
			Snippet:      sanitize.SanitizeAndTruncate(art.Description, snippetMax),
			ImageURL:     strings.TrimSpace(art.Image),
			Source:       domain.SourceNewsAPI,
		})
	}
	return candidates, nil
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("search returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseDate(raw string) time.Time {
	if parsed, err := dateparse.ParseAny(strings.TrimSpace(raw)); err == nil {
		return parsed
	}
	return time.Time{}
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
