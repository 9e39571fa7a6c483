package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/keyword"
	"NewsCurator/internal/sanitize"
	"NewsCurator/internal/urlnorm"
)

const (
	fetchTimeout = 15 * time.Second
	snippetMax   = 500

	userAgent = "NewsCuratorBot/1.0 (feed ingest; contact: ops@newscurator.example)"
)

// Adapter fetches and filters one configured RSS/Atom feed at a time.
type Adapter struct {
	client *http.Client
	logger *slog.Logger
}

// New wires an HTTP client; a nil client gets the default 15s-timeout one.
func New(client *http.Client, logger *slog.Logger) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Adapter{client: client, logger: logger}
}

// Fetch pulls one feed and returns keyword- and date-filtered candidates.
// A feed-level failure lands in Result.Err so one broken feed never aborts
// ingestion for the others; per-item defects drop the item silently.
func (a *Adapter) Fetch(ctx context.Context, feed config.FeedConfig, opts ingest.Options, keywords []string) ingest.Result {
	result := ingest.Result{Source: domain.SourceRSS, FeedURL: feed.URL}

	parsed, err := a.fetchFeed(ctx, feed.URL)
	if err != nil {
		result.Err = err.Error()
		a.warn("feed fetch failed", "feed", feed.Name, "error", err)
		return result
	}

	result.Raw = len(parsed.Items)
	for _, item := range parsed.Items {
		candidate, ok := a.toCandidate(item, feed)
		if !ok {
			continue
		}
		if !opts.InWindow(candidate.PublishedAt) {
			continue
		}
		if !keyword.HasMatch(candidate.Title+" "+candidate.Snippet, keywords) {
			continue
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	return result
}

func (a *Adapter) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// toCandidate maps one feed item; items missing title or link, or with an
// unparseable publish date, are dropped.
func (a *Adapter) toCandidate(item *gofeed.Item, feed config.FeedConfig) (domain.Candidate, bool) {
	title := sanitize.Sanitize(item.Title)

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}
	if title == "" || link == "" {
		return domain.Candidate{}, false
	}

	publishedAt, ok := itemDate(item)
	if !ok {
		return domain.Candidate{}, false
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}

	return domain.Candidate{
		Title:        title,
		URL:          urlnorm.Normalize(link),
		Outlet:       feed.Outlet,
		OutletDomain: feed.Domain,
		PublishedAt:  publishedAt,
		Snippet:      sanitize.SanitizeAndTruncate(description, snippetMax),
		ImageURL:     itemImage(item),
		Author:       itemAuthor(item),
		Source:       domain.SourceRSS,
	}, true
}

// itemDate takes pubDate (parsed by gofeed) or dc:date; no date means drop.
func itemDate(item *gofeed.Item) (time.Time, bool) {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed, true
	}
	if item.DublinCoreExt != nil {
		for _, raw := range item.DublinCoreExt.Date {
			if parsed, err := dateparse.ParseAny(raw); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return sanitize.Sanitize(item.Authors[0].Name)
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return sanitize.Sanitize(item.DublinCoreExt.Creator[0])
	}
	return ""
}

// itemImage reads an image enclosure first, then media:content.
func itemImage(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	for _, ext := range item.Extensions["media"]["content"] {
		if u := ext.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

func (a *Adapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
