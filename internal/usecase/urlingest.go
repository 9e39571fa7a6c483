package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// MetadataFetcher resolves structured metadata for one submitted URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) domain.URLMetadata
}

// URLIngestResult reports the single-URL ingest outcome.
type URLIngestResult struct {
	Article   domain.Article
	Metadata  domain.URLMetadata
	Created   bool
	Duplicate bool
}

// URLIngestor handles the ad-hoc path: an admin pastes one URL, metadata is
// fetched directly (no keyword filter), and the record is staged as QUEUED
// or NEEDS_MANUAL.
type URLIngestor struct {
	fetcher  MetadataFetcher
	articles ports.ArticleStore
	audit    ports.AuditLog
	logger   *slog.Logger
}

// NewURLIngestor constructs the single-URL ingest use case.
func NewURLIngestor(fetcher MetadataFetcher, articles ports.ArticleStore, audit ports.AuditLog, logger *slog.Logger) *URLIngestor {
	return &URLIngestor{fetcher: fetcher, articles: articles, audit: audit, logger: logger}
}

// Ingest fetches metadata and stages the article. A fetch failure with no
// recoverable title is the hard-failure path and returns an error; a
// paywall hit or soft fetch error stages the record as NEEDS_MANUAL for
// human completion instead.
func (u *URLIngestor) Ingest(ctx context.Context, rawURL, actorEmail string) (URLIngestResult, error) {
	meta := u.fetcher.Fetch(ctx, rawURL)
	result := URLIngestResult{Metadata: meta}

	if meta.FetchError != "" && meta.Title == "" {
		return result, fmt.Errorf("fetch url metadata: %s", meta.FetchError)
	}

	existing, err := u.articles.FindByURL(ctx, meta.URL)
	if err != nil {
		return result, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		result.Article = *existing
		result.Duplicate = true
		return result, nil
	}

	status := domain.StatusQueued
	if meta.Paywalled || meta.FetchError != "" {
		status = domain.StatusNeedsManual
	}

	fields := ports.NewArticle{
		Title:        meta.Title,
		URL:          meta.URL,
		Outlet:       meta.Outlet,
		OutletDomain: meta.OutletDomain,
		Snippet:      meta.Snippet,
		ImageURL:     meta.ImageURL,
		Author:       meta.Author,
		Status:       status,
		IngestSource: domain.SourceURL,
	}
	if meta.PublishedAt != nil {
		fields.PublishedAt = *meta.PublishedAt
	}

	article, err := u.articles.Create(ctx, fields)
	if err != nil {
		return result, fmt.Errorf("persist article: %w", err)
	}

	result.Article = article
	result.Created = true

	if actorEmail == "" {
		actorEmail = ports.SystemActor
	}
	if u.audit != nil {
		details := fmt.Sprintf("submitted %s, staged as %s", rawURL, status)
		if err := u.audit.Write(ctx, article.ID, ports.AuditURLIngested, actorEmail, details); err != nil {
			u.warn("audit write failed", "article", article.ID, "error", err)
		}
	}

	return result, nil
}

func (u *URLIngestor) warn(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Warn(msg, args...)
	}
}
