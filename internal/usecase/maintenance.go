package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCurator/internal/ports"
)

const (
	refreshDelay        = 250 * time.Millisecond
	defaultRefreshBatch = 25
)

// RefreshStats reports one bulk image-refresh pass.
type RefreshStats struct {
	Scanned int
	Updated int
}

// ImageRefresher re-fetches articles that landed without an image. It runs
// one article at a time with a fixed delay between outbound fetches to
// avoid bursts against any single origin, and is bounded per invocation;
// unprocessed articles remain candidates for the next pass. Do not
// parallelize this path.
type ImageRefresher struct {
	fetcher  MetadataFetcher
	articles ports.ArticleStore
	audit    ports.AuditLog
	logger   *slog.Logger
	batch    int
	delay    time.Duration
}

// NewImageRefresher constructs the maintenance use case; batch <= 0 uses
// the default of 25.
func NewImageRefresher(fetcher MetadataFetcher, articles ports.ArticleStore, audit ports.AuditLog, logger *slog.Logger, batch int) *ImageRefresher {
	if batch <= 0 {
		batch = defaultRefreshBatch
	}
	return &ImageRefresher{
		fetcher:  fetcher,
		articles: articles,
		audit:    audit,
		logger:   logger,
		batch:    batch,
		delay:    refreshDelay,
	}
}

// Refresh processes up to one batch of image-less articles.
func (r *ImageRefresher) Refresh(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	articles, err := r.articles.ListMissingImage(ctx, r.batch)
	if err != nil {
		return stats, fmt.Errorf("list articles without image: %w", err)
	}

	for idx, article := range articles {
		if idx > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}

		stats.Scanned++
		meta := r.fetcher.Fetch(ctx, article.URL)
		if meta.ImageURL == "" {
			continue
		}

		if err := r.articles.UpdateImage(ctx, article.ID, meta.ImageURL); err != nil {
			r.warn("image update failed", "article", article.ID, "error", err)
			continue
		}
		stats.Updated++

		if r.audit != nil {
			details := fmt.Sprintf("image refreshed from %s", meta.URL)
			if err := r.audit.Write(ctx, article.ID, ports.AuditEdited, ports.SystemActor, details); err != nil {
				r.warn("audit write failed", "article", article.ID, "error", err)
			}
		}
	}

	return stats, nil
}

func (r *ImageRefresher) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
