package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/keyword"
	"NewsCurator/internal/ports"
	"NewsCurator/internal/urlnorm"
)

// FeedFetcher pulls one configured RSS feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed config.FeedConfig, opts ingest.Options, keywords []string) ingest.Result
}

// SearchFetcher runs the news-search API adapter.
type SearchFetcher interface {
	Enabled() bool
	Fetch(ctx context.Context, opts ingest.Options, keywords []string) ingest.Result
}

// IngestorDeps wires all driven adapters into the ingestion pipeline.
type IngestorDeps struct {
	Feeds    []config.FeedConfig
	RSS      FeedFetcher
	Search   SearchFetcher
	Articles ports.ArticleStore
	Keywords ports.KeywordStore
	Runs     ports.RunStore
	Audit    ports.AuditLog
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Ingestor implements the multi-adapter ingestion workflow: fetch, filter,
// dedup by canonical URL, persist as QUEUED, record provenance, aggregate.
type Ingestor struct {
	feeds    []config.FeedConfig
	rss      FeedFetcher
	search   SearchFetcher
	articles ports.ArticleStore
	keywords ports.KeywordStore
	runs     ports.RunStore
	audit    ports.AuditLog
	logger   *slog.Logger
	clock    func() time.Time
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestorDeps) *Ingestor {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Ingestor{
		feeds:    deps.Feeds,
		rss:      deps.RSS,
		search:   deps.Search,
		articles: deps.Articles,
		keywords: deps.Keywords,
		runs:     deps.Runs,
		audit:    deps.Audit,
		logger:   deps.Logger,
		clock:    clock,
	}
}

// Run executes one full ingestion pass. Adapters run sequentially; one
// adapter's failure lands in its SourceResult and never aborts the others.
// The keyword snapshot is loaded once and passed explicitly into every
// adapter call, so a keyword edited mid-run does not affect this run.
func (i *Ingestor) Run(ctx context.Context, opts ingest.Options) (domain.Summary, error) {
	keywords := i.loadKeywords(ctx)
	hits := map[string]int{}

	var summary domain.Summary

	if i.rss != nil {
		for _, feed := range i.feeds {
			if !feed.Enabled {
				continue
			}
			result := i.runAdapter(ctx, feed.URL, func() ingest.Result {
				return i.rss.Fetch(ctx, feed, opts, keywords)
			}, domain.SourceRSS, keywords, hits)
			summary.Results = append(summary.Results, result)
		}
	}

	if i.search != nil && i.search.Enabled() {
		result := i.runAdapter(ctx, "", func() ingest.Result {
			return i.search.Fetch(ctx, opts, keywords)
		}, domain.SourceNewsAPI, keywords, hits)
		summary.Results = append(summary.Results, result)
	}

	for _, res := range summary.Results {
		summary.TotalFound += res.ArticlesFound
		summary.TotalCreated += res.ArticlesCreated
		summary.TotalDuped += res.ArticlesDuped
	}
	summary.KeywordStats = sortedStats(hits)
	summary.FinishedAt = i.clock()

	return summary, nil
}

// runAdapter wraps one adapter invocation with its provenance record.
func (i *Ingestor) runAdapter(ctx context.Context, feedURL string, fetch func() ingest.Result, source domain.Source, keywords []string, hits map[string]int) domain.SourceResult {
	startedAt := i.clock()

	runID := ""
	if i.runs != nil {
		id, err := i.runs.CreateRun(ctx, source, feedURL, startedAt)
		if err != nil {
			i.warn("create ingest run failed", "source", source, "error", err)
		} else {
			runID = id
		}
	}

	res := fetch()
	created, duped := i.persistAll(ctx, res.Candidates, keywords, hits)

	sourceResult := domain.SourceResult{
		Source:          source,
		FeedURL:         feedURL,
		ArticlesRaw:     res.Raw,
		ArticlesFound:   len(res.Candidates),
		ArticlesCreated: created,
		ArticlesDuped:   duped,
	}
	if res.Err != "" {
		sourceResult.Errors = append(sourceResult.Errors, res.Err)
	}

	if i.runs != nil && runID != "" {
		err := i.runs.FinalizeRun(ctx, runID, i.clock(), len(res.Candidates), created, duped, res.Err)
		if err != nil {
			i.warn("finalize ingest run failed", "run", runID, "error", err)
		}
	}

	return sourceResult
}

// persistAll deduplicates candidates by canonical URL and persists the
// survivors as QUEUED. A single candidate's failure is logged and skipped;
// the batch continues.
func (i *Ingestor) persistAll(ctx context.Context, candidates []domain.Candidate, keywords []string, hits map[string]int) (created, duped int) {
	if i.articles == nil {
		return 0, 0
	}

	for _, candidate := range candidates {
		canonical := urlnorm.Normalize(candidate.URL)

		existing, err := i.articles.FindByURL(ctx, canonical)
		if err != nil {
			i.warn("dedup lookup failed", "url", canonical, "error", err)
			continue
		}
		if existing != nil {
			duped++
			continue
		}

		matched := keyword.Match(candidate.Title+" "+candidate.Snippet, keywords)
		article, err := i.articles.Create(ctx, ports.NewArticle{
			Title:           candidate.Title,
			URL:             canonical,
			Outlet:          candidate.Outlet,
			OutletDomain:    candidate.OutletDomain,
			PublishedAt:     candidate.PublishedAt,
			Snippet:         candidate.Snippet,
			ImageURL:        candidate.ImageURL,
			Author:          candidate.Author,
			Status:          domain.StatusQueued,
			IngestSource:    candidate.Source,
			KeywordsMatched: matched,
		})
		if err != nil {
			i.warn("persist candidate failed", "url", canonical, "error", err)
			continue
		}

		created++
		for _, term := range matched {
			hits[term]++
		}
		i.writeAudit(ctx, article.ID, ports.AuditIngested,
			fmt.Sprintf("ingested from %s", candidate.Source))
	}

	return created, duped
}

// loadKeywords snapshots the enabled terms, degrading to the hardcoded
// default set when the store is unreachable.
func (i *Ingestor) loadKeywords(ctx context.Context) []string {
	if i.keywords == nil {
		return domain.DefaultKeywords
	}

	terms, err := i.keywords.ListEnabled(ctx)
	if err != nil {
		i.warn("keyword store unreachable, using defaults", "error", err)
		return domain.DefaultKeywords
	}
	return terms
}

func (i *Ingestor) writeAudit(ctx context.Context, articleID, action, details string) {
	if i.audit == nil {
		return
	}
	if err := i.audit.Write(ctx, articleID, action, ports.SystemActor, details); err != nil {
		i.warn("audit write failed", "article", articleID, "action", action, "error", err)
	}
}

func (i *Ingestor) warn(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Warn(msg, args...)
	}
}

// sortedStats orders keyword hit counts descending, ties by term ascending
// for determinism.
func sortedStats(hits map[string]int) []domain.KeywordCount {
	stats := make([]domain.KeywordCount, 0, len(hits))
	for term, count := range hits {
		stats = append(stats, domain.KeywordCount{Term: term, Count: count})
	}
	sort.Slice(stats, func(a, b int) bool {
		if stats[a].Count != stats[b].Count {
			return stats[a].Count > stats[b].Count
		}
		return stats[a].Term < stats[b].Term
	})
	return stats
}
