package ports

import (
	"context"
	"time"

	"NewsCurator/internal/domain"
)

// Audit action taxonomy recorded through AuditLog.
const (
	AuditIngested    = "INGESTED"
	AuditURLIngested = "URL_INGESTED"
	AuditApproved    = "APPROVED"
	AuditRejected    = "REJECTED"
	AuditEdited      = "EDITED"
	AuditManualEntry = "MANUAL_ENTRY"
)

// SystemActor attributes automated writes in the audit log.
const SystemActor = "system@newscurator"

// NewArticle carries the fields the core supplies when creating a record;
// id and timestamps are store-assigned.
type NewArticle struct {
	Title           string
	URL             string
	Outlet          string
	OutletDomain    string
	PublishedAt     time.Time
	Snippet         string
	ImageURL        string
	Author          string
	Status          domain.Status
	IngestSource    domain.Source
	KeywordsMatched []string
}

// ArticleStore persists curated articles and answers dedup lookups.
type ArticleStore interface {
	FindByURL(ctx context.Context, url string) (*domain.Article, error)
	Create(ctx context.Context, article NewArticle) (domain.Article, error)
	ListMissingImage(ctx context.Context, limit int) ([]domain.Article, error)
	UpdateImage(ctx context.Context, id, imageURL string) error
}

// KeywordStore exposes the current enabled relevance terms, ordered by
// creation time ascending.
type KeywordStore interface {
	ListEnabled(ctx context.Context) ([]string, error)
}

// RunStore records per-adapter provenance for ingestion runs.
type RunStore interface {
	CreateRun(ctx context.Context, source domain.Source, feedURL string, startedAt time.Time) (string, error)
	FinalizeRun(ctx context.Context, id string, finishedAt time.Time, found, created, duped int, runErr string) error
}

// AuditLog is a fire-and-forget action trail; callers log write failures
// and continue.
type AuditLog interface {
	Write(ctx context.Context, articleID, action, actorEmail, details string) error
}

// Notifier streams run digests to an external channel (e.g. Telegram).
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring ingestion executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
