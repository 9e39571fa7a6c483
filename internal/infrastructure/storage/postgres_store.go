package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"id", "title", "url", "outlet", "outlet_domain", "published_at",
	"snippet", "image_url", "author", "status", "ingest_source",
	"keywords_matched", "tags", "priority", "section",
	"created_at", "updated_at",
}

// PostgresStore persists articles, keywords, ingest runs, and audit entries
// into Postgres. Dedup correctness relies on the unique constraint on
// articles.url: a race between two concurrent runs is resolved by the
// second insert failing, not by application-level locking.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*PostgresStore)(nil)
var _ ports.KeywordStore = (*PostgresStore)(nil)
var _ ports.RunStore = (*PostgresStore)(nil)
var _ ports.AuditLog = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByURL looks up an article by exact canonical URL; a missing row is
// (nil, nil), not an error.
func (s *PostgresStore) FindByURL(ctx context.Context, url string) (*domain.Article, error) {
	if s.db == nil {
		return nil, nil
	}

	query, args, err := psql.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article by url: %w", err)
	}
	return &article, nil
}

// Create inserts a new article with a fresh id and server-side timestamps.
func (s *PostgresStore) Create(ctx context.Context, fields ports.NewArticle) (domain.Article, error) {
	if s.db == nil {
		return domain.Article{}, fmt.Errorf("store is not configured")
	}

	id := uuid.NewString()
	query, args, err := psql.Insert("articles").
		Columns("id", "title", "url", "outlet", "outlet_domain", "published_at",
			"snippet", "image_url", "author", "status", "ingest_source",
			"keywords_matched").
		Values(id, fields.Title, fields.URL, fields.Outlet, fields.OutletDomain,
			fields.PublishedAt, fields.Snippet, fields.ImageURL, fields.Author,
			string(fields.Status), string(fields.IngestSource),
			pq.Array(fields.KeywordsMatched)).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	article := domain.Article{
		ID:              id,
		Title:           fields.Title,
		URL:             fields.URL,
		Outlet:          fields.Outlet,
		OutletDomain:    fields.OutletDomain,
		PublishedAt:     fields.PublishedAt,
		Snippet:         fields.Snippet,
		ImageURL:        fields.ImageURL,
		Author:          fields.Author,
		Status:          fields.Status,
		IngestSource:    fields.IngestSource,
		KeywordsMatched: fields.KeywordsMatched,
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&article.CreatedAt, &article.UpdatedAt); err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

// ListMissingImage returns the oldest articles without an image, bounded.
func (s *PostgresStore) ListMissingImage(ctx context.Context, limit int) ([]domain.Article, error) {
	if s.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := psql.Select(articleColumns...).
		From("articles").
		Where(sq.Or{sq.Eq{"image_url": ""}, sq.Eq{"image_url": nil}}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles without image: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// UpdateImage sets the image on one article.
func (s *PostgresStore) UpdateImage(ctx context.Context, id, imageURL string) error {
	if s.db == nil {
		return fmt.Errorf("store is not configured")
	}

	query, args, err := psql.Update("articles").
		Set("image_url", imageURL).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	return nil
}

// ListEnabled returns enabled keyword terms ordered by creation time.
func (s *PostgresStore) ListEnabled(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store is not configured")
	}

	query, args, err := psql.Select("term").
		From("keywords").
		Where(sq.Eq{"enabled": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return terms, nil
}

// CreateRun opens one provenance record for an adapter invocation.
func (s *PostgresStore) CreateRun(ctx context.Context, source domain.Source, feedURL string, startedAt time.Time) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("store is not configured")
	}

	id := uuid.NewString()
	query, args, err := psql.Insert("ingest_runs").
		Columns("id", "source", "feed_url", "started_at").
		Values(id, string(source), feedURL, startedAt).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert ingest run: %w", err)
	}
	return id, nil
}

// FinalizeRun closes a provenance record with its result counts.
func (s *PostgresStore) FinalizeRun(ctx context.Context, id string, finishedAt time.Time, found, created, duped int, runErr string) error {
	if s.db == nil {
		return fmt.Errorf("store is not configured")
	}

	query, args, err := psql.Update("ingest_runs").
		Set("finished_at", finishedAt).
		Set("articles_found", found).
		Set("articles_created", created).
		Set("articles_duped", duped).
		Set("error", runErr).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finalize ingest run: %w", err)
	}
	return nil
}

// Write appends one audit entry.
func (s *PostgresStore) Write(ctx context.Context, articleID, action, actorEmail, details string) error {
	if s.db == nil {
		return fmt.Errorf("store is not configured")
	}

	var article any
	if articleID != "" {
		article = articleID
	}

	query, args, err := psql.Insert("audit_log").
		Columns("id", "article_id", "action", "actor_email", "details").
		Values(uuid.NewString(), article, action, actorEmail, details).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article   domain.Article
		status    string
		source    string
		snippet   sql.NullString
		imageURL  sql.NullString
		author    sql.NullString
		section   sql.NullString
		published sql.NullTime
	)

	err := row.Scan(
		&article.ID, &article.Title, &article.URL, &article.Outlet,
		&article.OutletDomain, &published, &snippet, &imageURL, &author,
		&status, &source, pq.Array(&article.KeywordsMatched),
		pq.Array(&article.Tags), &article.Priority, &section,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}

	article.Status = domain.Status(status)
	article.IngestSource = domain.Source(source)
	article.Snippet = snippet.String
	article.ImageURL = imageURL.String
	article.Author = author.String
	article.Section = section.String
	if published.Valid {
		article.PublishedAt = published.Time
	}
	return article, nil
}
