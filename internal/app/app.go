package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"NewsCurator/internal/config"
	"NewsCurator/internal/infrastructure/metafetch"
	"NewsCurator/internal/infrastructure/newsapi"
	"NewsCurator/internal/infrastructure/rss"
	"NewsCurator/internal/infrastructure/scheduler"
	"NewsCurator/internal/infrastructure/storage"
	"NewsCurator/internal/infrastructure/telegram"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/logging"
	"NewsCurator/internal/ports"
	"NewsCurator/internal/usecase"
)

// Scheduled runs look back this far for fresh articles.
const defaultLookback = 24 * time.Hour

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	db          *sql.DB
	ingestor    *usecase.Ingestor
	urlIngestor *usecase.URLIngestor
	refresher   *usecase.ImageRefresher
	notifier    ports.Notifier
	scheduler   ports.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store := storage.NewPostgresStore(db)

	registry := ingest.NewRegistry()
	registry.Register(newsapi.NewNewsAPIProvider(cfg.Search.APIKey, nil))
	registry.Register(newsapi.NewGNewsProvider(cfg.Search.APIKey, nil))

	var provider ingest.SearchProvider
	if cfg.Search.APIKey != "" {
		provider, err = registry.Resolve(cfg.Search.Provider)
		if err != nil {
			return nil, fmt.Errorf("configure search: %w", err)
		}
	}
	search := newsapi.NewAdapter(provider, cfg.Search.QueryBudget,
		baseLogger.With("component", "adapter.search"))

	fetcher := metafetch.New(nil, baseLogger.With("component", "metafetch"))

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Feeds:    cfg.Feeds,
		RSS:      rss.New(nil, baseLogger.With("component", "adapter.rss")),
		Search:   search,
		Articles: store,
		Keywords: store,
		Runs:     store,
		Audit:    store,
		Logger:   baseLogger.With("component", "ingestor"),
	})

	application := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		ingestor: ingestor,
		urlIngestor: usecase.NewURLIngestor(fetcher, store, store,
			baseLogger.With("component", "url-ingest")),
		refresher: usecase.NewImageRefresher(fetcher, store, store,
			baseLogger.With("component", "image-refresh"), cfg.Maintenance.ImageBatchSize),
		scheduler: scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
	}

	tg := cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		application.notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	return application, nil
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RunIngestion executes one ingestion pass and publishes the digest.
func (a *Application) RunIngestion(ctx context.Context, opts ingest.Options) error {
	summary, err := a.ingestor.Run(ctx, opts)
	if err != nil {
		return err
	}

	a.logger.Info("ingestion finished",
		"found", summary.TotalFound,
		"created", summary.TotalCreated,
		"duped", summary.TotalDuped)

	if a.notifier != nil {
		if err := a.notifier.PublishDigest(ctx, telegram.FormatSummary(summary)); err != nil {
			a.logger.Warn("digest notification failed", "error", err)
		}
	}
	return nil
}

// IngestURL stages one admin-submitted URL.
func (a *Application) IngestURL(ctx context.Context, rawURL, actorEmail string) (usecase.URLIngestResult, error) {
	return a.urlIngestor.Ingest(ctx, rawURL, actorEmail)
}

// RefreshImages runs one bounded image-refresh pass.
func (a *Application) RefreshImages(ctx context.Context) (usecase.RefreshStats, error) {
	return a.refresher.Refresh(ctx)
}

// RunScheduled keeps the process resident, ingesting on the configured cron
// expression until ctx is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	job := func(trigger time.Time) {
		from := trigger.Add(-defaultLookback)
		opts := ingest.Options{From: &from, To: &trigger}
		if err := a.RunIngestion(ctx, opts); err != nil {
			a.logger.Error("scheduled ingestion failed", "error", err)
		}
	}

	if err := a.scheduler.Start(ctx, job); err != nil {
		return err
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}
