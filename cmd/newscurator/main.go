package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"NewsCurator/internal/app"
	"NewsCurator/internal/config"
	"NewsCurator/internal/ingest"
	"NewsCurator/internal/logging"
)

func main() {
	var (
		cronMode      = flag.Bool("cron", false, "stay resident and ingest on the configured schedule")
		refreshImages = flag.Bool("refresh-images", false, "run one bounded image-refresh pass and exit")
		submitURL     = flag.String("url", "", "ingest a single URL and exit")
		actor         = flag.String("actor", "", "actor email recorded in the audit log for -url")
		fromFlag      = flag.String("from", "", "inclusive lower publish-date bound (RFC3339)")
		toFlag        = flag.String("to", "", "inclusive upper publish-date bound (RFC3339)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	opts, err := parseWindow(*fromFlag, *toFlag)
	if err != nil {
		logger.Error("invalid date window", "error", err)
		os.Exit(2)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *submitURL != "":
		result, err := application.IngestURL(ctx, *submitURL, *actor)
		if err != nil {
			logger.Error("url ingest failed", "url", *submitURL, "error", err)
			os.Exit(1)
		}
		logger.Info("url ingested",
			"article", result.Article.ID,
			"status", result.Article.Status,
			"duplicate", result.Duplicate)

	case *refreshImages:
		stats, err := application.RefreshImages(ctx)
		if err != nil {
			logger.Error("image refresh failed", "error", err)
			os.Exit(1)
		}
		logger.Info("image refresh finished", "scanned", stats.Scanned, "updated", stats.Updated)

	case *cronMode:
		if err := application.RunScheduled(ctx); err != nil {
			logger.Error("scheduler stopped", "error", err)
			os.Exit(1)
		}

	default:
		if err := application.RunIngestion(ctx, opts); err != nil {
			logger.Error("ingestion failed", "error", err)
			os.Exit(1)
		}
	}
}

func parseWindow(fromRaw, toRaw string) (ingest.Options, error) {
	var opts ingest.Options

	if fromRaw != "" {
		from, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return opts, fmt.Errorf("parse -from: %w", err)
		}
		opts.From = &from
	}
	if toRaw != "" {
		to, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return opts, fmt.Errorf("parse -to: %w", err)
		}
		opts.To = &to
	}
	return opts, nil
}
