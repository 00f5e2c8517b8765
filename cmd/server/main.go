package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	httpadapter "pricescout/internal/adapters/http"
	"pricescout/internal/adapters/kafka"
	pg "pricescout/internal/adapters/postgres"
	"pricescout/internal/adapters/sources"
	"pricescout/internal/config"
	"pricescout/internal/logging"
	"pricescout/internal/ports"
	"pricescout/internal/services/matcher"
	"pricescout/internal/services/pricescraper"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	logg := logging.New(cfg.LogLevel)
	if err != nil {
		logg.WithError(err).Warn("incomplete configuration")
	}
	if cfg.DatabaseURL == "" {
		logg.Fatal("DATABASE_URL is required for Postgres adapters")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.WithError(err).Fatal("db connect error")
	}
	defer db.Close()

	if err := pg.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logg.WithError(err).Fatal("db migration error")
	}

	sourceConfigs, err := db.ListActiveSources(ctx)
	if err != nil {
		logg.WithError(err).Fatal("loading source configurations failed")
	}
	registry := sources.NewRegistry(sourceConfigs, logg)
	logg.WithField("scrapers", registry.IDs()).Info("source adapters configured")

	var progress ports.ProgressSink = db
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaProgressTopic)
		if err != nil {
			logg.WithError(err).Warn("kafka progress publishing disabled")
		} else {
			defer publisher.Close()
			progress = pricescraper.MultiProgress{db, publisher}
		}
	}

	orchestrator := pricescraper.New(registry, matcher.New(), progress, db, logg, pricescraper.Options{
		AdapterTimeout:  cfg.AdapterTimeout,
		PolitenessDelay: cfg.PolitenessDelay,
	})

	srv := httpadapter.New(orchestrator, db, db, db, logg)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	errCh := make(chan error, 1)
	go func() { errCh <- http.ListenAndServe(cfg.ListenAddr, r) }()
	logg.WithField("addr", cfg.ListenAddr).Info("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logg.WithField("signal", sig.String()).Info("shutting down")
		if orchestrator.IsJobRunning() {
			if err := orchestrator.Stop(); err != nil {
				logg.WithError(err).Warn("stopping running job failed")
			}
		}
		cancel()
		time.Sleep(300 * time.Millisecond)
	case err := <-errCh:
		logg.WithError(err).Fatal("server error")
	}
}
