package main

import (
	"context"
	"errors"
	"imageModeration/internal/config"
	"imageModeration/internal/events"
	"imageModeration/internal/http-server/router"
	"imageModeration/internal/ingest"
	"imageModeration/internal/janitor"
	"imageModeration/internal/kafka/consumer"
	"imageModeration/internal/kafka/producer"
	"imageModeration/internal/lib/logger/handlers/slogpretty"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/lib/pathguard"
	"imageModeration/internal/processor"
	"imageModeration/internal/services/avatars"
	"imageModeration/internal/services/fileserver"
	"imageModeration/internal/services/moderator"
	"imageModeration/internal/services/uploader"
	"imageModeration/internal/storage/postgres"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

//	@title			Image Moderation API
//	@version		1.0
//	@description	Batch image upload, moderation and serving.
//	@host			localhost:8082
//	@BasePath		/
func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting image moderation service", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	defer stop()

	storage, err := postgres.InitDB(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = storage.Migrate(ctx); err != nil {
		log.Error("failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	imagesGuard := mustGuard(log, cfg.Storage.ImagesRoot)
	avatarsGuard := mustGuard(log, cfg.Storage.AvatarsRoot)

	var sender producer.ProducerIface = producer.Discard{}
	var kafkaConsumer *consumer.Consumer

	if cfg.Kafka.Enabled {
		kafkaProducer, err := producer.NewProducer(&cfg.Kafka, log)
		if err != nil {
			log.Error("failed to create kafka producer", sl.Err(err))
			os.Exit(1)
		}
		sender = kafkaProducer

		kafkaConsumer, err = consumer.NewConsumer(&cfg.Kafka, log)
		if err != nil {
			log.Error("failed to create kafka consumer", sl.Err(err))
			os.Exit(1)
		}

		go kafkaConsumer.ReadMessages(ctx, janitor.New(log, imagesGuard).Handle)
	} else {
		log.Info("kafka disabled, events are discarded")
	}

	publisher := events.NewPublisher(log, sender)
	imageProcessor := processor.NewImageProcessor(log, cfg.Upload.Workers)

	handler := router.New(log, router.Deps{
		Uploader: uploader.New(log, storage, imageProcessor, imagesGuard, publisher, uploader.Limits{
			MinFiles: cfg.Upload.MinFiles,
			MaxFiles: cfg.Upload.MaxFiles,
		}),
		Moderator: moderator.New(log, storage, imagesGuard, publisher),
		Files:     fileserver.New(log, storage, imagesGuard, avatarsGuard),
		Avatars:   avatars.New(log, storage, avatarsGuard),
		Limits: ingest.Limits{
			MaxFiles:    cfg.Upload.MaxFiles,
			MaxFileSize: cfg.Upload.MaxFileSize,
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("application stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", sl.Err(err))
	}

	if err = sender.Close(); err != nil {
		log.Error("failed to close kafka producer", sl.Err(err))
	}

	if kafkaConsumer != nil {
		if err = kafkaConsumer.Close(); err != nil {
			log.Error("failed to close kafka consumer", sl.Err(err))
		}
		log.Info("kafka connection closed")
	}

	if err = storage.Close(); err != nil {
		log.Error("failed to close database", sl.Err(err))
	}

	log.Info("application stopped")
}

func mustGuard(log *slog.Logger, root string) *pathguard.Guard {
	if err := os.MkdirAll(root, 0o755); err != nil {
		log.Error("failed to create storage root", slog.String("root", root), sl.Err(err))
		os.Exit(1)
	}

	guard, err := pathguard.New(root)
	if err != nil {
		log.Error("failed to init storage root", slog.String("root", root), sl.Err(err))
		os.Exit(1)
	}

	return guard
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
