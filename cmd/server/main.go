package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abishek1718/package-locker/internal/cache"
	"github.com/abishek1718/package-locker/internal/config"
	"github.com/abishek1718/package-locker/internal/db"
	"github.com/abishek1718/package-locker/internal/kafka"
	"github.com/abishek1718/package-locker/internal/logger"
	"github.com/abishek1718/package-locker/internal/notify"
	"github.com/abishek1718/package-locker/internal/objectstore"
	"github.com/abishek1718/package-locker/internal/repository/postgresql"
	"github.com/abishek1718/package-locker/internal/server"
	"github.com/abishek1718/package-locker/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.New()
	defer log.Sync()

	cfg := config.Load()

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	lockerRepo := postgresql.NewLockerRepo(database)
	residentRepo := postgresql.NewResidentRepo(database)
	packageRepo := postgresql.NewPackageRepo(database)
	userRepo := postgresql.NewUserRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()

	pkgCache := cache.NewPackageCache()
	if pending, err := packageRepo.ListPendingBefore(ctx, time.Now()); err != nil {
		log.Warn("failed to warm package cache", zap.Error(err))
	} else {
		pkgCache.Load(pending)
		log.Info("package cache warmed", zap.Int("entries", len(pending)))
	}

	var notifier notify.Notifier
	if cfg.SendgridAPIKey != "" {
		notifier = notify.NewEmailNotifier(cfg.SendgridAPIKey, cfg.SendgridFrom, log)
	} else {
		log.Warn("SENDGRID_API_KEY not set, notifications will only be logged")
		notifier = notify.NewLogNotifier(log)
	}

	var store server.ObjectStore
	s3cfg := objectstore.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}
	if s3cfg.Configured() {
		s3Store, err := objectstore.New(ctx, s3cfg)
		if err != nil {
			log.Fatal("object store init failed", zap.Error(err))
		}
		store = s3Store
	} else {
		log.Warn("object store not configured, photo uploads disabled")
	}

	stg := storage.New(database, lockerRepo, residentRepo, packageRepo, userRepo,
		notifier, pkgCache, cfg.BaseURL, log)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBrokers)
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events will be logged instead of published")
		producer = kafka.NewConsoleProducer(log)
	}

	sink := server.NewOutboxSink(database, outboxRepo, cfg.AuditTopic, log)
	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, log)
	go publisher.Run(ctx)
	defer publisher.Shutdown()

	auditManager := server.NewAuditManager(2, 5, 500*time.Millisecond, sink, log)

	srv := server.New(stg, store, server.Config{
		JWTSecret:  []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		CronSecret: cfg.CronSecret,
	}, auditManager, log)

	go func() {
		if err := srv.Run(ctx, cfg.ServerPort); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
