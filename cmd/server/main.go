package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack-backend/internal/config"
	"fintrack-backend/internal/database"
	"fintrack-backend/internal/jobs"
	"fintrack-backend/internal/logger"
	"fintrack-backend/internal/notify"
	"fintrack-backend/internal/receipt"
	"fintrack-backend/internal/server"
	"fintrack-backend/internal/transaction"
	"fintrack-backend/internal/upload"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	ctx := context.Background()

	var images upload.ImageHost = upload.DisabledHost{}
	if cfg.GCSBucket != "" {
		host, err := upload.NewGCSHost(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("image host setup failed")
		}
		defer host.Close()
		images = host
	}

	var scanner receipt.Scanner = receipt.DisabledScanner{}
	if cfg.GeminiAPIKey != "" {
		s, err := receipt.NewGeminiScanner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("receipt scanner setup failed")
		}
		scanner = s
	}

	var publisher notify.Publisher = notify.LogPublisher{Log: log}
	if cfg.AMQPURL != "" {
		p, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
		if err != nil {
			log.Fatal().Err(err).Msg("report queue setup failed")
		}
		publisher = p
	}
	defer publisher.Close()

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Add("recurring", cfg.RecurringCron, jobs.NewRecurringProcessor(transaction.NewStore(db), log)); err != nil {
		log.Fatal().Err(err).Msg("cron setup failed")
	}
	if err := scheduler.Add("monthly_report", cfg.ReportCron, jobs.NewReportSender(db, publisher, log)); err != nil {
		log.Fatal().Err(err).Msg("cron setup failed")
	}
	scheduler.Start()

	app := server.New(server.Deps{
		Config:  cfg,
		DB:      db,
		Log:     log,
		Images:  images,
		Scanner: scanner,
	})

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("jobs did not finish in time")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
