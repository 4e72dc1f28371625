// cmd/pipeline/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/ai"
	"github.com/leadforge/outreach-backend/internal/analyzer"
	"github.com/leadforge/outreach-backend/internal/config"
	"github.com/leadforge/outreach-backend/internal/db"
	"github.com/leadforge/outreach-backend/internal/mailer"
	"github.com/leadforge/outreach-backend/internal/repository"
	"github.com/leadforge/outreach-backend/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	aiClient, err := ai.NewClient(ai.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
	})
	if err != nil {
		logger.Fatal("AI client misconfigured", zap.Error(err))
	}

	// Dry runs never reach the provider, so the mailer (and its API key)
	// is only required for real sends.
	var mail mailer.Mailer
	if !cfg.Outreach.DryRun {
		m, err := mailer.New(mailer.Config{
			APIKey:  cfg.Mailer.APIKey,
			BaseURL: cfg.Mailer.BaseURL,
		})
		if err != nil {
			logger.Fatal("mailer misconfigured", zap.Error(err))
		}
		mail = m
	}

	leadRepo := &repository.LeadRepository{DB: conn}
	logRepo := &repository.OutreachLogRepository{DB: conn}

	generator := &service.Generator{AI: aiClient, Logger: logger}
	sender := &service.Sender{
		Leads:    leadRepo,
		Log:      logRepo,
		Mailer:   mail,
		From:     cfg.Mailer.From,
		DailyCap: cfg.Outreach.DailyCap,
		DryRun:   cfg.Outreach.DryRun,
		Logger:   logger,
	}

	pipeline := &service.Pipeline{
		Qualifier: &service.Qualifier{
			Leads:         leadRepo,
			Analyzer:      analyzer.New(logger),
			AI:            aiClient,
			HotThreshold:  cfg.Outreach.HotThreshold,
			WarmThreshold: cfg.Outreach.WarmThreshold,
			CallDelay:     cfg.Outreach.CallDelay,
			Logger:        logger,
		},
		Enricher: service.NewEnricher(
			leadRepo, aiClient, cfg.Outreach.AIEmailLookup, cfg.Outreach.CallDelay, logger,
		),
		Outreach: &service.Outreach{
			Leads:     leadRepo,
			Generator: generator,
			Sender:    sender,
			CallDelay: cfg.Outreach.CallDelay,
			Logger:    logger,
		},
		Sequencer: &service.Sequencer{
			Leads:        leadRepo,
			Log:          logRepo,
			Generator:    generator,
			Sender:       sender,
			CooldownDays: cfg.Outreach.CooldownDays,
			MaxTouches:   cfg.Outreach.MaxTouches,
			CallDelay:    cfg.Outreach.CallDelay,
			Logger:       logger,
		},
		BatchLimit: cfg.Outreach.BatchLimit,
		Logger:     logger,
	}

	// Cancellation is cooperative: a killed run leaves completed items
	// persisted and is safe to resume later.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summaries, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("pipeline run aborted", zap.Error(err))
		os.Exit(1)
	}

	failed := 0
	for _, s := range summaries {
		failed += s.Failed
	}
	if failed > 0 {
		logger.Warn("pipeline completed with per-lead failures", zap.Int("failed", failed))
	} else {
		logger.Info("pipeline completed")
	}
}
