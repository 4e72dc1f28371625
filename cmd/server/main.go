// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/config"
	"github.com/leadforge/outreach-backend/internal/controller"
	"github.com/leadforge/outreach-backend/internal/db"
	"github.com/leadforge/outreach-backend/internal/notify"
	"github.com/leadforge/outreach-backend/internal/queue"
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

	campaignRepo := &repository.CampaignRepository{DB: conn}
	leadRepo := &repository.LeadRepository{DB: conn}
	logRepo := &repository.OutreachLogRepository{DB: conn}

	tracker := &service.Tracker{
		Leads:    leadRepo,
		Log:      logRepo,
		Notifier: notify.NewWebhook(cfg.NotifyWebhookURL, logger),
		Logger:   logger,
	}

	// With RabbitMQ configured the worker process consumes engagement
	// events; without it the in-memory queue applies them in-process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		publisher, err := queue.DialAMQP(cfg.AMQPURL, queue.EngagementTopic)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
		q = publisher
	} else {
		memQueue := queue.NewInMemoryQueue(logger)
		queue.StartEngagementSubscriber(memQueue, tracker, logger)
		q = memQueue
	}

	campaignController := &controller.CampaignController{
		Campaigns: campaignRepo,
		Leads:     leadRepo,
	}
	webhookController := &controller.WebhookController{
		Queue:   q,
		Tracker: tracker,
		Logger:  logger,
	}
	statsController := &controller.StatsController{
		Leads: leadRepo,
		Log:   logRepo,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(controller.RequestLogger(logger))

	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/campaigns/{id}/leads", campaignController.ImportLeads)

	r.Post("/webhooks/email", webhookController.EmailWebhook)
	r.Post("/leads/{id}/replied", webhookController.MarkReplied)
	r.Post("/leads/{id}/booked", webhookController.MarkBooked)

	r.Get("/stats", statsController.GetStats)

	logger.Info("server running", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
