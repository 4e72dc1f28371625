// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/config"
	"github.com/leadforge/outreach-backend/internal/db"
	"github.com/leadforge/outreach-backend/internal/notify"
	"github.com/leadforge/outreach-backend/internal/queue"
	"github.com/leadforge/outreach-backend/internal/repository"
	"github.com/leadforge/outreach-backend/internal/service"
)

const maxRetries = 3

// retryCountFrom reads the retry counter stamped on republished deliveries.
// A missing or foreign-typed header counts as zero.
func retryCountFrom(headers amqp.Table) int32 {
	switch n := headers["x-retry-count"].(type) {
	case int32:
		return n
	case int64:
		return int32(n)
	case int:
		return int32(n)
	default:
		return 0
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL is required for the engagement worker")
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	leadRepo := &repository.LeadRepository{DB: conn}
	logRepo := &repository.OutreachLogRepository{DB: conn}

	tracker := &service.Tracker{
		Leads:    leadRepo,
		Log:      logRepo,
		Notifier: notify.NewWebhook(cfg.NotifyWebhookURL, logger),
		Logger:   logger,
	}

	mqConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mqConn.Close()

	ch, err := mqConn.Channel()
	if err != nil {
		logger.Fatal("failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.EngagementTopic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Fatal("failed to register consumer", zap.Error(err))
	}

	logger.Info("engagement worker running, waiting for events")

	for d := range msgs {
		var event service.EngagementEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			logger.Warn("invalid event payload, dropping", zap.Error(err))
			d.Ack(false)
			continue
		}

		result, err := tracker.ProcessEvent(context.Background(), event)
		if err != nil {
			logger.Warn("failed to process engagement event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			// Transient failures are republished with an incremented
			// x-retry-count header; a plain Nack-requeue would not carry the
			// counter and the bound would never trip.
			retryCount := retryCountFrom(d.Headers)
			if retryCount < maxRetries {
				if err := ch.Publish("", q.Name, false, false, amqp.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					Headers:      amqp.Table{"x-retry-count": retryCount + 1},
					Body:         d.Body,
				}); err != nil {
					logger.Error("failed to requeue event",
						zap.String("event_id", event.EventID),
						zap.Error(err),
					)
					d.Nack(false, true)
					continue
				}
				d.Ack(false)
				continue
			}
			logger.Error("dropping event after repeated failures",
				zap.String("event_id", event.EventID),
				zap.Int32("retries", retryCount),
			)
			d.Ack(false)
			continue
		}

		if !result.Processed {
			logger.Debug("event matched no lead",
				zap.String("event_id", event.EventID),
				zap.String("type", event.Type),
			)
		}
		d.Ack(false)
	}
}
