package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/service"
)

// StartEngagementSubscriber wires the in-memory queue to the Tracker for
// single-process runs. Production deployments use cmd/worker over RabbitMQ
// instead.
func StartEngagementSubscriber(q Queue, tracker *service.Tracker, logger *zap.Logger) {
	go func() {
		err := q.Subscribe(EngagementTopic, func(payload any) error {
			event, ok := payload.(service.EngagementEvent)
			if !ok {
				logger.Warn("invalid engagement payload type, dropping")
				return nil // no retry
			}

			result, err := tracker.ProcessEvent(context.Background(), event)
			if err != nil {
				return err // triggers retry in queue
			}
			if !result.Processed {
				logger.Debug("engagement event matched no lead",
					zap.String("event_id", event.EventID),
				)
			}
			return nil
		})
		if err != nil {
			logger.Error("failed to start engagement subscriber", zap.Error(err))
		}
	}()
}
