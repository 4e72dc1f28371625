// internal/controller/webhook_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/leadforge/outreach-backend/internal/errors"
	"github.com/leadforge/outreach-backend/internal/queue"
	"github.com/leadforge/outreach-backend/internal/service"
)

var knownEventTypes = map[string]bool{
	"delivered":  true,
	"opened":     true,
	"clicked":    true,
	"bounced":    true,
	"complained": true,
}

// WebhookController takes mail-provider events at the HTTP edge and hands
// them to the engagement queue; the worker applies them to lead state.
type WebhookController struct {
	Queue   queue.Queue
	Tracker *service.Tracker
	Logger  *zap.Logger
}

// EmailWebhook accepts `{type, data:{to,...}}`. Unknown event types are
// acknowledged and dropped so the provider does not retry them forever.
func (c *WebhookController) EmailWebhook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string                 `json:"type"`
		Data service.EngagementData `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if !knownEventTypes[body.Type] || body.Data.To == "" {
		c.Logger.Debug("dropping unusable webhook event", zap.String("type", body.Type))
		json.NewEncoder(w).Encode(map[string]bool{"queued": false})
		return
	}

	event := service.EngagementEvent{
		EventID: uuid.New().String(),
		Type:    body.Type,
		Data:    body.Data,
	}
	if err := c.Queue.Publish(queue.EngagementTopic, event); err != nil {
		c.Logger.Error("failed to enqueue engagement event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		http.Error(w, "failed to enqueue event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"queued":   true,
		"event_id": event.EventID,
	})
}

func (c *WebhookController) MarkReplied(w http.ResponseWriter, r *http.Request) {
	c.applyManualSignal(w, r, c.Tracker.MarkReplied)
}

func (c *WebhookController) MarkBooked(w http.ResponseWriter, r *http.Request) {
	c.applyManualSignal(w, r, c.Tracker.MarkBooked)
}

func (c *WebhookController) applyManualSignal(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, leadID int) (*service.TrackResult, error),
) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	result, err := apply(r.Context(), id)
	if err != nil {
		if _, ok := err.(*appErrors.ErrLeadNotFound); ok {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
