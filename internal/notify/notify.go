// Package notify posts fire-and-forget messages to a chat webhook. Failures
// here must never affect pipeline state, so errors are logged and dropped.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sink receives engagement notifications.
type Sink interface {
	Notify(ctx context.Context, text string)
}

type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhook builds a notifier. An empty URL disables notifications; Notify
// becomes a no-op.
func NewWebhook(webhookURL string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, text string) {
	if n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		n.logger.Warn("failed to encode notification", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("failed to build notification request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("notification webhook failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}

var _ Sink = (*WebhookNotifier)(nil)
