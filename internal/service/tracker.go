// internal/service/tracker.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/notify"
	"github.com/leadforge/outreach-backend/internal/repository"
)

// EngagementEvent is the mail-provider webhook payload, wrapped with an
// event ID assigned at intake for tracing.
type EngagementEvent struct {
	EventID string         `json:"event_id"`
	Type    string         `json:"type"`
	Data    EngagementData `json:"data"`
}

type EngagementData struct {
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	URL    string `json:"url,omitempty"`
}

// TrackResult reports what an event did. Processed=false means the event
// matched no lead and was dropped, which is not an error.
type TrackResult struct {
	Processed bool         `json:"processed"`
	LeadID    int          `json:"lead_id,omitempty"`
	Status    model.Status `json:"status,omitempty"`
}

// Tracker advances lead state from asynchronous delivery and engagement
// signals. It is the only component that mutates status outside the send
// path.
type Tracker struct {
	Leads    repository.LeadRepositoryInterface
	Log      repository.OutreachLogRepositoryInterface
	Notifier notify.Sink
	Logger   *zap.Logger
}

// ProcessEvent looks the lead up by recipient email and applies the event.
// Terminal statuses win: once a lead is bounced or unsubscribed, benign
// events that arrive later do not move it back.
func (t *Tracker) ProcessEvent(ctx context.Context, ev EngagementEvent) (*TrackResult, error) {
	lead, err := t.Leads.GetByEmail(ev.Data.To)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		t.Logger.Debug("engagement event for unknown recipient",
			zap.String("event_id", ev.EventID),
			zap.String("type", ev.Type),
		)
		return &TrackResult{Processed: false}, nil
	}

	switch ev.Type {
	case "delivered":
		// Idempotent against replays: only a fresh lead moves forward.
		if lead.Status == model.StatusNew {
			if err := t.Leads.UpdateStatus(lead.ID, model.StatusContacted); err != nil {
				return nil, err
			}
			lead.Status = model.StatusContacted
		}
		if err := t.appendEvent(lead.ID, model.EventDelivered, ""); err != nil {
			return nil, err
		}

	case "opened":
		if err := t.appendEventOpened(lead.ID); err != nil {
			return nil, err
		}
		t.Notifier.Notify(ctx, fmt.Sprintf("%s opened an email", lead.BusinessName))

	case "clicked":
		if err := t.appendEvent(lead.ID, model.EventClicked, ev.Data.URL); err != nil {
			return nil, err
		}
		t.Notifier.Notify(ctx, fmt.Sprintf("%s clicked a link", lead.BusinessName))

	case "bounced":
		if err := t.Leads.UpdateStatus(lead.ID, model.StatusBounced); err != nil {
			return nil, err
		}
		lead.Status = model.StatusBounced
		if err := t.appendEvent(lead.ID, model.EventBounced, ev.Data.Reason); err != nil {
			return nil, err
		}

	case "complained":
		if err := t.Leads.UpdateStatus(lead.ID, model.StatusUnsubscribed); err != nil {
			return nil, err
		}
		lead.Status = model.StatusUnsubscribed
		if err := t.appendEvent(lead.ID, model.EventComplained, ""); err != nil {
			return nil, err
		}
		t.Notifier.Notify(ctx, fmt.Sprintf("%s complained; unsubscribed", lead.BusinessName))

	default:
		t.Logger.Debug("ignoring unknown engagement event type",
			zap.String("event_id", ev.EventID),
			zap.String("type", ev.Type),
		)
		return &TrackResult{Processed: false}, nil
	}

	return &TrackResult{Processed: true, LeadID: lead.ID, Status: lead.Status}, nil
}

// MarkReplied is a manual trigger; reapplying it is a no-op beyond the
// notification.
func (t *Tracker) MarkReplied(ctx context.Context, leadID int) (*TrackResult, error) {
	lead, err := t.Leads.GetByID(leadID)
	if err != nil {
		return nil, err
	}

	if lead.Status != model.StatusReplied && lead.Status != model.StatusBooked {
		if err := t.Leads.UpdateStatus(lead.ID, model.StatusReplied); err != nil {
			return nil, err
		}
		lead.Status = model.StatusReplied
		t.Notifier.Notify(ctx, fmt.Sprintf("%s replied!", lead.BusinessName))
	}

	return &TrackResult{Processed: true, LeadID: lead.ID, Status: lead.Status}, nil
}

// MarkBooked is an explicit external signal valid from any status.
func (t *Tracker) MarkBooked(ctx context.Context, leadID int) (*TrackResult, error) {
	lead, err := t.Leads.GetByID(leadID)
	if err != nil {
		return nil, err
	}

	if lead.Status != model.StatusBooked {
		if err := t.Leads.UpdateStatus(lead.ID, model.StatusBooked); err != nil {
			return nil, err
		}
		lead.Status = model.StatusBooked
		t.Notifier.Notify(ctx, fmt.Sprintf("Call booked with %s!", lead.BusinessName))
	}

	return &TrackResult{Processed: true, LeadID: lead.ID, Status: lead.Status}, nil
}

func (t *Tracker) appendEvent(leadID int, eventType model.TouchType, detail string) error {
	return t.Log.Append(&model.OutreachLogEntry{
		LeadID: leadID,
		Type:   eventType,
		Body:   detail,
	})
}

func (t *Tracker) appendEventOpened(leadID int) error {
	return t.Log.Append(&model.OutreachLogEntry{
		LeadID: leadID,
		Type:   model.EventOpened,
		Opened: true,
	})
}
