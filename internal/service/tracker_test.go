package service_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/service"
)

func newTracker(leads *MockLeadRepo, log *MockLogRepo, notifier *MockNotifier) *service.Tracker {
	return &service.Tracker{
		Leads:    leads,
		Log:      log,
		Notifier: notifier,
		Logger:   zap.NewNop(),
	}
}

func event(eventType, to string) service.EngagementEvent {
	return service.EngagementEvent{
		EventID: "evt-test",
		Type:    eventType,
		Data:    service.EngagementData{To: to},
	}
}

func TestUnknownRecipientIsNoOp(t *testing.T) {
	repo := NewMockLeadRepo()
	log := &MockLogRepo{}

	result, err := newTracker(repo, log, &MockNotifier{}).ProcessEvent(context.Background(), event("bounced", "stranger@nowhere.example"))
	if err != nil {
		t.Fatalf("unknown recipient must not error: %v", err)
	}
	if result.Processed {
		t.Errorf("expected processed=false for unknown recipient")
	}
	if len(log.entries) != 0 {
		t.Errorf("no log rows expected for unknown recipient")
	}
}

func TestDeliveredOnlyFlipsNewLeads(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	repo := NewMockLeadRepo(lead)
	log := &MockLogRepo{}
	tracker := newTracker(repo, log, &MockNotifier{})

	result, err := tracker.ProcessEvent(context.Background(), event("delivered", "owner@hillcountry.example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Processed || result.Status != model.StatusContacted {
		t.Fatalf("expected contacted, got %+v", result)
	}

	// A replayed delivered event must not write status again.
	if _, err := tracker.ProcessEvent(context.Background(), event("delivered", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.statusUpdates) != 1 {
		t.Errorf("delivered replay must be idempotent, got %d status writes", len(repo.statusUpdates))
	}
}

func TestBouncedIsTerminal(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	lead.Status = model.StatusContacted
	repo := NewMockLeadRepo(lead)
	log := &MockLogRepo{}
	tracker := newTracker(repo, log, &MockNotifier{})

	if _, err := tracker.ProcessEvent(context.Background(), event("bounced", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != model.StatusBounced {
		t.Fatalf("expected bounced, got %s", lead.Status)
	}

	// Late-arriving benign events must not resurrect the lead.
	if _, err := tracker.ProcessEvent(context.Background(), event("delivered", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.ProcessEvent(context.Background(), event("opened", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != model.StatusBounced {
		t.Errorf("terminal status must win, got %s", lead.Status)
	}
}

func TestComplainedUnsubscribes(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	lead.Status = model.StatusContacted
	repo := NewMockLeadRepo(lead)
	notifier := &MockNotifier{}

	if _, err := newTracker(repo, &MockLogRepo{}, notifier).ProcessEvent(context.Background(), event("complained", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != model.StatusUnsubscribed {
		t.Errorf("expected unsubscribed, got %s", lead.Status)
	}
	if len(notifier.notes) != 1 {
		t.Errorf("complaint should notify")
	}
}

func TestOpenedLogsWithoutStatusChange(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	lead.Status = model.StatusContacted
	repo := NewMockLeadRepo(lead)
	log := &MockLogRepo{}
	notifier := &MockNotifier{}

	if _, err := newTracker(repo, log, notifier).ProcessEvent(context.Background(), event("opened", "owner@hillcountry.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != model.StatusContacted {
		t.Errorf("opened must not change status, got %s", lead.Status)
	}
	if len(log.entries) != 1 || log.entries[0].Type != model.EventOpened || !log.entries[0].Opened {
		t.Errorf("expected one opened log row, got %+v", log.entries)
	}
	if len(notifier.notes) != 1 {
		t.Errorf("opened should notify")
	}
}

func TestMarkRepliedIsIdempotent(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	lead.Status = model.StatusContacted
	repo := NewMockLeadRepo(lead)
	notifier := &MockNotifier{}
	tracker := newTracker(repo, &MockLogRepo{}, notifier)

	if _, err := tracker.MarkReplied(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != model.StatusReplied {
		t.Fatalf("expected replied, got %s", lead.Status)
	}

	if _, err := tracker.MarkReplied(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.statusUpdates) != 1 {
		t.Errorf("reapplying replied must be a no-op, got %d status writes", len(repo.statusUpdates))
	}
}

func TestMarkBookedFromAnyStatus(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	lead.Status = model.StatusReplied
	repo := NewMockLeadRepo(lead)
	tracker := newTracker(repo, &MockLogRepo{}, &MockNotifier{})

	result, err := tracker.MarkBooked(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.StatusBooked || lead.Status != model.StatusBooked {
		t.Errorf("expected booked, got %s", lead.Status)
	}
}
