package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leadforge/outreach-backend/internal/analyzer"
	appErrors "github.com/leadforge/outreach-backend/internal/errors"
	"github.com/leadforge/outreach-backend/internal/mailer"
	"github.com/leadforge/outreach-backend/internal/model"
)

// --- Mock lead repository ---

type MockLeadRepo struct {
	mu    sync.Mutex
	leads map[int]*model.Lead
	due   []*model.Lead

	analysisUpdates      int
	qualificationUpdates int
	emailUpdates         []string
	statusUpdates        []model.Status
}

func NewMockLeadRepo(leads ...*model.Lead) *MockLeadRepo {
	m := &MockLeadRepo{leads: map[int]*model.Lead{}}
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return m
}

func (m *MockLeadRepo) InsertBatch(campaignID int, leads []*model.Lead) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, l := range leads {
		dup := false
		for _, existing := range m.leads {
			if existing.PlaceID == l.PlaceID {
				dup = true
				break
			}
		}
		if dup || l.PlaceID == "" {
			continue
		}
		l.ID = len(m.leads) + 1
		l.CampaignID = campaignID
		l.Tier = model.TierUnscored
		l.Status = model.StatusNew
		m.leads[l.ID] = l
		inserted++
	}
	return inserted, nil
}

func (m *MockLeadRepo) GetByID(id int) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return nil, appErrors.NewLeadNotFound(id)
	}
	return lead, nil
}

func (m *MockLeadRepo) GetByEmail(email string) (*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.Email != nil && *l.Email == email {
			return l, nil
		}
	}
	return nil, nil
}

func (m *MockLeadRepo) ListUnscored(limit int) ([]*model.Lead, error) {
	return m.filter(limit, func(l *model.Lead) bool { return l.Tier == model.TierUnscored })
}

func (m *MockLeadRepo) ListByTierStatus(tier model.Tier, status model.Status, limit int) ([]*model.Lead, error) {
	return m.filter(limit, func(l *model.Lead) bool {
		return l.Tier == tier && l.Status == status && l.EmailAddress() != ""
	})
}

func (m *MockLeadRepo) ListMissingEmail(limit int) ([]*model.Lead, error) {
	return m.filter(limit, func(l *model.Lead) bool {
		hotOrWarm := l.Tier == model.TierHot || l.Tier == model.TierWarm
		return hotOrWarm && l.EmailAddress() == ""
	})
}

func (m *MockLeadRepo) ListFollowUpDue(cooldownDays []int, maxTouches, limit int) ([]*model.Lead, error) {
	return m.due, nil
}

func (m *MockLeadRepo) UpdateWebsiteAnalysis(id, score int, mobileFriendly, ssl bool, responseTimeMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysisUpdates++
	if l, ok := m.leads[id]; ok {
		l.WebsiteScore = &score
		l.MobileFriendly = mobileFriendly
		l.SSL = ssl
		l.ResponseTimeMs = responseTimeMs
	}
	return nil
}

func (m *MockLeadRepo) UpdateQualification(id, score int, tier model.Tier, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qualificationUpdates++
	if l, ok := m.leads[id]; ok {
		l.AIScore = score
		l.Tier = tier
		l.AINotes = notes
	}
	return nil
}

func (m *MockLeadRepo) UpdateEmail(id int, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emailUpdates = append(m.emailUpdates, email)
	if l, ok := m.leads[id]; ok {
		l.Email = &email
	}
	return nil
}

func (m *MockLeadRepo) UpdateStatus(id int, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, status)
	if l, ok := m.leads[id]; ok {
		l.Status = status
	}
	return nil
}

func (m *MockLeadRepo) Stats() (*model.LeadStats, error) {
	return &model.LeadStats{ByTier: map[model.Tier]int{}, ByStatus: map[model.Status]int{}}, nil
}

func (m *MockLeadRepo) CampaignStats(campaignID int) (map[string]int, error) {
	return map[string]int{}, nil
}

func (m *MockLeadRepo) filter(limit int, keep func(*model.Lead) bool) ([]*model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Lead{}
	for _, l := range m.leads {
		if keep(l) && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- Mock outreach log repository ---

type MockLogRepo struct {
	mu      sync.Mutex
	entries []*model.OutreachLogEntry

	sentToday    int
	useSentToday bool
}

func (m *MockLogRepo) Append(entry *model.OutreachLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = len(m.entries) + 1
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockLogRepo) ListByLead(leadID int) ([]*model.OutreachLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.OutreachLogEntry{}
	for _, e := range m.entries {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLogRepo) TouchCount(leadID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.entries {
		if e.LeadID == leadID && e.Type.IsTouch() {
			count++
		}
	}
	return count, nil
}

func (m *MockLogRepo) LastTouch(leadID int) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for _, e := range m.entries {
		if e.LeadID == leadID && e.Type.IsTouch() {
			t := e.SentAt
			if last == nil || t.After(*last) {
				last = &t
			}
		}
	}
	return last, nil
}

func (m *MockLogRepo) CountSentToday() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.useSentToday {
		return m.sentToday, nil
	}
	count := 0
	for _, e := range m.entries {
		if e.Type.IsTouch() {
			count++
		}
	}
	return count, nil
}

func (m *MockLogRepo) SetSentToday(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentToday = n
	m.useSentToday = true
}

// --- Mock collaborators ---

type MockCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("no canned response")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

type MockAnalyzer struct {
	result analyzer.Result
	calls  int
}

func (m *MockAnalyzer) Analyze(ctx context.Context, websiteURL string) analyzer.Result {
	m.calls++
	return m.result
}

type MockMailer struct {
	mu   sync.Mutex
	fail bool
	sent []mailer.Message
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("provider unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type MockNotifier struct {
	mu    sync.Mutex
	notes []string
}

func (m *MockNotifier) Notify(ctx context.Context, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, text)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
