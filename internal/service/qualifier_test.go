package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/analyzer"
	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/service"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		score int
		want  model.Tier
	}{
		{100, model.TierHot},
		{75, model.TierHot},
		{70, model.TierHot},
		{69, model.TierWarm},
		{40, model.TierWarm},
		{39, model.TierCold},
		{0, model.TierCold},
	}

	for _, tc := range cases {
		if got := service.TierFor(tc.score, 70, 40); got != tc.want {
			t.Errorf("TierFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func newQualifier(leads *MockLeadRepo, completer *MockCompleter, site *MockAnalyzer) *service.Qualifier {
	return &service.Qualifier{
		Leads:         leads,
		Analyzer:      site,
		AI:            completer,
		HotThreshold:  70,
		WarmThreshold: 40,
		Logger:        zap.NewNop(),
	}
}

func TestQualifyHotLead(t *testing.T) {
	lead := &model.Lead{
		ID:           1,
		BusinessName: "Hill Country Plumbing",
		Rating:       4.8,
		ReviewCount:  120,
		HasWebsite:   true,
		WebsiteScore: intPtr(85),
		Tier:         model.TierUnscored,
		Status:       model.StatusNew,
	}
	repo := NewMockLeadRepo(lead)
	completer := &MockCompleter{responses: []string{
		`Sure, here is the assessment: {"score": 75, "reasoning": "busy business, dated site", "pitch_angle": "mobile redesign"}`,
	}}
	site := &MockAnalyzer{}

	q := newQualifier(repo, completer, site)
	if err := q.Qualify(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.AIScore != 75 {
		t.Errorf("expected score 75, got %d", lead.AIScore)
	}
	if lead.Tier != model.TierHot {
		t.Errorf("expected tier hot, got %s", lead.Tier)
	}
	if lead.Status != model.StatusNew {
		t.Errorf("qualification must not touch status, got %s", lead.Status)
	}
	if site.calls != 0 {
		t.Errorf("analyzer must not run when website_score is already set")
	}
	if !strings.Contains(lead.AINotes, "mobile redesign") {
		t.Errorf("pitch angle missing from notes: %q", lead.AINotes)
	}
}

func TestQualifyTriggersAnalyzer(t *testing.T) {
	lead := &model.Lead{
		ID:           2,
		BusinessName: "Lakeside Drain Pros",
		HasWebsite:   true,
		Website:      strPtr("https://lakesidedrains.example"),
		Tier:         model.TierUnscored,
		Status:       model.StatusNew,
	}
	repo := NewMockLeadRepo(lead)
	completer := &MockCompleter{responses: []string{`{"score": 55, "reasoning": "average", "pitch_angle": "speed"}`}}
	site := &MockAnalyzer{result: analyzer.Result{Score: 42, SSL: true, ResponseTimeMs: 800}}

	q := newQualifier(repo, completer, site)
	if err := q.Qualify(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if site.calls != 1 {
		t.Fatalf("expected one analyzer call, got %d", site.calls)
	}
	if repo.analysisUpdates != 1 {
		t.Errorf("website analysis was not persisted")
	}
	if lead.WebsiteScore == nil || *lead.WebsiteScore != 42 {
		t.Errorf("website score not recorded on lead")
	}
}

func TestQualifyMalformedResponseFallsBack(t *testing.T) {
	lead := &model.Lead{ID: 3, BusinessName: "ATX Rooter", WebsiteScore: intPtr(10), Tier: model.TierUnscored, Status: model.StatusNew}
	repo := NewMockLeadRepo(lead)
	completer := &MockCompleter{responses: []string{"I cannot answer that."}}

	q := newQualifier(repo, completer, &MockAnalyzer{})
	if err := q.Qualify(context.Background(), lead); err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}

	if lead.AIScore != 50 {
		t.Errorf("expected neutral score 50, got %d", lead.AIScore)
	}
	if lead.Tier != model.TierWarm {
		t.Errorf("expected warm tier from neutral score, got %s", lead.Tier)
	}
}

func TestQualifyClampsScore(t *testing.T) {
	lead := &model.Lead{ID: 4, BusinessName: "Boise Smile Studio", WebsiteScore: intPtr(20), Tier: model.TierUnscored, Status: model.StatusNew}
	repo := NewMockLeadRepo(lead)
	completer := &MockCompleter{responses: []string{`{"score": 250, "reasoning": "very promising", "pitch_angle": "seo"}`}}

	q := newQualifier(repo, completer, &MockAnalyzer{})
	if err := q.Qualify(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.AIScore != 100 {
		t.Errorf("expected clamped score 100, got %d", lead.AIScore)
	}
}

func TestQualifyBatchContinuesPastFailure(t *testing.T) {
	bad := &model.Lead{ID: 1, BusinessName: "Bad", WebsiteScore: intPtr(5), Tier: model.TierUnscored, Status: model.StatusNew}
	good := &model.Lead{ID: 2, BusinessName: "Good", WebsiteScore: intPtr(60), Tier: model.TierUnscored, Status: model.StatusNew}
	repo := NewMockLeadRepo(bad, good)

	completer := &MockCompleter{err: fmt.Errorf("classifier 5xx")}
	q := newQualifier(repo, completer, &MockAnalyzer{})

	summary, err := q.QualifyBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("batch must survive per-lead failures: %v", err)
	}
	if summary.Failed != 2 || summary.Processed != 0 {
		t.Errorf("expected 2 failures, got %+v", summary)
	}
	if completer.calls != 2 {
		t.Errorf("expected both leads attempted, got %d calls", completer.calls)
	}
}
