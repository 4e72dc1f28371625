package service_test

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/service"
)

func TestGenerateParsesCopy(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	completer := &MockCompleter{responses: []string{
		`Here you go: {"subject": "Noticed your reviews", "body": "Hi, quick thought about your site."}`,
	}}

	g := &service.Generator{AI: completer, Logger: zap.NewNop()}
	c, err := g.Generate(context.Background(), lead, model.TouchInitial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Subject != "Noticed your reviews" {
		t.Errorf("wrong subject: %q", c.Subject)
	}
	if c.Body != "Hi, quick thought about your site." {
		t.Errorf("wrong body: %q", c.Body)
	}
}

func TestGenerateFallsBackOnUnparseableCopy(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	raw := "Hi Mike, I took a look at Hill Country Plumbing's site and had one idea worth sharing."
	completer := &MockCompleter{responses: []string{raw}}

	g := &service.Generator{AI: completer, Logger: zap.NewNop()}
	c, err := g.Generate(context.Background(), lead, model.TouchInitial)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if c.Subject != "Quick question about Hill Country Plumbing" {
		t.Errorf("expected templated fallback subject, got %q", c.Subject)
	}
	if c.Body != raw {
		t.Errorf("fallback body must be the raw completion, got %q", c.Body)
	}
}

func TestGenerateFallsBackOnEmptyFields(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	completer := &MockCompleter{responses: []string{`{"subject": "", "body": "something"}`}}

	g := &service.Generator{AI: completer, Logger: zap.NewNop()}
	c, err := g.Generate(context.Background(), lead, model.TouchFollowUp1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Subject != "Quick question about Hill Country Plumbing" {
		t.Errorf("blank subject must trigger the fallback, got %q", c.Subject)
	}
}

func TestGenerateErrorPropagates(t *testing.T) {
	lead := hotLead(1, "owner@hillcountry.example")
	completer := &MockCompleter{err: fmt.Errorf("copywriter 5xx")}

	g := &service.Generator{AI: completer, Logger: zap.NewNop()}
	if _, err := g.Generate(context.Background(), lead, model.TouchInitial); err == nil {
		t.Fatal("an AI transport error must surface so the caller can skip the lead")
	}
}
