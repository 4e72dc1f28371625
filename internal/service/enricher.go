// internal/service/enricher.go
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/ai"
	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

const (
	scrapeTimeout    = 6 * time.Second
	maxScrapedBytes  = 1 << 20
	maxEmailLength   = 64
	notFoundSentinel = "NOT_FOUND"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	contactPaths = []string{"", "/contact", "/contact-us", "/about", "/about-us"}

	junkLocalPrefixes = []string{"no-reply", "noreply", "donotreply", "mailer-daemon", "postmaster"}
	junkDomainMarkers = []string{"example.", "yourdomain", "domain.com", "sentry.", "wixpress.com", "placeholder"}
	imageSuffixes     = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}
	genericLocals     = map[string]bool{"info": true, "contact": true, "hello": true}
)

// Enricher discovers contact emails for hot/warm leads: first a site scrape,
// then optionally an AI lookup. Each discovery is written immediately so a
// later failure never loses earlier finds.
type Enricher struct {
	Leads repository.LeadRepositoryInterface
	AI    ai.Completer

	AILookupEnabled bool
	CallDelay       time.Duration
	Logger          *zap.Logger

	httpClient *http.Client
}

func NewEnricher(leads repository.LeadRepositoryInterface, completer ai.Completer, aiLookup bool, callDelay time.Duration, logger *zap.Logger) *Enricher {
	return &Enricher{
		Leads:           leads,
		AI:              completer,
		AILookupEnabled: aiLookup,
		CallDelay:       callDelay,
		Logger:          logger,
		httpClient:      &http.Client{Timeout: scrapeTimeout},
	}
}

// EnrichBatch walks hot/warm leads missing an email, best score first.
func (e *Enricher) EnrichBatch(ctx context.Context, limit int) (StageSummary, error) {
	summary := StageSummary{Stage: "enrich"}

	leads, err := e.Leads.ListMissingEmail(limit)
	if err != nil {
		return summary, err
	}

	for _, lead := range leads {
		email, err := e.Enrich(ctx, lead)
		if err != nil {
			summary.Failed++
			e.Logger.Warn("failed to enrich lead",
				zap.Int("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		if email == "" {
			summary.Skipped++
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

// Enrich runs the two passes in order, short-circuiting on the first hit,
// and persists the discovery immediately.
func (e *Enricher) Enrich(ctx context.Context, lead *model.Lead) (string, error) {
	email := e.scrapeSite(ctx, lead.WebsiteURL())

	if email == "" && e.AILookupEnabled {
		if err := sleepCtx(ctx, e.CallDelay); err != nil {
			return "", err
		}
		found, err := e.aiLookup(ctx, lead)
		if err != nil {
			return "", err
		}
		email = found
	}

	if email == "" {
		return "", nil
	}

	if err := e.Leads.UpdateEmail(lead.ID, email); err != nil {
		return "", err
	}
	lead.Email = &email

	e.Logger.Info("email discovered",
		zap.Int("lead_id", lead.ID),
		zap.String("email", email),
	)
	return email, nil
}

// scrapeSite fetches the homepage and common contact pages, collecting every
// plausible address. Missing pages are ignored.
func (e *Enricher) scrapeSite(ctx context.Context, websiteURL string) string {
	if strings.TrimSpace(websiteURL) == "" {
		return ""
	}

	base := websiteURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	base = strings.TrimRight(base, "/")

	found := []string{}
	seen := map[string]bool{}
	for _, path := range contactPaths {
		body, err := e.fetchPage(ctx, base+path)
		if err != nil {
			continue
		}
		for _, candidate := range ExtractEmails(body) {
			if !seen[candidate] {
				seen[candidate] = true
				found = append(found, candidate)
			}
		}
	}

	return PickBestEmail(found)
}

func (e *Enricher) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapedBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractEmails pulls RFC-shaped matches out of page text and drops
// known-junk addresses.
func ExtractEmails(body string) []string {
	matches := emailPattern.FindAllString(body, -1)
	emails := []string{}
	for _, m := range matches {
		candidate := strings.ToLower(m)
		if isJunkEmail(candidate) {
			continue
		}
		emails = append(emails, candidate)
	}
	return emails
}

func isJunkEmail(email string) bool {
	if len(email) > maxEmailLength {
		return true
	}

	at := strings.Index(email, "@")
	if at < 1 {
		return true
	}
	local, domain := email[:at], email[at+1:]

	for _, prefix := range junkLocalPrefixes {
		if strings.HasPrefix(local, prefix) {
			return true
		}
	}
	for _, marker := range junkDomainMarkers {
		if strings.Contains(domain, marker) {
			return true
		}
	}
	// Image filenames match the pattern (logo@2x.png and friends).
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	return false
}

// PickBestEmail prefers a named person over a generic inbox when both were
// found.
func PickBestEmail(emails []string) string {
	if len(emails) == 0 {
		return ""
	}
	for _, email := range emails {
		local := email[:strings.Index(email, "@")]
		if !genericLocals[local] {
			return email
		}
	}
	return emails[0]
}

const enricherSystemPrompt = "You find public contact email addresses for local businesses. " +
	"Respond with exactly one email address, or the single token NOT_FOUND. Nothing else."

// aiLookup asks the AI for a single address and validates the shape of the
// answer before trusting it.
func (e *Enricher) aiLookup(ctx context.Context, lead *model.Lead) (string, error) {
	prompt := fmt.Sprintf("Find the contact email for %q at %s, %s, %s.",
		lead.BusinessName, lead.Address, lead.City, lead.State)
	if lead.HasWebsite {
		prompt += fmt.Sprintf(" Their website is %s.", lead.WebsiteURL())
	}

	content, err := e.AI.Complete(ctx, enricherSystemPrompt, prompt)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(content)
	if answer == "" || strings.Contains(answer, notFoundSentinel) {
		return "", nil
	}

	match := emailPattern.FindString(answer)
	if match == "" || len(match) > maxEmailLength {
		e.Logger.Debug("AI email lookup returned an unusable answer",
			zap.Int("lead_id", lead.ID),
		)
		return "", nil
	}

	email := strings.ToLower(match)
	if isJunkEmail(email) {
		return "", nil
	}
	return email, nil
}
