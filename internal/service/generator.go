// internal/service/generator.go
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/ai"
	"github.com/leadforge/outreach-backend/internal/model"
)

// Copy is one generated outreach email.
type Copy struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator produces personalized subject/body per lead and touch type.
type Generator struct {
	AI     ai.Completer
	Logger *zap.Logger
}

const generatorSystemPrompt = "You write short, plain-text cold outreach emails for a web design agency. " +
	"Respond only with a compact JSON object: {\"subject\": string, \"body\": string}. " +
	"No markdown, no placeholders left unfilled."

// Generate asks the copywriter for subject and body. When the AI call itself
// fails the error propagates so the caller can skip the lead; when only the
// JSON payload is malformed, a templated subject plus the raw text is used
// instead.
func (g *Generator) Generate(ctx context.Context, lead *model.Lead, touch model.TouchType) (*Copy, error) {
	content, err := g.AI.Complete(ctx, generatorSystemPrompt, buildOutreachPrompt(lead, touch))
	if err != nil {
		return nil, err
	}

	var c Copy
	if !ai.UnmarshalBlock(content, &c) || strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Body) == "" {
		g.Logger.Warn("outreach copy was not parseable, using fallback",
			zap.Int("lead_id", lead.ID),
			zap.String("touch", string(touch)),
		)
		return &Copy{
			Subject: fmt.Sprintf("Quick question about %s", lead.BusinessName),
			Body:    strings.TrimSpace(content),
		}, nil
	}

	return &c, nil
}

func buildOutreachPrompt(lead *model.Lead, touch model.TouchType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Business: %s (%s, %s)\n", lead.BusinessName, lead.City, lead.State)
	fmt.Fprintf(&b, "Rating: %.1f from %d reviews\n", lead.Rating, lead.ReviewCount)
	if lead.HasWebsite {
		score := 0
		if lead.WebsiteScore != nil {
			score = *lead.WebsiteScore
		}
		fmt.Fprintf(&b, "Website: %s (quality score %d/100, mobile friendly: %t, ssl: %t)\n",
			lead.WebsiteURL(), score, lead.MobileFriendly, lead.SSL)
	} else {
		b.WriteString("Website: none\n")
	}
	if lead.AINotes != "" {
		fmt.Fprintf(&b, "Qualification notes: %s\n", lead.AINotes)
	}
	b.WriteString("\n")

	switch touch {
	case model.TouchInitial:
		b.WriteString("Write the first outreach email. Open with one specific, genuinely useful " +
			"observation about their business worth acting on. Never insult their current site. " +
			"Two short paragraphs, one soft call to action.")
	case model.TouchFollowUp1:
		b.WriteString("Write follow-up #1 to an unanswered email. Shorter than the first touch, " +
			"reference the earlier note lightly, add one new angle.")
	case model.TouchFollowUp2:
		b.WriteString("Write follow-up #2 to two unanswered emails. Three sentences at most, " +
			"low pressure, one concrete offer.")
	default:
		b.WriteString("Write the final follow-up: a polite two-sentence breakup email that closes " +
			"the loop and leaves the door open.")
	}

	return b.String()
}
