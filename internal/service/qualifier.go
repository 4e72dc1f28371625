// internal/service/qualifier.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/ai"
	"github.com/leadforge/outreach-backend/internal/analyzer"
	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

// Qualifier scores unscored leads through the AI classifier and assigns a
// tier. Tier is assigned exactly once; re-qualification requires an external
// re-trigger.
type Qualifier struct {
	Leads    repository.LeadRepositoryInterface
	Analyzer analyzer.SiteAnalyzer
	AI       ai.Completer

	HotThreshold  int
	WarmThreshold int
	CallDelay     time.Duration
	Logger        *zap.Logger
}

type scorePayload struct {
	Score      int    `json:"score"`
	Reasoning  string `json:"reasoning"`
	PitchAngle string `json:"pitch_angle"`
}

const qualifierSystemPrompt = "You qualify local businesses as web design sales leads. " +
	"Score 0-100 for how likely the business is to buy a new website. " +
	"Respond only with a compact JSON object: " +
	"{\"score\": number, \"reasoning\": string, \"pitch_angle\": string}."

// QualifyBatch processes up to limit unscored leads sequentially. A single
// lead's failure is logged and counted, never aborts the batch.
func (q *Qualifier) QualifyBatch(ctx context.Context, limit int) (StageSummary, error) {
	summary := StageSummary{Stage: "qualify"}

	leads, err := q.Leads.ListUnscored(limit)
	if err != nil {
		return summary, err
	}

	for i, lead := range leads {
		if i > 0 {
			if err := sleepCtx(ctx, q.CallDelay); err != nil {
				return summary, err
			}
		}

		if err := q.Qualify(ctx, lead); err != nil {
			summary.Failed++
			q.Logger.Warn("failed to qualify lead",
				zap.Int("lead_id", lead.ID),
				zap.Error(err),
			)
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

// Qualify analyzes the website when that has not happened yet, then scores
// the lead and persists score, tier and notes.
func (q *Qualifier) Qualify(ctx context.Context, lead *model.Lead) error {
	if lead.WebsiteScore == nil {
		res := q.Analyzer.Analyze(ctx, lead.WebsiteURL())
		if err := q.Leads.UpdateWebsiteAnalysis(lead.ID, res.Score, res.MobileFriendly, res.SSL, res.ResponseTimeMs); err != nil {
			return err
		}
		lead.WebsiteScore = &res.Score
		lead.MobileFriendly = res.MobileFriendly
		lead.SSL = res.SSL
		lead.ResponseTimeMs = res.ResponseTimeMs
	}

	content, err := q.AI.Complete(ctx, qualifierSystemPrompt, buildScoringPrompt(lead))
	if err != nil {
		return err
	}

	payload := parseScorePayload(content)
	score := clampScore(payload.Score)
	tier := TierFor(score, q.HotThreshold, q.WarmThreshold)

	notes := payload.Reasoning
	if payload.PitchAngle != "" {
		notes += "\nPitch angle: " + payload.PitchAngle
	}

	if err := q.Leads.UpdateQualification(lead.ID, score, tier, notes); err != nil {
		return err
	}

	lead.AIScore = score
	lead.Tier = tier
	lead.AINotes = notes

	q.Logger.Info("lead qualified",
		zap.Int("lead_id", lead.ID),
		zap.Int("score", score),
		zap.String("tier", string(tier)),
	)
	return nil
}

// parseScorePayload strict-parses the classifier output and falls back to a
// neutral default on anything unparseable, so one bad response cannot sink
// the batch.
func parseScorePayload(content string) scorePayload {
	var p scorePayload
	if ai.UnmarshalBlock(content, &p) && strings.TrimSpace(p.Reasoning) != "" {
		return p
	}
	return scorePayload{
		Score:     50,
		Reasoning: "Classifier response could not be parsed; assigned neutral score.",
	}
}

// TierFor is total and deterministic given the thresholds: hot iff
// score >= hot, warm iff score >= warm, else cold.
func TierFor(score, hotThreshold, warmThreshold int) model.Tier {
	switch {
	case score >= hotThreshold:
		return model.TierHot
	case score >= warmThreshold:
		return model.TierWarm
	default:
		return model.TierCold
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func buildScoringPrompt(lead *model.Lead) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Business: %s\n", lead.BusinessName)
	fmt.Fprintf(&b, "Location: %s, %s\n", lead.City, lead.State)
	fmt.Fprintf(&b, "Rating: %.1f (%d reviews)\n", lead.Rating, lead.ReviewCount)

	if lead.HasWebsite {
		score := 0
		if lead.WebsiteScore != nil {
			score = *lead.WebsiteScore
		}
		fmt.Fprintf(&b, "Has website: yes, quality score %d/100\n", score)
		fmt.Fprintf(&b, "Mobile friendly: %t, SSL: %t, response time: %dms\n",
			lead.MobileFriendly, lead.SSL, lead.ResponseTimeMs)
	} else {
		b.WriteString("Has website: no\n")
	}

	b.WriteString("\nHigh scores go to busy, well-reviewed businesses with weak or missing websites. " +
		"Explain the score and suggest one concrete pitch angle.")
	return b.String()
}
