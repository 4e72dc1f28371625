// internal/service/outreach.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

// Outreach sends the initial touch to tiered leads that have not been
// contacted yet, hot tier first.
type Outreach struct {
	Leads     repository.LeadRepositoryInterface
	Generator *Generator
	Sender    *Sender

	Tiers     []model.Tier
	CallDelay time.Duration
	Logger    *zap.Logger
}

// DefaultOutreachTiers is the order in which fresh leads are worked.
var DefaultOutreachTiers = []model.Tier{model.TierHot, model.TierWarm}

// RunBatch sends up to limit initial touches per tier. Leads without an
// email are skipped by the Sender as a policy no-op; once the daily cap is
// hit the stage stops early, since every further send would be skipped too.
func (o *Outreach) RunBatch(ctx context.Context, limit int) (StageSummary, error) {
	summary := StageSummary{Stage: "outreach"}

	tiers := o.Tiers
	if len(tiers) == 0 {
		tiers = DefaultOutreachTiers
	}

	for _, tier := range tiers {
		leads, err := o.Leads.ListByTierStatus(tier, model.StatusNew, limit)
		if err != nil {
			return summary, err
		}

		for i, lead := range leads {
			if i > 0 {
				if err := sleepCtx(ctx, o.CallDelay); err != nil {
					return summary, err
				}
			}

			c, err := o.Generator.Generate(ctx, lead, model.TouchInitial)
			if err != nil {
				summary.Failed++
				o.Logger.Warn("failed to generate outreach",
					zap.Int("lead_id", lead.ID),
					zap.Error(err),
				)
				continue
			}

			outcome, err := o.Sender.Send(ctx, lead, model.TouchInitial, c)
			switch outcome {
			case OutcomeSent:
				summary.Processed++
			case OutcomeSkippedCap:
				summary.Skipped++
				return summary, nil
			case OutcomeFailed:
				summary.Failed++
				o.Logger.Warn("failed to send outreach",
					zap.Int("lead_id", lead.ID),
					zap.Error(err),
				)
			default:
				summary.Skipped++
			}
		}
	}

	return summary, nil
}
