// internal/service/sequencer.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

// Sequencer re-touches contacted leads that stayed silent past their
// cooldown. A lead with zero prior touches is never a candidate; initial
// outreach belongs to the Outreach stage.
type Sequencer struct {
	Leads     repository.LeadRepositoryInterface
	Log       repository.OutreachLogRepositoryInterface
	Generator *Generator
	Sender    *Sender

	CooldownDays []int
	MaxTouches   int
	CallDelay    time.Duration
	Logger       *zap.Logger
}

// RunBatch selects due candidates and sends the next follow-up touch to
// each. Per-lead failures are counted, not propagated.
func (s *Sequencer) RunBatch(ctx context.Context, limit int) (StageSummary, error) {
	summary := StageSummary{Stage: "follow_up"}

	candidates, err := s.Leads.ListFollowUpDue(s.CooldownDays, s.MaxTouches, limit)
	if err != nil {
		return summary, err
	}

	for i, lead := range candidates {
		if i > 0 {
			if err := sleepCtx(ctx, s.CallDelay); err != nil {
				return summary, err
			}
		}

		touches, err := s.Log.TouchCount(lead.ID)
		if err != nil {
			summary.Failed++
			s.Logger.Warn("failed to count touches", zap.Int("lead_id", lead.ID), zap.Error(err))
			continue
		}
		lastTouch, err := s.Log.LastTouch(lead.ID)
		if err != nil {
			summary.Failed++
			s.Logger.Warn("failed to read last touch", zap.Int("lead_id", lead.ID), zap.Error(err))
			continue
		}

		// The store query prefilters, but the decision is re-checked here
		// against the log so a stale candidate set cannot double-send.
		if !FollowUpDue(touches, lastTouch, s.CooldownDays, s.MaxTouches, time.Now()) {
			summary.Skipped++
			continue
		}

		touch := model.FollowUpTouch(touches)
		c, err := s.Generator.Generate(ctx, lead, touch)
		if err != nil {
			summary.Failed++
			s.Logger.Warn("failed to generate follow-up",
				zap.Int("lead_id", lead.ID),
				zap.String("touch", string(touch)),
				zap.Error(err),
			)
			continue
		}

		outcome, err := s.Sender.Send(ctx, lead, touch, c)
		switch outcome {
		case OutcomeSent:
			summary.Processed++
		case OutcomeFailed:
			summary.Failed++
			s.Logger.Warn("failed to send follow-up",
				zap.Int("lead_id", lead.ID),
				zap.String("touch", string(touch)),
				zap.Error(err),
			)
		default:
			summary.Skipped++
		}
	}

	return summary, nil
}

// FollowUpDue decides whether a contacted lead is due for its next touch. A
// lead with zero touches is never due here, and the cooldown matrix is
// indexed min(touches-1, len-1): touch 2 waits after 3 days, touch 3 after
// 7, touch 4 after 14 with the default matrix.
func FollowUpDue(touches int, lastTouch *time.Time, cooldownDays []int, maxTouches int, now time.Time) bool {
	if touches < 1 || touches >= maxTouches || lastTouch == nil {
		return false
	}
	return now.Sub(*lastTouch) >= CooldownFor(cooldownDays, touches)
}

// CooldownFor returns the wait required after the given number of touches.
func CooldownFor(cooldownDays []int, touches int) time.Duration {
	if len(cooldownDays) == 0 {
		cooldownDays = []int{3, 7, 14}
	}
	idx := touches - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cooldownDays) {
		idx = len(cooldownDays) - 1
	}
	return time.Duration(cooldownDays[idx]) * 24 * time.Hour
}
