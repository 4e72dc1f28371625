// internal/service/sender.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/leadforge/outreach-backend/internal/mailer"
	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

// SendOutcome classifies one Send call. Skips are policy rejections, not
// errors.
type SendOutcome string

const (
	OutcomeSent           SendOutcome = "sent"
	OutcomeSkippedNoEmail SendOutcome = "skipped_no_email"
	OutcomeSkippedCap     SendOutcome = "skipped_daily_cap"
	OutcomeFailed         SendOutcome = "failed"
)

// Sender delivers one touch and owns the new->contacted transition. The
// daily cap is a read of today's log count before each send, not an atomic
// reservation: overlapping runs can jointly exceed the cap. Known
// limitation.
type Sender struct {
	Leads    repository.LeadRepositoryInterface
	Log      repository.OutreachLogRepositoryInterface
	Mailer   mailer.Mailer
	From     string
	DailyCap int
	DryRun   bool
	Logger   *zap.Logger
}

// Send delivers the given copy as one touch. On provider failure nothing is
// mutated, so the lead stays eligible for a later attempt. Dry-run performs
// every validation, logs what would go out, and mutates nothing.
func (s *Sender) Send(ctx context.Context, lead *model.Lead, touch model.TouchType, c *Copy) (SendOutcome, error) {
	email := lead.EmailAddress()
	if email == "" {
		return OutcomeSkippedNoEmail, nil
	}

	sentToday, err := s.Log.CountSentToday()
	if err != nil {
		return OutcomeFailed, err
	}
	if sentToday >= s.DailyCap {
		s.Logger.Info("daily outreach cap reached, skipping send",
			zap.Int("lead_id", lead.ID),
			zap.Int("cap", s.DailyCap),
		)
		return OutcomeSkippedCap, nil
	}

	if s.DryRun {
		s.Logger.Info("dry run: would send outreach",
			zap.Int("lead_id", lead.ID),
			zap.String("to", email),
			zap.String("touch", string(touch)),
			zap.String("subject", c.Subject),
		)
		return OutcomeSent, nil
	}

	msg := mailer.Message{
		To:      email,
		From:    s.From,
		Subject: c.Subject,
		Text:    c.Body,
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.Logger.Warn("mail provider rejected send",
			zap.Int("lead_id", lead.ID),
			zap.String("touch", string(touch)),
			zap.Error(err),
		)
		return OutcomeFailed, err
	}

	if err := s.Log.Append(&model.OutreachLogEntry{
		LeadID:  lead.ID,
		Type:    touch,
		Subject: c.Subject,
		Body:    c.Body,
	}); err != nil {
		return OutcomeFailed, err
	}

	if lead.Status == model.StatusNew {
		if err := s.Leads.UpdateStatus(lead.ID, model.StatusContacted); err != nil {
			return OutcomeFailed, err
		}
		lead.Status = model.StatusContacted
	}

	s.Logger.Info("outreach sent",
		zap.Int("lead_id", lead.ID),
		zap.String("touch", string(touch)),
	)
	return OutcomeSent, nil
}
