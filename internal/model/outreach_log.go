// internal/model/outreach_log.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// TouchType labels an outreach_log row: either an outbound touch or an
// engagement event observed from the mail provider.
type TouchType string

const (
	TouchInitial   TouchType = "initial"
	TouchFollowUp1 TouchType = "followup_1"
	TouchFollowUp2 TouchType = "followup_2"
	TouchFollowUp3 TouchType = "followup_3"

	EventDelivered  TouchType = "delivered"
	EventOpened     TouchType = "opened"
	EventClicked    TouchType = "clicked"
	EventBounced    TouchType = "bounced"
	EventComplained TouchType = "complained"
)

// IsTouch reports whether t counts toward the lead's touch count and the
// daily send cap.
func (t TouchType) IsTouch() bool {
	return t == TouchInitial || strings.HasPrefix(string(t), "followup_")
}

// FollowUpTouch maps a prior touch count to the next follow-up type:
// 1 -> followup_1, 2 -> followup_2, 3 -> followup_3. Counts outside that
// range clamp to the nearest valid type, so a misconfigured touch ceiling
// cannot fabricate labels outside the enum.
func FollowUpTouch(priorTouches int) TouchType {
	if priorTouches < 1 {
		priorTouches = 1
	}
	if priorTouches > 3 {
		priorTouches = 3
	}
	return TouchType(fmt.Sprintf("followup_%d", priorTouches))
}

// OutreachLogEntry is append-only; rows are never updated or deleted.
type OutreachLogEntry struct {
	ID      int       `db:"id" json:"id"`
	LeadID  int       `db:"lead_id" json:"lead_id"`
	Type    TouchType `db:"type" json:"type"`
	Subject string    `db:"subject" json:"subject"`
	Body    string    `db:"body" json:"body"`
	SentAt  time.Time `db:"sent_at" json:"sent_at"`
	Opened  bool      `db:"opened" json:"opened"`
	Replied bool      `db:"replied" json:"replied"`
}
