// internal/model/lead.go
package model

import "time"

// Tier is the qualitative bucket derived from the AI score.
type Tier string

const (
	TierUnscored Tier = "unscored"
	TierHot      Tier = "hot"
	TierWarm     Tier = "warm"
	TierCold     Tier = "cold"
)

// Status is the lead's position in the outreach lifecycle. It only moves
// forward; bounced and unsubscribed are terminal.
type Status string

const (
	StatusNew          Status = "new"
	StatusContacted    Status = "contacted"
	StatusReplied      Status = "replied"
	StatusBooked       Status = "booked"
	StatusBounced      Status = "bounced"
	StatusUnsubscribed Status = "unsubscribed"
)

// Terminal reports whether s must not be overridden by later benign events.
func (s Status) Terminal() bool {
	return s == StatusBounced || s == StatusUnsubscribed
}

type Lead struct {
	ID           int     `db:"id" json:"id"`
	CampaignID   int     `db:"campaign_id" json:"campaign_id"`
	PlaceID      string  `db:"place_id" json:"place_id"`
	BusinessName string  `db:"business_name" json:"business_name"`
	Phone        string  `db:"phone" json:"phone"`
	Email        *string `db:"email" json:"email,omitempty"`
	Website      *string `db:"website" json:"website,omitempty"`
	Address      string  `db:"address" json:"address"`
	City         string  `db:"city" json:"city"`
	State        string  `db:"state" json:"state"`
	Rating       float64 `db:"rating" json:"rating"`
	ReviewCount  int     `db:"review_count" json:"review_count"`

	HasWebsite     bool `db:"has_website" json:"has_website"`
	WebsiteScore   *int `db:"website_score" json:"website_score,omitempty"`
	MobileFriendly bool `db:"mobile_friendly" json:"mobile_friendly"`
	SSL            bool `db:"ssl" json:"ssl"`
	ResponseTimeMs int  `db:"response_time_ms" json:"response_time_ms"`

	AIScore int    `db:"ai_score" json:"ai_score"`
	AINotes string `db:"ai_notes" json:"ai_notes"`
	Tier    Tier   `db:"tier" json:"tier"`
	Status  Status `db:"status" json:"status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WebsiteURL returns the lead's website or "" when none is known.
func (l *Lead) WebsiteURL() string {
	if l.Website == nil {
		return ""
	}
	return *l.Website
}

// EmailAddress returns the lead's email or "" when not yet enriched.
func (l *Lead) EmailAddress() string {
	if l.Email == nil {
		return ""
	}
	return *l.Email
}

// LeadStats is the aggregate view used by the stats endpoint.
type LeadStats struct {
	Total    int            `json:"total"`
	ByTier   map[Tier]int   `json:"by_tier"`
	ByStatus map[Status]int `json:"by_status"`
}
