// internal/model/campaign.go
package model

import "time"

// Campaign is one discovery run for a (niche, city) pair. Immutable after
// creation except for the leads_found counter.
type Campaign struct {
	ID         int       `db:"id" json:"id"`
	Niche      string    `db:"niche" json:"niche"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	LeadsFound int       `db:"leads_found" json:"leads_found"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
