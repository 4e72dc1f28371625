// internal/db/migrations.go
package db

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id          SERIAL PRIMARY KEY,
		niche       TEXT NOT NULL,
		city        TEXT NOT NULL,
		state       TEXT NOT NULL DEFAULT '',
		leads_found INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id               SERIAL PRIMARY KEY,
		campaign_id      INT NOT NULL REFERENCES campaigns(id),
		place_id         TEXT NOT NULL UNIQUE,
		business_name    TEXT NOT NULL,
		phone            TEXT NOT NULL DEFAULT '',
		email            TEXT,
		website          TEXT,
		address          TEXT NOT NULL DEFAULT '',
		city             TEXT NOT NULL DEFAULT '',
		state            TEXT NOT NULL DEFAULT '',
		rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count     INT NOT NULL DEFAULT 0,
		has_website      BOOLEAN NOT NULL DEFAULT FALSE,
		website_score    INT,
		mobile_friendly  BOOLEAN NOT NULL DEFAULT FALSE,
		ssl              BOOLEAN NOT NULL DEFAULT FALSE,
		response_time_ms INT NOT NULL DEFAULT 0,
		ai_score         INT NOT NULL DEFAULT 0,
		ai_notes         TEXT NOT NULL DEFAULT '',
		tier             TEXT NOT NULL DEFAULT 'unscored',
		status           TEXT NOT NULL DEFAULT 'new',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outreach_log (
		id      SERIAL PRIMARY KEY,
		lead_id INT NOT NULL REFERENCES leads(id),
		type    TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		body    TEXT NOT NULL DEFAULT '',
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		opened  BOOLEAN NOT NULL DEFAULT FALSE,
		replied BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_tier ON leads(tier)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_campaign ON leads(campaign_id)`,
	`CREATE INDEX IF NOT EXISTS idx_outreach_log_lead ON outreach_log(lead_id)`,
}

// Migrate applies the schema. Statements are idempotent, so running it on
// every startup is safe.
func Migrate(conn *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
