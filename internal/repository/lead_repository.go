package repository

import (
	"database/sql"
	"fmt"
	"strings"

	appErrors "github.com/leadforge/outreach-backend/internal/errors"
	"github.com/leadforge/outreach-backend/internal/model"
)

type LeadRepositoryInterface interface {
	// Batch intake
	InsertBatch(campaignID int, leads []*model.Lead) (int, error)

	// Point queries
	GetByID(id int) (*model.Lead, error)
	GetByEmail(email string) (*model.Lead, error)
	ListUnscored(limit int) ([]*model.Lead, error)
	ListByTierStatus(tier model.Tier, status model.Status, limit int) ([]*model.Lead, error)
	ListMissingEmail(limit int) ([]*model.Lead, error)
	ListFollowUpDue(cooldownDays []int, maxTouches, limit int) ([]*model.Lead, error)

	// Single-row mutations
	UpdateWebsiteAnalysis(id, score int, mobileFriendly, ssl bool, responseTimeMs int) error
	UpdateQualification(id, score int, tier model.Tier, notes string) error
	UpdateEmail(id int, email string) error
	UpdateStatus(id int, status model.Status) error

	// Aggregates
	Stats() (*model.LeadStats, error)
	CampaignStats(campaignID int) (map[string]int, error)
}

type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, campaign_id, place_id, business_name, phone, email, website,
    address, city, state, rating, review_count,
    has_website, website_score, mobile_friendly, ssl, response_time_ms,
    ai_score, ai_notes, tier, status, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(
		&l.ID, &l.CampaignID, &l.PlaceID, &l.BusinessName, &l.Phone, &l.Email, &l.Website,
		&l.Address, &l.City, &l.State, &l.Rating, &l.ReviewCount,
		&l.HasWebsite, &l.WebsiteScore, &l.MobileFriendly, &l.SSL, &l.ResponseTimeMs,
		&l.AIScore, &l.AINotes, &l.Tier, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// InsertBatch inserts discovery rows for a campaign inside one transaction.
// Rows whose place_id already exists are silently skipped, never overwritten,
// and the campaign's leads_found counter is bumped by the inserted count in
// the same transaction.
func (r *LeadRepository) InsertBatch(campaignID int, leads []*model.Lead) (int, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO leads
            (campaign_id, place_id, business_name, phone, email, website,
             address, city, state, rating, review_count, has_website,
             tier, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'unscored', 'new', NOW(), NOW())
        ON CONFLICT (place_id) DO NOTHING
    `

	inserted := 0
	for _, l := range leads {
		if l.PlaceID == "" {
			continue
		}
		hasWebsite := l.Website != nil && *l.Website != ""
		res, err := tx.Exec(query,
			campaignID, l.PlaceID, l.BusinessName, l.Phone, l.Email, l.Website,
			l.Address, l.City, l.State, l.Rating, l.ReviewCount, hasWebsite,
		)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if inserted > 0 {
		if _, err := tx.Exec(
			`UPDATE campaigns SET leads_found = leads_found + $1 WHERE id=$2`,
			inserted, campaignID,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *LeadRepository) GetByID(id int) (*model.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id=$1`, leadColumns)
	lead, err := scanLead(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewLeadNotFound(id)
		}
		return nil, err
	}
	return lead, nil
}

// GetByEmail returns nil, nil when no lead matches; engagement events for
// unknown recipients are a no-op, not an error.
func (r *LeadRepository) GetByEmail(email string) (*model.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE email=$1`, leadColumns)
	lead, err := scanLead(r.DB.QueryRow(query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) ListUnscored(limit int) ([]*model.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE tier='unscored' ORDER BY id LIMIT $1`, leadColumns)
	return r.queryLeads(query, limit)
}

// ListByTierStatus returns sendable candidates: only leads with a discovered
// email qualify, so an unenriched lead never occupies a batch slot.
func (r *LeadRepository) ListByTierStatus(tier model.Tier, status model.Status, limit int) ([]*model.Lead, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM leads
        WHERE tier=$1 AND status=$2 AND email IS NOT NULL AND email <> ''
        ORDER BY ai_score DESC LIMIT $3`, leadColumns)
	return r.queryLeads(query, tier, status, limit)
}

// ListMissingEmail returns hot/warm leads with no email yet, best score first.
func (r *LeadRepository) ListMissingEmail(limit int) ([]*model.Lead, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM leads
        WHERE tier IN ('hot', 'warm') AND (email IS NULL OR email = '')
        ORDER BY ai_score DESC LIMIT $1`, leadColumns)
	return r.queryLeads(query, limit)
}

// ListFollowUpDue selects contacted leads whose touch count is below
// maxTouches and whose most recent touch is at least the cooldown for that
// touch count in the past. The matrix is indexed min(touchCount-1, len-1).
func (r *LeadRepository) ListFollowUpDue(cooldownDays []int, maxTouches, limit int) ([]*model.Lead, error) {
	c0 := cooldownAt(cooldownDays, 0)
	c1 := cooldownAt(cooldownDays, 1)
	c2 := cooldownAt(cooldownDays, 2)

	query := fmt.Sprintf(`
        WITH touches AS (
            SELECT lead_id, COUNT(*) AS touch_count, MAX(sent_at) AS last_sent
            FROM outreach_log
            WHERE type IN ('initial', 'followup_1', 'followup_2', 'followup_3')
            GROUP BY lead_id
        )
        SELECT %s FROM leads l
        JOIN touches t ON t.lead_id = l.id
        WHERE l.status = 'contacted'
          AND t.touch_count < $1
          AND t.last_sent <= NOW() - (
              CASE
                  WHEN t.touch_count = 1 THEN $2
                  WHEN t.touch_count = 2 THEN $3
                  ELSE $4
              END || ' days')::interval
        ORDER BY t.last_sent ASC
        LIMIT $5`,
		prefixColumns("l", leadColumns))

	return r.queryLeads(query, maxTouches, c0, c1, c2, limit)
}

func (r *LeadRepository) UpdateWebsiteAnalysis(id, score int, mobileFriendly, ssl bool, responseTimeMs int) error {
	query := `
        UPDATE leads
        SET website_score=$1, mobile_friendly=$2, ssl=$3, response_time_ms=$4, updated_at=NOW()
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, score, mobileFriendly, ssl, responseTimeMs, id)
	return err
}

func (r *LeadRepository) UpdateQualification(id, score int, tier model.Tier, notes string) error {
	query := `
        UPDATE leads
        SET ai_score=$1, tier=$2, ai_notes=$3, updated_at=NOW()
        WHERE id=$4
    `
	_, err := r.DB.Exec(query, score, tier, notes, id)
	return err
}

func (r *LeadRepository) UpdateEmail(id int, email string) error {
	query := `UPDATE leads SET email=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, email, id)
	return err
}

func (r *LeadRepository) UpdateStatus(id int, status model.Status) error {
	query := `UPDATE leads SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *LeadRepository) Stats() (*model.LeadStats, error) {
	stats := &model.LeadStats{
		ByTier:   map[model.Tier]int{},
		ByStatus: map[model.Status]int{},
	}

	rows, err := r.DB.Query(`SELECT tier, COUNT(*) FROM leads GROUP BY tier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tier model.Tier
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		stats.ByTier[tier] = count
		stats.Total += count
	}

	statusRows, err := r.DB.Query(`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status model.Status
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}

	return stats, nil
}

func (r *LeadRepository) CampaignStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM leads WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, nil
}

func (r *LeadRepository) queryLeads(query string, args ...any) ([]*model.Lead, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func cooldownAt(days []int, i int) int {
	if len(days) == 0 {
		return 3
	}
	if i >= len(days) {
		i = len(days) - 1
	}
	return days[i]
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
