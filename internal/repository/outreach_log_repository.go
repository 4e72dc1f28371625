package repository

import (
	"database/sql"
	"time"

	"github.com/leadforge/outreach-backend/internal/model"
)

type OutreachLogRepositoryInterface interface {
	Append(entry *model.OutreachLogEntry) error
	ListByLead(leadID int) ([]*model.OutreachLogEntry, error)
	TouchCount(leadID int) (int, error)
	LastTouch(leadID int) (*time.Time, error)
	CountSentToday() (int, error)
}

// OutreachLogRepository is append-only: there are no update or delete
// methods, by contract.
type OutreachLogRepository struct {
	DB *sql.DB
}

func (r *OutreachLogRepository) Append(entry *model.OutreachLogEntry) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	query := `
        INSERT INTO outreach_log (lead_id, type, subject, body, sent_at, opened, replied)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		entry.LeadID, entry.Type, entry.Subject, entry.Body,
		entry.SentAt, entry.Opened, entry.Replied,
	).Scan(&entry.ID)
}

func (r *OutreachLogRepository) ListByLead(leadID int) ([]*model.OutreachLogEntry, error) {
	query := `
        SELECT id, lead_id, type, subject, body, sent_at, opened, replied
        FROM outreach_log
        WHERE lead_id=$1
        ORDER BY sent_at ASC
    `
	rows, err := r.DB.Query(query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.OutreachLogEntry{}
	for rows.Next() {
		e := &model.OutreachLogEntry{}
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Type, &e.Subject, &e.Body, &e.SentAt, &e.Opened, &e.Replied); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TouchCount counts outbound touches only; engagement events do not count.
func (r *OutreachLogRepository) TouchCount(leadID int) (int, error) {
	query := `
        SELECT COUNT(*) FROM outreach_log
        WHERE lead_id=$1 AND type IN ('initial', 'followup_1', 'followup_2', 'followup_3')
    `
	var count int
	err := r.DB.QueryRow(query, leadID).Scan(&count)
	return count, err
}

func (r *OutreachLogRepository) LastTouch(leadID int) (*time.Time, error) {
	query := `
        SELECT MAX(sent_at) FROM outreach_log
        WHERE lead_id=$1 AND type IN ('initial', 'followup_1', 'followup_2', 'followup_3')
    `
	var last sql.NullTime
	if err := r.DB.QueryRow(query, leadID).Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// CountSentToday backs the daily cap check. The count is read before each
// send, not reserved atomically, so two overlapping runs can jointly exceed
// the cap; a known limitation of the cap design.
func (r *OutreachLogRepository) CountSentToday() (int, error) {
	query := `
        SELECT COUNT(*) FROM outreach_log
        WHERE type IN ('initial', 'followup_1', 'followup_2', 'followup_3')
          AND sent_at >= date_trunc('day', NOW())
    `
	var count int
	err := r.DB.QueryRow(query).Scan(&count)
	return count, err
}

var _ OutreachLogRepositoryInterface = (*OutreachLogRepository)(nil)
