// internal/controller/stats_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/leadforge/outreach-backend/internal/repository"
)

type StatsController struct {
	Leads repository.LeadRepositoryInterface
	Log   repository.OutreachLogRepositoryInterface
}

// GetStats returns lead counts by tier/status plus today's outreach count
// against the daily cap.
func (c *StatsController) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Leads.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sentToday, err := c.Log.CountSentToday()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"leads":      stats,
		"sent_today": sentToday,
	})
}
