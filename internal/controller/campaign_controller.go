// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/leadforge/outreach-backend/internal/errors"
	"github.com/leadforge/outreach-backend/internal/model"
	"github.com/leadforge/outreach-backend/internal/repository"
)

type CampaignController struct {
	Campaigns repository.CampaignRepositoryInterface
	Leads     repository.LeadRepositoryInterface
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Niche string `json:"niche"`
		City  string `json:"city"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Niche == "" || body.City == "" {
		http.Error(w, "niche and city are required", http.StatusBadRequest)
		return
	}

	campaign := &model.Campaign{
		Niche: body.Niche,
		City:  body.City,
		State: body.State,
	}
	if err := c.Campaigns.Create(campaign); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := c.Campaigns.List(offset, pageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	campaign, err := c.Campaigns.GetByID(id)
	if err != nil {
		if _, ok := err.(*appErrors.ErrCampaignNotFound); ok {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := c.Leads.CampaignStats(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign":    campaign,
		"lead_stats":  stats,
		"leads_found": campaign.LeadsFound,
	})
}

// ImportLeads receives a discovery-feed batch for a campaign. The insert is
// idempotent on place_id; duplicates are reported as skipped.
func (c *CampaignController) ImportLeads(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	if _, err := c.Campaigns.GetByID(id); err != nil {
		if _, ok := err.(*appErrors.ErrCampaignNotFound); ok {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var body struct {
		Leads []*model.Lead `json:"leads"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(body.Leads) == 0 {
		http.Error(w, "leads must not be empty", http.StatusBadRequest)
		return
	}

	inserted, err := c.Leads.InsertBatch(id, body.Leads)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"received": len(body.Leads),
		"inserted": inserted,
		"skipped":  len(body.Leads) - inserted,
	})
}
