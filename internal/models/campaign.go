package models

import "time"

// Campaign statuses
const (
	CampaignStatusDraft    = "draft"
	CampaignStatusActive   = "active"
	CampaignStatusInactive = "inactive"
)

// Campaign is identified by its structured campaign_id
// (YYYY-MM_GEO-CHAN-TYPE-CONCEPT-LANG), derived once and immutable.
// Campaigns are never hard-deleted: deletion sets status to inactive so
// historical attribution keeps resolving.
type Campaign struct {
	CampaignID     string    `json:"campaign_id"`
	Name           string    `json:"name"`
	DateStart      string    `json:"date_start"`
	DateEnd        string    `json:"date_end,omitempty"`
	Geo            string    `json:"geo"`
	PrimaryChannel string    `json:"primary_channel"`
	Type           string    `json:"type"`
	Concept        string    `json:"concept"`
	Language       string    `json:"language"`
	Status         string    `json:"status"`
	Budget         float64   `json:"budget,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func IsValidCampaignStatus(s string) bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusInactive:
		return true
	}
	return false
}
