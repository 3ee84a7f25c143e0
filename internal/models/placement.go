package models

import "time"

// UTMSet is the (source, medium, campaign, content) quadruple attached to a
// placement's final URL.
type UTMSet struct {
	Source   string `json:"utm_source"`
	Medium   string `json:"utm_medium"`
	Campaign string `json:"utm_campaign"`
	Content  string `json:"utm_content"`
}

// Placement is a single tagged ad/flyer/QR instance within a campaign.
// Its UTM quadruple and final URL are fully derived from the build inputs and
// never hand-edited; exactly one redirect code is bound at build time.
type Placement struct {
	ID           int64     `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	SequenceNum  int       `json:"placement_id_seq"`
	Channel      string    `json:"channel"`
	AdType       string    `json:"ad_type"`
	Medium       string    `json:"medium"`
	BaseURL      string    `json:"base_url"`
	UTM          UTMSet    `json:"utm"`
	QRID         string    `json:"qr_id,omitempty"`
	FinalURL     string    `json:"final_url"`
	TrackedURL   string    `json:"tracked_url,omitempty"`
	RedirectCode string    `json:"redirect_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
