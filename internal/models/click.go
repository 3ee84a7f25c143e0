package models

import "time"

// Click sources
const (
	ClickSourceRedirect = "redirect"
	ClickSourceDirect   = "direct"
	ClickSourcePageView = "page-view"
	ClickSourcePixel    = "pixel"
)

// ClickEvent is an immutable fact: written once per tracked interaction,
// never mutated or deleted. PlacementID is zero when the event could not be
// attributed to a known placement (raw page views).
type ClickEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	PlacementID int64     `json:"placement_id,omitempty"`
	CampaignID  string    `json:"campaign_id"`
	Channel     string    `json:"channel"`
	AdType      string    `json:"ad_type,omitempty"`
	Medium      string    `json:"medium"`
	UTM         UTMSet    `json:"utm"`
	URL         string    `json:"url,omitempty"`
	IP          string    `json:"ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	Country     string    `json:"country,omitempty"`
	Region      string    `json:"region,omitempty"`
	City        string    `json:"city,omitempty"`
	ISP         string    `json:"isp,omitempty"`
	Source      string    `json:"source"`
}
