package dto

type GenerateCampaignIDRequest struct {
	DateStart      string `json:"date_start"`
	Geo            string `json:"geo"`
	PrimaryChannel string `json:"primary_channel,omitempty"`
	Type           string `json:"type"`
	Concept        string `json:"concept"`
	Language       string `json:"language"`
}

type CreateCampaignRequest struct {
	CampaignID     string  `json:"campaign_id"`
	Name           string  `json:"name"`
	DateStart      string  `json:"date_start"`
	DateEnd        string  `json:"date_end,omitempty"`
	Geo            string  `json:"geo"`
	PrimaryChannel string  `json:"primary_channel,omitempty"`
	Type           string  `json:"type"`
	Concept        string  `json:"concept"`
	Language       string  `json:"language"`
	Status         string  `json:"status,omitempty"`
	Budget         float64 `json:"budget,omitempty"`
	Description    string  `json:"description,omitempty"`
}

type UpdateCampaignRequest struct {
	Name        *string  `json:"name,omitempty"`
	DateStart   *string  `json:"date_start,omitempty"`
	DateEnd     *string  `json:"date_end,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type ReactivateCampaignRequest struct {
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end,omitempty"`
}

type BuildPlacementLinkRequest struct {
	CampaignID     string `json:"campaign_id"`
	PlacementIDSeq int    `json:"placement_id_seq"`
	Channel        string `json:"channel"`
	AdType         string `json:"ad_type"`
	BaseURL        string `json:"base_url"`
	Medium         string `json:"medium"`
	Geo            string `json:"geo"`
	Language       string `json:"language"`
	Concept        string `json:"concept"`
}

type RecordClickRequest struct {
	PlacementID int64  `json:"placement_id,omitempty"`
	CampaignID  string `json:"campaign_id,omitempty"`
	URL         string `json:"url,omitempty"`
	Channel     string `json:"channel,omitempty"`
	AdType      string `json:"ad_type,omitempty"`
	Medium      string `json:"medium,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
}

type PageViewRequest struct {
	PageURL     string `json:"page_url"`
	Referrer    string `json:"referrer,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	QRID        string `json:"qr,omitempty"`
	IP          string `json:"ip,omitempty"`
	Country     string `json:"country,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	ISP         string `json:"isp,omitempty"`
}
