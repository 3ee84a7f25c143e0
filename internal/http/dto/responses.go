package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type CampaignIDResponse struct {
	CampaignID string `json:"campaign_id"`
}

type PlacementLinkResponse struct {
	PlacementID  int64  `json:"placement_id"`
	CampaignID   string `json:"campaign_id"`
	Label        string `json:"label"`
	UTMSource    string `json:"utm_source"`
	UTMMedium    string `json:"utm_medium"`
	UTMCampaign  string `json:"utm_campaign"`
	UTMContent   string `json:"utm_content"`
	QRID         string `json:"qr_id"`
	FinalURL     string `json:"final_url"`
	TrackedURL   string `json:"tracked_url,omitempty"`
	RedirectCode string `json:"redirect_code,omitempty"`
}
