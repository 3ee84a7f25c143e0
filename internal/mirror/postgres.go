package mirror

import (
	"context"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres mirrors the tracker state into three tables (see migrations/).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (m *Postgres) SaveCampaign(ctx context.Context, c models.Campaign) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO mirror_campaigns (campaign_id, name, date_start, date_end, geo, primary_channel,
		       type, concept, language, status, budget, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (campaign_id) DO UPDATE SET
		       name = EXCLUDED.name, date_start = EXCLUDED.date_start, date_end = EXCLUDED.date_end,
		       status = EXCLUDED.status, budget = EXCLUDED.budget,
		       description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
	`, c.CampaignID, c.Name, c.DateStart, c.DateEnd, c.Geo, c.PrimaryChannel,
		c.Type, c.Concept, c.Language, c.Status, c.Budget, c.Description, c.CreatedAt, c.UpdatedAt)
	return err
}

func (m *Postgres) SavePlacement(ctx context.Context, p models.Placement) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO mirror_placements (id, campaign_id, placement_id_seq, channel, ad_type, medium,
		       base_url, utm_source, utm_medium, utm_campaign, utm_content, qr_id,
		       final_url, tracked_url, redirect_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (campaign_id, placement_id_seq) DO UPDATE SET
		       tracked_url = EXCLUDED.tracked_url, redirect_code = EXCLUDED.redirect_code
	`, p.ID, p.CampaignID, p.SequenceNum, p.Channel, p.AdType, p.Medium,
		p.BaseURL, p.UTM.Source, p.UTM.Medium, p.UTM.Campaign, p.UTM.Content, p.QRID,
		p.FinalURL, p.TrackedURL, p.RedirectCode, p.CreatedAt)
	return err
}

func (m *Postgres) SaveClick(ctx context.Context, ev models.ClickEvent) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO mirror_clicks (click_id, ts, placement_id, campaign_id, channel, ad_type, medium,
		       utm_source, utm_medium, utm_campaign, utm_content, url, ip, user_agent, referrer,
		       country, region, city, isp, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (click_id) DO NOTHING
	`, ev.ID, ev.Timestamp, ev.PlacementID, ev.CampaignID, ev.Channel, ev.AdType, ev.Medium,
		ev.UTM.Source, ev.UTM.Medium, ev.UTM.Campaign, ev.UTM.Content, ev.URL, ev.IP, ev.UserAgent, ev.Referrer,
		ev.Country, ev.Region, ev.City, ev.ISP, ev.Source)
	return err
}

func (m *Postgres) LoadCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT campaign_id, name, date_start, date_end, geo, primary_channel,
		       type, concept, language, status, budget, description, created_at, updated_at
		FROM mirror_campaigns
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.CampaignID, &c.Name, &c.DateStart, &c.DateEnd, &c.Geo, &c.PrimaryChannel,
			&c.Type, &c.Concept, &c.Language, &c.Status, &c.Budget, &c.Description,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (m *Postgres) LoadPlacements(ctx context.Context) ([]models.Placement, error) {
	rows, err := m.pool.Query(ctx, `
		SELECT id, campaign_id, placement_id_seq, channel, ad_type, medium,
		       base_url, utm_source, utm_medium, utm_campaign, utm_content, qr_id,
		       final_url, tracked_url, redirect_code, created_at
		FROM mirror_placements
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []models.Placement
	for rows.Next() {
		var p models.Placement
		if err := rows.Scan(&p.ID, &p.CampaignID, &p.SequenceNum, &p.Channel, &p.AdType, &p.Medium,
			&p.BaseURL, &p.UTM.Source, &p.UTM.Medium, &p.UTM.Campaign, &p.UTM.Content, &p.QRID,
			&p.FinalURL, &p.TrackedURL, &p.RedirectCode, &p.CreatedAt); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

func (m *Postgres) Ping(ctx context.Context) error {
	return m.pool.Ping(ctx)
}
