// Package seed loads demo campaigns, placements and click history so the
// dashboard has something to show when the service runs without a reachable
// durable store.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Seeder struct {
	campaigns *services.CampaignService
	tracking  *services.TrackingService
	clickRepo *repositories.ClickRepo
	log       *zap.Logger
}

func New(
	campaigns *services.CampaignService,
	tracking *services.TrackingService,
	clickRepo *repositories.ClickRepo,
	log *zap.Logger,
) *Seeder {
	return &Seeder{campaigns: campaigns, tracking: tracking, clickRepo: clickRepo, log: log}
}

// Demo creates two campaigns with three placements and a week of synthetic
// clicks.
func (s *Seeder) Demo(ctx context.Context) error {
	zurich := &models.Campaign{
		CampaignID:     "2025-10_ZH-FB-PAID-CHEAPEST-BASKET-DE",
		Name:           "Zürich — Cheapest Basket (DE)",
		DateStart:      "2025-10-01",
		DateEnd:        "2025-10-31",
		Geo:            "ZH",
		PrimaryChannel: "FB",
		Type:           "PAID",
		Concept:        "Cheapest Basket",
		Language:       "DE",
		Status:         models.CampaignStatusActive,
	}
	geneva := &models.Campaign{
		CampaignID:     "2025-11_GE-MULTI-ORGANIC-MIXED-ROUTE-FR",
		Name:           "Genève — Mixed Route (FR)",
		DateStart:      "2025-11-01",
		DateEnd:        "2025-11-30",
		Geo:            "GE",
		PrimaryChannel: "MULTI",
		Type:           "ORGANIC",
		Concept:        "Mixed Route",
		Language:       "FR",
		Status:         models.CampaignStatusActive,
	}
	for _, c := range []*models.Campaign{zurich, geneva} {
		if err := s.campaigns.Create(ctx, c); err != nil {
			return fmt.Errorf("seed campaign %s: %w", c.CampaignID, err)
		}
	}

	placements := []services.PlacementInput{
		{CampaignID: zurich.CampaignID, Sequence: 1, Channel: "facebook", AdType: "FEED", Medium: "paid",
			Geo: "ZH", Language: "DE", Concept: "Cheapest Basket", BaseURL: "https://landing.rappn.ch/it"},
		{CampaignID: zurich.CampaignID, Sequence: 2, Channel: "instagram", AdType: "STORY", Medium: "paid",
			Geo: "ZH", Language: "DE", Concept: "Cheapest Basket", BaseURL: "https://landing.rappn.ch/it"},
		{CampaignID: geneva.CampaignID, Sequence: 1, Channel: "flyer", AdType: "PRINT", Medium: "qr",
			Geo: "GE", Language: "FR", Concept: "Mixed Route", BaseURL: "https://landing.rappn.ch/it"},
	}

	var built []*models.Placement
	for _, in := range placements {
		p, err := s.tracking.BuildPlacementLink(ctx, in)
		if err != nil {
			return fmt.Errorf("seed placement %s/%d: %w", in.CampaignID, in.Sequence, err)
		}
		built = append(built, p)
	}

	if err := s.clickHistory(ctx, built[0], 25); err != nil {
		return err
	}
	if err := s.clickHistory(ctx, built[1], 18); err != nil {
		return err
	}

	s.log.Info("demo data seeded",
		zap.Int("campaigns", 2),
		zap.Int("placements", len(built)),
	)
	return nil
}

func (s *Seeder) clickHistory(ctx context.Context, p *models.Placement, count int) error {
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		ts := now.
			Add(-time.Duration(rand.Intn(7*24)) * time.Hour).
			Add(-time.Duration(rand.Intn(60)) * time.Minute)
		ev := &models.ClickEvent{
			ID:          uuid.NewString(),
			Timestamp:   ts,
			PlacementID: p.ID,
			CampaignID:  p.CampaignID,
			Channel:     p.Channel,
			AdType:      p.AdType,
			Medium:      p.Medium,
			UTM:         p.UTM,
			URL:         p.FinalURL,
			IP:          fmt.Sprintf("185.93.0.%d", rand.Intn(255)),
			UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)",
			Source:      models.ClickSourceRedirect,
		}
		if err := s.clickRepo.Record(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
