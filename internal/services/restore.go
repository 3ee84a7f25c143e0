package services

import (
	"context"

	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"go.uber.org/zap"
)

// RestoreFromMirror warms the in-memory store from the durable mirror after
// a cold start, re-registering each placement's redirect code so printed
// short links keep resolving. Records already in memory win.
func RestoreFromMirror(
	ctx context.Context,
	m mirror.Mirror,
	campaignRepo *repositories.CampaignRepo,
	placementRepo *repositories.PlacementRepo,
	redirectRepo *repositories.RedirectRepo,
	log *zap.Logger,
) error {
	campaigns, err := m.LoadCampaigns(ctx)
	if err != nil {
		return err
	}
	for i := range campaigns {
		if err := campaignRepo.Restore(ctx, &campaigns[i]); err != nil {
			return err
		}
	}

	placements, err := m.LoadPlacements(ctx)
	if err != nil {
		return err
	}
	for i := range placements {
		p := &placements[i]
		if err := placementRepo.Restore(ctx, p); err != nil {
			return err
		}
		if p.RedirectCode != "" && p.FinalURL != "" {
			if err := redirectRepo.Restore(ctx, p.RedirectCode, repositories.RedirectTarget{
				PlacementID: p.ID,
				FinalURL:    p.FinalURL,
			}); err != nil {
				return err
			}
		}
	}

	log.Info("state restored from mirror",
		zap.Int("campaigns", len(campaigns)),
		zap.Int("placements", len(placements)),
	)
	return nil
}
