package services

import (
	"context"
	"errors"

	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"go.uber.org/zap"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("durable store unavailable")
)

type CampaignService struct {
	campaignRepo  *repositories.CampaignRepo
	placementRepo *repositories.PlacementRepo
	store         mirror.Mirror
	dispatcher    *mirror.Dispatcher
	log           *zap.Logger
}

func NewCampaignService(
	campaignRepo *repositories.CampaignRepo,
	placementRepo *repositories.PlacementRepo,
	store mirror.Mirror,
	dispatcher *mirror.Dispatcher,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo:  campaignRepo,
		placementRepo: placementRepo,
		store:         store,
		dispatcher:    dispatcher,
		log:           log,
	}
}

func (s *CampaignService) Create(ctx context.Context, c *models.Campaign) error {
	if c.Status != "" && !models.IsValidCampaignStatus(c.Status) {
		return ErrValidation
	}

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return err
	}
	s.mirrorSave(*c)

	s.log.Info("campaign created",
		zap.String("campaign_id", c.CampaignID),
		zap.String("status", c.Status),
	)
	return nil
}

func (s *CampaignService) GetByID(ctx context.Context, campaignID string) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, campaignID)
}

func (s *CampaignService) List(ctx context.Context) ([]models.Campaign, error) {
	return s.campaignRepo.List(ctx)
}

// CampaignUpdate is a partial update: nil fields are left untouched. There
// is deliberately no campaign_id field, the id is the identity.
type CampaignUpdate struct {
	Name        *string
	DateStart   *string
	DateEnd     *string
	Status      *string
	Budget      *float64
	Description *string
}

// Update applies the set fields of a validated partial update.
func (s *CampaignService) Update(ctx context.Context, campaignID string, upd CampaignUpdate) (*models.Campaign, error) {
	if upd.Status != nil && !models.IsValidCampaignStatus(*upd.Status) {
		return nil, ErrValidation
	}

	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.DateStart != nil {
		c.DateStart = *upd.DateStart
	}
	if upd.DateEnd != nil {
		c.DateEnd = *upd.DateEnd
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Budget != nil {
		c.Budget = *upd.Budget
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}

	if err := s.campaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.mirrorSave(*c)
	return c, nil
}

// SoftDelete marks a campaign inactive instead of removing it, keeping its
// placements and click history queryable. Deleting an already-inactive
// campaign is a no-op that still succeeds.
func (s *CampaignService) SoftDelete(ctx context.Context, campaignID string) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignStatusInactive {
		c.Status = models.CampaignStatusInactive
		if err := s.campaignRepo.Update(ctx, c); err != nil {
			return nil, err
		}
		s.mirrorSave(*c)
	}

	s.log.Info("campaign soft-deleted", zap.String("campaign_id", campaignID))
	return c, nil
}

// ToggleStatus flips active <-> inactive; draft campaigns go active.
func (s *CampaignService) ToggleStatus(ctx context.Context, campaignID string) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if c.Status == models.CampaignStatusActive {
		c.Status = models.CampaignStatusInactive
	} else {
		c.Status = models.CampaignStatusActive
	}

	if err := s.campaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.mirrorSave(*c)
	return c, nil
}

// Reactivate puts an inactive campaign back into rotation with new dates.
func (s *CampaignService) Reactivate(ctx context.Context, campaignID, dateStart, dateEnd string) (*models.Campaign, error) {
	if dateStart == "" {
		return nil, ErrValidation
	}
	c, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	c.DateStart = dateStart
	c.DateEnd = dateEnd
	c.Status = models.CampaignStatusActive

	if err := s.campaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.mirrorSave(*c)

	s.log.Info("campaign reactivated",
		zap.String("campaign_id", campaignID),
		zap.String("date_start", dateStart),
	)
	return c, nil
}

func (s *CampaignService) DeletePlacements(ctx context.Context, campaignID string) error {
	return s.placementRepo.DeleteByCampaign(ctx, campaignID)
}

func (s *CampaignService) mirrorSave(c models.Campaign) {
	if s.dispatcher == nil || s.store == nil {
		return
	}
	s.dispatcher.Dispatch("save_campaign", func(ctx context.Context) error {
		return s.store.SaveCampaign(ctx, c)
	})
}
