package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/naming"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"go.uber.org/zap"
)

var (
	ErrBadCampaignID = errors.New("campaign_id must start with YYYY-MM")
	ErrUTMCollision  = errors.New("another placement already uses this utm tuple")
)

// PlacementInput are the validated build-placement-link parameters.
type PlacementInput struct {
	CampaignID string
	Sequence   int
	Channel    string
	AdType     string
	BaseURL    string
	Medium     string
	Geo        string
	Language   string
	Concept    string
}

type TrackingService struct {
	placementRepo *repositories.PlacementRepo
	redirectRepo  *repositories.RedirectRepo
	store         mirror.Mirror
	dispatcher    *mirror.Dispatcher
	trackingBase  string
	log           *zap.Logger
}

func NewTrackingService(
	placementRepo *repositories.PlacementRepo,
	redirectRepo *repositories.RedirectRepo,
	store mirror.Mirror,
	dispatcher *mirror.Dispatcher,
	trackingBase string,
	log *zap.Logger,
) *TrackingService {
	return &TrackingService{
		placementRepo: placementRepo,
		redirectRepo:  redirectRepo,
		store:         store,
		dispatcher:    dispatcher,
		trackingBase:  strings.TrimRight(trackingBase, "/"),
		log:           log,
	}
}

// BuildPlacementLink derives the UTM quadruple, QR id, final URL and short
// tracked URL for a placement, persisting the placement with exactly one
// bound redirect code. The operation is idempotent by
// (campaign_id, placement_id_seq): rebuilding an existing placement returns
// the stored record and its original code instead of minting another.
func (s *TrackingService) BuildPlacementLink(ctx context.Context, in PlacementInput) (*models.Placement, error) {
	yearMonth := naming.YearMonthOf(in.CampaignID)
	if yearMonth == "" {
		return nil, ErrBadCampaignID
	}
	dateStart := yearMonth + "-01"

	utm, err := naming.BuildUTMs(in.Channel, in.Medium, dateStart, in.Geo, in.Concept, in.Language, in.AdType, in.Sequence)
	if err != nil {
		return nil, err
	}
	qrID := naming.BuildQRID(in.Channel, in.Geo, in.Concept, in.Language, in.Sequence)

	finalURL, err := naming.BuildFinalURL(in.BaseURL, utm, qrID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.placementRepo.GetBySequence(ctx, in.CampaignID, in.Sequence); err == nil {
		return existing, nil
	}

	if err := s.checkUTMUnique(ctx, in.CampaignID, in.Sequence, utm); err != nil {
		return nil, err
	}

	p := &models.Placement{
		CampaignID:  in.CampaignID,
		SequenceNum: in.Sequence,
		Channel:     in.Channel,
		AdType:      in.AdType,
		Medium:      in.Medium,
		BaseURL:     in.BaseURL,
		UTM:         utm,
		QRID:        qrID,
		FinalURL:    finalURL,
	}
	if err := s.placementRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Lost a race with an identical build; reuse the winner.
			return s.placementRepo.GetBySequence(ctx, in.CampaignID, in.Sequence)
		}
		return nil, err
	}

	code, err := s.redirectRepo.Create(ctx, p.ID, finalURL)
	if err != nil {
		// Placement stays usable through its final URL even without a
		// short code.
		s.log.Warn("failed to mint redirect code",
			zap.String("campaign_id", p.CampaignID),
			zap.Int("seq", p.SequenceNum),
			zap.Error(err),
		)
	} else {
		p.RedirectCode = code
		p.TrackedURL = fmt.Sprintf("%s/r/%s", s.trackingBase, code)
		if err := s.placementRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	s.mirrorSave(*p)

	s.log.Info("placement link built",
		zap.String("campaign_id", p.CampaignID),
		zap.Int("seq", p.SequenceNum),
		zap.String("redirect_code", p.RedirectCode),
	)
	return p, nil
}

func (s *TrackingService) Placements(ctx context.Context, campaignID string) ([]models.Placement, error) {
	return s.placementRepo.ListByCampaign(ctx, campaignID)
}

// ResolveRedirect maps a short code back to its target. Pure lookup: click
// recording is the caller's concern.
func (s *TrackingService) ResolveRedirect(ctx context.Context, code string) (*repositories.RedirectTarget, error) {
	return s.redirectRepo.Resolve(ctx, code)
}

// PlacementLabel is the human-readable placement handle used in API
// responses: {channel}_{adtype}_{seq}, lowercased.
func PlacementLabel(p *models.Placement) string {
	return strings.ToLower(fmt.Sprintf("%s_%s_%d", p.Channel, p.AdType, p.SequenceNum))
}

// checkUTMUnique rejects a new placement whose (source, campaign, content)
// tuple collides with a different existing placement. Without this the
// attribution matcher could not pick a single owner for an inbound event.
func (s *TrackingService) checkUTMUnique(ctx context.Context, campaignID string, seq int, utm models.UTMSet) error {
	placements, err := s.placementRepo.All(ctx)
	if err != nil {
		return err
	}
	for i := range placements {
		p := &placements[i]
		if p.CampaignID == campaignID && p.SequenceNum == seq {
			continue
		}
		if p.UTM.Source == utm.Source && p.UTM.Campaign == utm.Campaign && p.UTM.Content == utm.Content {
			return ErrUTMCollision
		}
	}
	return nil
}

func (s *TrackingService) mirrorSave(p models.Placement) {
	if s.dispatcher == nil || s.store == nil {
		return
	}
	s.dispatcher.Dispatch("save_placement", func(ctx context.Context) error {
		return s.store.SavePlacement(ctx, p)
	})
}
