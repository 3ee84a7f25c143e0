package services

import (
	"context"
	"sync"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/attribution"
	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
	"go.uber.org/zap"
)

// fakeMirror records saves and can be told to fail, standing in for the
// durable store in tests.
type fakeMirror struct {
	mu         sync.Mutex
	campaigns  []models.Campaign
	placements []models.Placement
	clicks     []models.ClickEvent
	err        error
}

func (f *fakeMirror) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeMirror) SaveCampaign(ctx context.Context, c models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.campaigns = append(f.campaigns, c)
	return nil
}

func (f *fakeMirror) SavePlacement(ctx context.Context, p models.Placement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.placements = append(f.placements, p)
	return nil
}

func (f *fakeMirror) SaveClick(ctx context.Context, ev models.ClickEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, ev)
	return nil
}

func (f *fakeMirror) LoadCampaigns(ctx context.Context) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Campaign(nil), f.campaigns...), f.err
}

func (f *fakeMirror) LoadPlacements(ctx context.Context) ([]models.Placement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Placement(nil), f.placements...), f.err
}

func (f *fakeMirror) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

type testEnv struct {
	campaignRepo  *repositories.CampaignRepo
	placementRepo *repositories.PlacementRepo
	clickRepo     *repositories.ClickRepo
	redirectRepo  *repositories.RedirectRepo
	mirror        *fakeMirror
	dispatcher    *mirror.Dispatcher
	campaigns     *CampaignService
	tracking      *TrackingService
	recorder      *ClickRecorder
	analytics     *AnalyticsService
}

func newTestEnv() *testEnv {
	log := zap.NewNop()
	kv := store.NewMemory()
	fm := &fakeMirror{}
	d := mirror.NewDispatcher(mirror.DispatcherConfig{
		QueueSize:   64,
		Workers:     1,
		CallTimeout: time.Second,
		MaxRetries:  0,
		Backoff:     time.Millisecond,
	}, log)

	env := &testEnv{
		campaignRepo:  repositories.NewCampaignRepo(kv),
		placementRepo: repositories.NewPlacementRepo(kv),
		clickRepo:     repositories.NewClickRepo(kv),
		redirectRepo:  repositories.NewRedirectRepo(kv),
		mirror:        fm,
		dispatcher:    d,
	}
	env.campaigns = NewCampaignService(env.campaignRepo, env.placementRepo, fm, d, log)
	env.tracking = NewTrackingService(env.placementRepo, env.redirectRepo, fm, d, "https://track.rappn.ch", log)
	matcher := attribution.NewMatcher(env.placementRepo, log)
	env.recorder = NewClickRecorder(env.clickRepo, env.placementRepo, matcher, fm, d, nil, log)
	env.analytics = NewAnalyticsService(env.campaignRepo, env.placementRepo, env.clickRepo, log)
	return env
}

func (e *testEnv) drain() {
	e.dispatcher.Close()
}

func demoCampaign(id string) *models.Campaign {
	return &models.Campaign{
		CampaignID:     id,
		Name:           "Test Campaign",
		DateStart:      "2025-10-01",
		DateEnd:        "2025-10-31",
		Geo:            "ZH",
		PrimaryChannel: "FB",
		Type:           "PAID",
		Concept:        "Cheapest Basket",
		Language:       "DE",
		Status:         models.CampaignStatusActive,
	}
}

func demoPlacementInput(campaignID string, seq int, channel string) PlacementInput {
	return PlacementInput{
		CampaignID: campaignID,
		Sequence:   seq,
		Channel:    channel,
		AdType:     "FEED",
		BaseURL:    "https://landing.rappn.ch/it",
		Medium:     "paid",
		Geo:        "ZH",
		Language:   "DE",
		Concept:    "Cheapest Basket",
	}
}
