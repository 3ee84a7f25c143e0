package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
)

const (
	clickPlacementPrefix = "clicks:placement_"
	clickCampaignPrefix  = "clicks:campaign_"
)

// ClickRepo is the append-only click log. An event is indexed under its
// placement key and its campaign key when those are known; nothing is ever
// overwritten or deleted.
type ClickRepo struct {
	kv store.Store
}

func NewClickRepo(kv store.Store) *ClickRepo {
	return &ClickRepo{kv: kv}
}

func (r *ClickRepo) Record(ctx context.Context, ev *models.ClickEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.PlacementID != 0 {
		r.kv.Append(fmt.Sprintf("%s%d", clickPlacementPrefix, ev.PlacementID), data)
	}
	if ev.CampaignID != "" {
		r.kv.Append(clickCampaignPrefix+ev.CampaignID, data)
	}
	return nil
}

func (r *ClickRepo) CountByPlacement(ctx context.Context, placementID int64) int {
	return r.kv.ListLen(fmt.Sprintf("%s%d", clickPlacementPrefix, placementID))
}

func (r *ClickRepo) CountByCampaign(ctx context.Context, campaignID string) int {
	return r.kv.ListLen(clickCampaignPrefix + campaignID)
}

func (r *ClickRepo) ListByPlacement(ctx context.Context, placementID int64) ([]models.ClickEvent, error) {
	return decodeClicks(r.kv.List(fmt.Sprintf("%s%d", clickPlacementPrefix, placementID)))
}

func (r *ClickRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.ClickEvent, error) {
	return decodeClicks(r.kv.List(clickCampaignPrefix + campaignID))
}

// AllByCampaign returns every campaign-indexed click log. Each event appears
// under exactly one campaign key, so iterating these logs visits each event
// once.
func (r *ClickRepo) AllByCampaign(ctx context.Context) (map[string][]models.ClickEvent, error) {
	out := make(map[string][]models.ClickEvent)
	for _, key := range r.kv.LogKeys(clickCampaignPrefix) {
		campaignID := strings.TrimPrefix(key, clickCampaignPrefix)
		events, err := decodeClicks(r.kv.List(key))
		if err != nil {
			return nil, err
		}
		out[campaignID] = events
	}
	return out, nil
}

func decodeClicks(values [][]byte) ([]models.ClickEvent, error) {
	events := make([]models.ClickEvent, 0, len(values))
	for _, data := range values {
		var ev models.ClickEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
