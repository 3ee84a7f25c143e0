package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
)

const campaignKeyPrefix = "campaign:"

type CampaignRepo struct {
	kv store.Store
}

func NewCampaignRepo(kv store.Store) *CampaignRepo {
	return &CampaignRepo{kv: kv}
}

func campaignKey(campaignID string) string {
	return campaignKeyPrefix + campaignID
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if !r.kv.PutIfAbsent(campaignKey(c.CampaignID), data) {
		return ErrConflict
	}
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, campaignID string) (*models.Campaign, error) {
	data, ok := r.kv.Get(campaignKey(campaignID))
	if !ok {
		return nil, ErrNotFound
	}
	var c models.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all campaigns, newest start date first.
func (r *CampaignRepo) List(ctx context.Context) ([]models.Campaign, error) {
	values := r.kv.ScanPrefix(campaignKeyPrefix)
	campaigns := make([]models.Campaign, 0, len(values))
	for _, data := range values {
		var c models.Campaign
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].DateStart > campaigns[j].DateStart
	})
	return campaigns, nil
}

// Update persists a modified campaign. The campaign_id is the identity and
// cannot change.
func (r *CampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	if _, ok := r.kv.Get(campaignKey(c.CampaignID)); !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	r.kv.Put(campaignKey(c.CampaignID), data)
	return nil
}

// Restore inserts a campaign loaded from the durable mirror, keeping its
// original timestamps. Existing in-memory records win.
func (r *CampaignRepo) Restore(ctx context.Context, c *models.Campaign) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	r.kv.PutIfAbsent(campaignKey(c.CampaignID), data)
	return nil
}
