package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
)

const placementKeyPrefix = "placement:"

type PlacementRepo struct {
	kv     store.Store
	nextID atomic.Int64
}

func NewPlacementRepo(kv store.Store) *PlacementRepo {
	r := &PlacementRepo{kv: kv}
	r.nextID.Store(time.Now().UnixMilli())
	return r
}

func placementKey(campaignID string, seq int) string {
	return fmt.Sprintf("%s%s:%04d", placementKeyPrefix, campaignID, seq)
}

// Create inserts a placement and assigns its numeric ID. A placement is
// unique by (campaign_id, placement_id_seq); inserting a duplicate returns
// ErrConflict so callers can decide between idempotent reuse and rejection.
func (r *PlacementRepo) Create(ctx context.Context, p *models.Placement) error {
	p.ID = r.nextID.Add(1)
	p.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if !r.kv.PutIfAbsent(placementKey(p.CampaignID, p.SequenceNum), data) {
		return ErrConflict
	}
	return nil
}

// Update rewrites an existing placement record (tracked URL and redirect
// code are attached after the code is minted).
func (r *PlacementRepo) Update(ctx context.Context, p *models.Placement) error {
	key := placementKey(p.CampaignID, p.SequenceNum)
	if _, ok := r.kv.Get(key); !ok {
		return ErrNotFound
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.kv.Put(key, data)
	return nil
}

func (r *PlacementRepo) GetBySequence(ctx context.Context, campaignID string, seq int) (*models.Placement, error) {
	data, ok := r.kv.Get(placementKey(campaignID, seq))
	if !ok {
		return nil, ErrNotFound
	}
	var p models.Placement
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlacementRepo) GetByID(ctx context.Context, id int64) (*models.Placement, error) {
	placements, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range placements {
		if placements[i].ID == id {
			return &placements[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *PlacementRepo) ListByCampaign(ctx context.Context, campaignID string) ([]models.Placement, error) {
	return r.decode(r.kv.ScanPrefix(placementKeyPrefix + campaignID + ":"))
}

// All returns every placement ordered by campaign and sequence. The
// attribution matcher scans this; volumes are small (placements are created
// by hand in a wizard).
func (r *PlacementRepo) All(ctx context.Context) ([]models.Placement, error) {
	return r.decode(r.kv.ScanPrefix(placementKeyPrefix))
}

func (r *PlacementRepo) DeleteByCampaign(ctx context.Context, campaignID string) error {
	placements, err := r.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	for _, p := range placements {
		r.kv.Delete(placementKey(p.CampaignID, p.SequenceNum))
	}
	return nil
}

// Restore inserts a placement loaded from the durable mirror, keeping its
// assigned ID, and advances the ID counter past it.
func (r *PlacementRepo) Restore(ctx context.Context, p *models.Placement) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.kv.PutIfAbsent(placementKey(p.CampaignID, p.SequenceNum), data)
	for {
		cur := r.nextID.Load()
		if p.ID < cur || r.nextID.CompareAndSwap(cur, p.ID+1) {
			return nil
		}
	}
}

func (r *PlacementRepo) decode(values [][]byte) ([]models.Placement, error) {
	placements := make([]models.Placement, 0, len(values))
	for _, data := range values {
		var p models.Placement
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, nil
}
