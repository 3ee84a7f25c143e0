// Package mirror is the durable write-behind copy of the in-memory store.
// The in-memory store answers live traffic; the mirror exists for durability
// and offline analytics. Losing a mirror write is preferable to rejecting a
// live click, so mirror failures are logged and never surfaced to callers.
package mirror

import (
	"context"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
)

// Mirror is an opaque durable tabular append target. The dashboard
// originally mirrored into a spreadsheet; the production deployment uses
// Postgres. Implementations must tolerate repeated saves of the same
// campaign or placement (upsert semantics); clicks are append-only.
type Mirror interface {
	SaveCampaign(ctx context.Context, c models.Campaign) error
	SavePlacement(ctx context.Context, p models.Placement) error
	SaveClick(ctx context.Context, ev models.ClickEvent) error

	LoadCampaigns(ctx context.Context) ([]models.Campaign, error)
	LoadPlacements(ctx context.Context) ([]models.Placement, error)

	Ping(ctx context.Context) error
}
