package services

import (
	"context"
	"errors"
	"testing"

	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
)

func TestCreateCampaignConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.campaigns.Create(ctx, demoCampaign("2025-10_ZH-FB-PAID-BASKET-DE")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := env.campaigns.Create(ctx, demoCampaign("2025-10_ZH-FB-PAID-BASKET-DE"))
	if !errors.Is(err, repositories.ErrConflict) {
		t.Errorf("duplicate Create error = %v, want ErrConflict", err)
	}
}

func TestCreateCampaignDefaultsToDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	c := demoCampaign("2025-10_ZH-FB-PAID-BASKET-DE")
	c.Status = ""
	if err := env.campaigns.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := env.campaigns.GetByID(ctx, c.CampaignID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.CampaignStatusDraft {
		t.Errorf("Status = %q, want draft", got.Status)
	}
}

func TestSoftDeleteIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := "2025-10_ZH-FB-PAID-BASKET-DE"

	if err := env.campaigns.Create(ctx, demoCampaign(id)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.tracking.BuildPlacementLink(ctx, demoPlacementInput(id, 1, "facebook")); err != nil {
		t.Fatalf("BuildPlacementLink: %v", err)
	}

	for i := 0; i < 2; i++ {
		c, err := env.campaigns.SoftDelete(ctx, id)
		if err != nil {
			t.Fatalf("SoftDelete #%d: %v", i+1, err)
		}
		if c.Status != models.CampaignStatusInactive {
			t.Errorf("SoftDelete #%d status = %q, want inactive", i+1, c.Status)
		}
	}

	// Placements and history stay queryable after deletion.
	placements, err := env.tracking.Placements(ctx, id)
	if err != nil || len(placements) != 1 {
		t.Errorf("Placements after delete = %v, %v", placements, err)
	}
	if _, err := env.campaigns.GetByID(ctx, id); err != nil {
		t.Errorf("GetByID after delete: %v", err)
	}
}

func TestToggleStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := "2025-10_ZH-FB-PAID-BASKET-DE"

	if err := env.campaigns.Create(ctx, demoCampaign(id)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	c, err := env.campaigns.ToggleStatus(ctx, id)
	if err != nil || c.Status != models.CampaignStatusInactive {
		t.Errorf("first toggle = %q, %v", c.Status, err)
	}
	c, err = env.campaigns.ToggleStatus(ctx, id)
	if err != nil || c.Status != models.CampaignStatusActive {
		t.Errorf("second toggle = %q, %v", c.Status, err)
	}
}

func TestReactivateSetsDatesAndStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := "2025-10_ZH-FB-PAID-BASKET-DE"

	if err := env.campaigns.Create(ctx, demoCampaign(id)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.campaigns.SoftDelete(ctx, id); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	c, err := env.campaigns.Reactivate(ctx, id, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if c.Status != models.CampaignStatusActive || c.DateStart != "2026-01-01" || c.DateEnd != "2026-01-31" {
		t.Errorf("Reactivate = %+v", c)
	}

	if _, err := env.campaigns.Reactivate(ctx, id, "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Reactivate without dates error = %v, want ErrValidation", err)
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := "2025-10_ZH-FB-PAID-BASKET-DE"

	if err := env.campaigns.Create(ctx, demoCampaign(id)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Renamed"
	budget := 2500.0
	c, err := env.campaigns.Update(ctx, id, CampaignUpdate{Name: &name, Budget: &budget})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.CampaignID != id {
		t.Errorf("CampaignID mutated to %q", c.CampaignID)
	}
	if c.Name != "Renamed" || c.Budget != 2500.0 {
		t.Errorf("updated fields = %q, %v", c.Name, c.Budget)
	}
	// Untouched fields survive the partial update.
	if c.DateStart != "2025-10-01" || c.Status != models.CampaignStatusActive {
		t.Errorf("unset fields mutated: %+v", c)
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := "2025-10_ZH-FB-PAID-BASKET-DE"

	if err := env.campaigns.Create(ctx, demoCampaign(id)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := "archived"
	if _, err := env.campaigns.Update(ctx, id, CampaignUpdate{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("Update error = %v, want ErrValidation", err)
	}
	// The rejected update must not be partially applied.
	c, err := env.campaigns.GetByID(ctx, id)
	if err != nil || c.Status != models.CampaignStatusActive {
		t.Errorf("status after rejected update = %q, %v", c.Status, err)
	}
}

func TestCampaignMirroredOnCreate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.campaigns.Create(ctx, demoCampaign("2025-10_ZH-FB-PAID-BASKET-DE")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	env.drain()

	env.mirror.mu.Lock()
	defer env.mirror.mu.Unlock()
	if len(env.mirror.campaigns) != 1 {
		t.Errorf("mirrored campaigns = %d, want 1", len(env.mirror.campaigns))
	}
}
