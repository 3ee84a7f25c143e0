package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/RappnCH/rappn-campaign-tracker/internal/naming"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
)

func TestBuildPlacementLink(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p, err := env.tracking.BuildPlacementLink(ctx, demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook"))
	if err != nil {
		t.Fatalf("BuildPlacementLink: %v", err)
	}

	if p.UTM.Source != "facebook" || p.UTM.Medium != "paid" {
		t.Errorf("UTM = %+v", p.UTM)
	}
	if p.UTM.Campaign != "2025-10_zh_cheapest-basket" {
		t.Errorf("utm_campaign = %q", p.UTM.Campaign)
	}
	if p.UTM.Content != "de_feed_01" {
		t.Errorf("utm_content = %q", p.UTM.Content)
	}
	if p.QRID != "QR-ZH-FACE-CHEAPEST-BASKET-DE-01" {
		t.Errorf("QRID = %q", p.QRID)
	}
	if p.RedirectCode == "" {
		t.Error("no redirect code bound")
	}
	if !strings.HasPrefix(p.TrackedURL, "https://track.rappn.ch/r/") {
		t.Errorf("TrackedURL = %q", p.TrackedURL)
	}

	// The final URL round-trips the exact quadruple and qr id.
	u, err := url.Parse(p.FinalURL)
	if err != nil {
		t.Fatalf("final url: %v", err)
	}
	q := u.Query()
	if q.Get("utm_source") != p.UTM.Source || q.Get("utm_campaign") != p.UTM.Campaign ||
		q.Get("utm_medium") != p.UTM.Medium || q.Get("utm_content") != p.UTM.Content ||
		q.Get("qr") != p.QRID {
		t.Errorf("final url query mismatch: %v", q)
	}
}

func TestBuildPlacementLinkIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	in := demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook")

	first, err := env.tracking.BuildPlacementLink(ctx, in)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := env.tracking.BuildPlacementLink(ctx, in)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if second.ID != first.ID || second.RedirectCode != first.RedirectCode {
		t.Errorf("rebuild minted a new placement/code: %+v vs %+v", first, second)
	}

	placements, _ := env.tracking.Placements(ctx, in.CampaignID)
	if len(placements) != 1 {
		t.Errorf("placements = %d, want 1", len(placements))
	}
}

func TestBuildPlacementLinkRejectsBadCampaignID(t *testing.T) {
	env := newTestEnv()

	in := demoPlacementInput("NOT-A-DATE_ZH", 1, "facebook")
	if _, err := env.tracking.BuildPlacementLink(context.Background(), in); !errors.Is(err, ErrBadCampaignID) {
		t.Errorf("error = %v, want ErrBadCampaignID", err)
	}
}

func TestBuildPlacementLinkRejectsMissingSegments(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	blank := []struct {
		name   string
		mutate func(*PlacementInput)
	}{
		{"medium", func(in *PlacementInput) { in.Medium = "" }},
		{"geo", func(in *PlacementInput) { in.Geo = "" }},
		{"language", func(in *PlacementInput) { in.Language = "" }},
		{"concept", func(in *PlacementInput) { in.Concept = "" }},
	}

	for _, tt := range blank {
		t.Run("missing "+tt.name, func(t *testing.T) {
			in := demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook")
			tt.mutate(&in)
			if _, err := env.tracking.BuildPlacementLink(ctx, in); !errors.Is(err, naming.ErrEmptyField) {
				t.Errorf("error = %v, want ErrEmptyField", err)
			}
		})
	}

	// Nothing was persisted for the rejected builds.
	placements, err := env.tracking.Placements(ctx, "2025-10_ZH-FB-PAID-BASKET-DE")
	if err != nil || len(placements) != 0 {
		t.Errorf("placements after rejected builds = %v, %v", placements, err)
	}
}

func TestBuildPlacementLinkRejectsBadBaseURL(t *testing.T) {
	env := newTestEnv()

	in := demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook")
	in.BaseURL = "not a url"
	if _, err := env.tracking.BuildPlacementLink(context.Background(), in); !errors.Is(err, naming.ErrInvalidURL) {
		t.Errorf("error = %v, want ErrInvalidURL", err)
	}
}

func TestBuildPlacementLinkRejectsUTMCollision(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Same channel/adtype/seq parameters under two different campaigns with
	// the same month/geo/concept produce the same utm tuple.
	a := demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook")
	b := demoPlacementInput("2025-10_ZH-IG-PAID-BASKET-DE", 1, "facebook")

	if _, err := env.tracking.BuildPlacementLink(ctx, a); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := env.tracking.BuildPlacementLink(ctx, b); !errors.Is(err, ErrUTMCollision) {
		t.Errorf("error = %v, want ErrUTMCollision", err)
	}
}

func TestResolveRedirectAfterBuild(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p, err := env.tracking.BuildPlacementLink(ctx, demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook"))
	if err != nil {
		t.Fatalf("BuildPlacementLink: %v", err)
	}

	target, err := env.tracking.ResolveRedirect(ctx, p.RedirectCode)
	if err != nil {
		t.Fatalf("ResolveRedirect: %v", err)
	}
	if target.PlacementID != p.ID || target.FinalURL != p.FinalURL {
		t.Errorf("ResolveRedirect = %+v", target)
	}

	if _, err := env.tracking.ResolveRedirect(ctx, "never-issued"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("unknown code error = %v, want ErrNotFound", err)
	}
}

func TestPlacementLabel(t *testing.T) {
	env := newTestEnv()
	p, err := env.tracking.BuildPlacementLink(context.Background(), demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 3, "Facebook"))
	if err != nil {
		t.Fatalf("BuildPlacementLink: %v", err)
	}
	if got := PlacementLabel(p); got != "facebook_feed_3" {
		t.Errorf("PlacementLabel = %q", got)
	}
}
