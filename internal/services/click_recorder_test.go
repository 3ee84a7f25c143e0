package services

import (
	"context"
	"errors"
	"testing"

	"github.com/RappnCH/rappn-campaign-tracker/internal/attribution"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
)

func TestRecordRedirectFillsFromPlacement(t *testing.T) {
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

	meta := RequestMeta{IP: "185.93.0.17", UserAgent: "test-agent", Referrer: "https://m.facebook.com/"}
	if err := env.recorder.RecordRedirect(ctx, target, meta); err != nil {
		t.Fatalf("RecordRedirect: %v", err)
	}

	clicks, err := env.clickRepo.ListByPlacement(ctx, p.ID)
	if err != nil || len(clicks) != 1 {
		t.Fatalf("ListByPlacement = %v, %v", clicks, err)
	}
	ev := clicks[0]
	if ev.CampaignID != p.CampaignID || ev.Channel != "facebook" || ev.UTM != p.UTM {
		t.Errorf("event = %+v", ev)
	}
	if ev.IP != "185.93.0.17" || ev.UserAgent != "test-agent" {
		t.Errorf("request meta not carried: %+v", ev)
	}
	if env.clickRepo.CountByCampaign(ctx, p.CampaignID) != 1 {
		t.Error("event missing from campaign index")
	}
}

func TestRecordPageViewMatchesPlacement(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	p, err := env.tracking.BuildPlacementLink(ctx, demoPlacementInput("2025-10_ZH-FB-PAID-BASKET-DE", 1, "facebook"))
	if err != nil {
		t.Fatalf("BuildPlacementLink: %v", err)
	}

	in := PageViewInput{
		UTM:     p.UTM,
		PageURL: "https://landing.rappn.ch/it",
	}
	if err := env.recorder.RecordPageView(ctx, in, RequestMeta{}); err != nil {
		t.Fatalf("RecordPageView: %v", err)
	}

	if got := env.clickRepo.CountByPlacement(ctx, p.ID); got != 1 {
		t.Errorf("CountByPlacement = %d, want 1 (utm match)", got)
	}
	clicks, _ := env.clickRepo.ListByCampaign(ctx, p.CampaignID)
	if len(clicks) != 1 || clicks[0].Source != models.ClickSourcePageView {
		t.Errorf("campaign clicks = %+v", clicks)
	}
}

func TestRecordPageViewFallbackClassification(t *testing.T) {
	tests := []struct {
		name       string
		referrer   string
		campaignID string
		channel    string
		medium     string
	}{
		{"search", "https://www.google.com/search", attribution.BucketOrganicSearch, "search_engine", "organic"},
		{"direct", "", attribution.BucketDirect, "direct", "none"},
		{"internal", "https://landing.rappn.ch/de", attribution.BucketInternal, "internal", "referral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()

			in := PageViewInput{PageURL: "https://landing.rappn.ch/it", Referrer: tt.referrer}
			if err := env.recorder.RecordPageView(ctx, in, RequestMeta{}); err != nil {
				t.Fatalf("RecordPageView: %v", err)
			}

			clicks, err := env.clickRepo.ListByCampaign(ctx, tt.campaignID)
			if err != nil || len(clicks) != 1 {
				t.Fatalf("ListByCampaign(%s) = %v, %v", tt.campaignID, clicks, err)
			}
			if clicks[0].Channel != tt.channel || clicks[0].Medium != tt.medium {
				t.Errorf("event = %+v", clicks[0])
			}
		})
	}
}

func TestRecordSurvivesMirrorFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.mirror.fail(errors.New("durable store down"))

	in := ClickInput{CampaignID: "2025-10_ZH-FB-PAID-BASKET-DE", URL: "https://landing.rappn.ch/it"}
	if err := env.recorder.RecordClick(ctx, in, RequestMeta{IP: "10.0.0.1"}); err != nil {
		t.Fatalf("RecordClick must not fail on mirror errors: %v", err)
	}
	env.drain()

	if got := env.clickRepo.CountByCampaign(ctx, in.CampaignID); got != 1 {
		t.Errorf("in-memory count = %d, want 1", got)
	}
}

func TestRecordClickDefaultsUnknownCampaign(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if err := env.recorder.RecordClick(ctx, ClickInput{URL: "https://landing.rappn.ch/it"}, RequestMeta{}); err != nil {
		t.Fatalf("RecordClick: %v", err)
	}
	if got := env.clickRepo.CountByCampaign(ctx, attribution.BucketUnknown); got != 1 {
		t.Errorf("unknown-bucket count = %d, want 1", got)
	}
}

func TestSanitizeIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"185.93.0.17", "185.93.0.17"},
		{"2001:db8::1", "2001:db8::1"},
		{"185.93.0.17<script>", "185.93.0.17c"},
		{" 10.0.0.1 ", "10.0.0.1"},
	}
	for _, tt := range tests {
		if got := SanitizeIP(tt.input); got != tt.expected {
			t.Errorf("SanitizeIP(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
