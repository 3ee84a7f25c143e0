package services

import (
	"context"
	"regexp"
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/attribution"
	"github.com/RappnCH/rappn-campaign-tracker/internal/events"
	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ipChars = regexp.MustCompile(`[^0-9a-fA-F:.]`)

// RequestMeta carries per-request facts (set by the HTTP layer) into the
// recorded event.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

// PageViewInput is a beacon event fired by the landing page itself,
// carrying whatever UTM fields survived in the browser URL.
type PageViewInput struct {
	UTM      models.UTMSet
	QRID     string
	PageURL  string
	Referrer string
	IP       string
	Country  string
	Region   string
	City     string
	ISP      string
}

// ClickInput is an explicit click report (placement known to the caller).
type ClickInput struct {
	PlacementID int64
	CampaignID  string
	URL         string
	Channel     string
	AdType      string
	Medium      string
	UTM         models.UTMSet
}

// ClickRecorder appends one immutable ClickEvent per tracked interaction.
// The in-memory append is synchronous and must succeed; the durable mirror
// write and the live-feed publish happen off the request path and their
// failure never fails the recording.
type ClickRecorder struct {
	clickRepo     *repositories.ClickRepo
	placementRepo *repositories.PlacementRepo
	matcher       *attribution.Matcher
	store         mirror.Mirror
	dispatcher    *mirror.Dispatcher
	publisher     events.Publisher
	log           *zap.Logger
}

func NewClickRecorder(
	clickRepo *repositories.ClickRepo,
	placementRepo *repositories.PlacementRepo,
	matcher *attribution.Matcher,
	store mirror.Mirror,
	dispatcher *mirror.Dispatcher,
	publisher events.Publisher,
	log *zap.Logger,
) *ClickRecorder {
	return &ClickRecorder{
		clickRepo:     clickRepo,
		placementRepo: placementRepo,
		matcher:       matcher,
		store:         store,
		dispatcher:    dispatcher,
		publisher:     publisher,
		log:           log,
	}
}

// RecordRedirect logs the traversal of a short code that already resolved
// to a target. Placement lookup failure downgrades the event rather than
// losing it.
func (r *ClickRecorder) RecordRedirect(ctx context.Context, target *repositories.RedirectTarget, meta RequestMeta) error {
	ev := &models.ClickEvent{
		PlacementID: target.PlacementID,
		URL:         target.FinalURL,
		Source:      models.ClickSourceRedirect,
	}

	if p, err := r.placementRepo.GetByID(ctx, target.PlacementID); err == nil {
		ev.CampaignID = p.CampaignID
		ev.Channel = p.Channel
		ev.AdType = p.AdType
		ev.Medium = p.Medium
		ev.UTM = p.UTM
	} else {
		ev.CampaignID = attribution.BucketUnknown
		r.log.Warn("redirect for unknown placement",
			zap.Int64("placement_id", target.PlacementID))
	}

	return r.record(ctx, ev, meta, events.EventClickRecorded)
}

// RecordClick logs an explicitly reported click, filling gaps from the
// stored placement when one is referenced.
func (r *ClickRecorder) RecordClick(ctx context.Context, in ClickInput, meta RequestMeta) error {
	ev := &models.ClickEvent{
		PlacementID: in.PlacementID,
		CampaignID:  in.CampaignID,
		URL:         in.URL,
		Channel:     in.Channel,
		AdType:      in.AdType,
		Medium:      in.Medium,
		UTM:         in.UTM,
		Source:      models.ClickSourceDirect,
	}

	if in.PlacementID != 0 {
		if p, err := r.placementRepo.GetByID(ctx, in.PlacementID); err == nil {
			fillFromPlacement(ev, p)
		}
	}
	if ev.CampaignID == "" {
		ev.CampaignID = attribution.BucketUnknown
	}

	return r.record(ctx, ev, meta, events.EventClickRecorded)
}

// RecordPageView logs a landing-page beacon, attributing it through the
// matcher when the UTMs do not directly identify a placement.
func (r *ClickRecorder) RecordPageView(ctx context.Context, in PageViewInput, meta RequestMeta) error {
	return r.recordBeacon(ctx, in, meta, models.ClickSourcePageView)
}

// RecordPixel logs a tracking-pixel hit (same attribution path as a page
// view, different source tag).
func (r *ClickRecorder) RecordPixel(ctx context.Context, in PageViewInput, meta RequestMeta) error {
	return r.recordBeacon(ctx, in, meta, models.ClickSourcePixel)
}

func (r *ClickRecorder) recordBeacon(ctx context.Context, in PageViewInput, meta RequestMeta, source string) error {
	referrer := in.Referrer
	if referrer == "" {
		referrer = meta.Referrer
	}
	if in.IP != "" {
		meta.IP = in.IP
	}

	resolved := r.matcher.Resolve(ctx, attribution.Input{
		UTM:      in.UTM,
		QRID:     in.QRID,
		PageURL:  in.PageURL,
		Referrer: referrer,
	})

	ev := &models.ClickEvent{
		PlacementID: resolved.PlacementID,
		CampaignID:  resolved.CampaignID,
		Channel:     resolved.Channel,
		AdType:      source,
		Medium:      resolved.Medium,
		UTM:         resolved.UTM,
		URL:         in.PageURL,
		Referrer:    referrer,
		Country:     in.Country,
		Region:      in.Region,
		City:        in.City,
		ISP:         in.ISP,
		Source:      source,
	}

	return r.record(ctx, ev, meta, events.EventPageViewRecorded)
}

func (r *ClickRecorder) record(ctx context.Context, ev *models.ClickEvent, meta RequestMeta, eventType string) error {
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()
	ev.IP = SanitizeIP(meta.IP)
	if ev.UserAgent == "" {
		ev.UserAgent = meta.UserAgent
	}
	if ev.Referrer == "" {
		ev.Referrer = meta.Referrer
	}

	if err := r.clickRepo.Record(ctx, ev); err != nil {
		return err
	}

	r.mirrorSave(*ev)
	r.publish(eventType, ev)

	r.log.Info("click recorded",
		zap.String("click_id", ev.ID),
		zap.String("campaign_id", ev.CampaignID),
		zap.Int64("placement_id", ev.PlacementID),
		zap.String("source", ev.Source),
	)
	return nil
}

func (r *ClickRecorder) mirrorSave(ev models.ClickEvent) {
	if r.dispatcher == nil || r.store == nil {
		return
	}
	r.dispatcher.Dispatch("save_click", func(ctx context.Context) error {
		return r.store.SaveClick(ctx, ev)
	})
}

func (r *ClickRecorder) publish(eventType string, ev *models.ClickEvent) {
	if r.publisher == nil {
		return
	}
	err := r.publisher.Publish(context.Background(), events.StreamClicks, events.Event{
		Type: eventType,
		Payload: map[string]any{
			"click_id":     ev.ID,
			"campaign_id":  ev.CampaignID,
			"placement_id": ev.PlacementID,
			"channel":      ev.Channel,
			"timestamp":    ev.Timestamp,
		},
	})
	if err != nil {
		r.log.Warn("failed to publish click event", zap.Error(err))
	}
}

func fillFromPlacement(ev *models.ClickEvent, p *models.Placement) {
	if ev.CampaignID == "" {
		ev.CampaignID = p.CampaignID
	}
	if ev.Channel == "" {
		ev.Channel = p.Channel
	}
	if ev.AdType == "" {
		ev.AdType = p.AdType
	}
	if ev.Medium == "" {
		ev.Medium = p.Medium
	}
	if ev.UTM == (models.UTMSet{}) {
		ev.UTM = p.UTM
	}
	if ev.URL == "" {
		ev.URL = p.FinalURL
	}
}

// SanitizeIP strips everything outside the characters valid in IPv4/IPv6
// literals; beacon payloads are attacker-controlled.
func SanitizeIP(ip string) string {
	return ipChars.ReplaceAllString(ip, "")
}
