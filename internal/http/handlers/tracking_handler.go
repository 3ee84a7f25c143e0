package handlers

import (
	"errors"

	"github.com/RappnCH/rappn-campaign-tracker/internal/http/dto"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/naming"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// 1x1 transparent GIF served by the tracking pixel.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TrackingHandler struct {
	trackingService *services.TrackingService
	campaignService *services.CampaignService
	recorder        *services.ClickRecorder
	log             *zap.Logger
}

func NewTrackingHandler(
	trackingService *services.TrackingService,
	campaignService *services.CampaignService,
	recorder *services.ClickRecorder,
	log *zap.Logger,
) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		campaignService: campaignService,
		recorder:        recorder,
		log:             log,
	}
}

func (h *TrackingHandler) BuildPlacementLink(c *fiber.Ctx) error {
	var req dto.BuildPlacementLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	missing := missingFields(map[string]string{
		"campaign_id": req.CampaignID,
		"channel":     req.Channel,
		"ad_type":     req.AdType,
		"base_url":    req.BaseURL,
		"medium":      req.Medium,
		"geo":         req.Geo,
		"language":    req.Language,
		"concept":     req.Concept,
	})
	if missing != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: missing + " required"})
	}
	if req.PlacementIDSeq <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "placement_id_seq must be positive"})
	}

	p, err := h.trackingService.BuildPlacementLink(c.Context(), services.PlacementInput{
		CampaignID: req.CampaignID,
		Sequence:   req.PlacementIDSeq,
		Channel:    req.Channel,
		AdType:     req.AdType,
		BaseURL:    req.BaseURL,
		Medium:     req.Medium,
		Geo:        req.Geo,
		Language:   req.Language,
		Concept:    req.Concept,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadCampaignID),
			errors.Is(err, naming.ErrInvalidURL),
			errors.Is(err, naming.ErrEmptyField),
			errors.Is(err, naming.ErrInvalidDate):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrUTMCollision):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("build placement link failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.PlacementLinkResponse{
		PlacementID:  p.ID,
		CampaignID:   p.CampaignID,
		Label:        services.PlacementLabel(p),
		UTMSource:    p.UTM.Source,
		UTMMedium:    p.UTM.Medium,
		UTMCampaign:  p.UTM.Campaign,
		UTMContent:   p.UTM.Content,
		QRID:         p.QRID,
		FinalURL:     p.FinalURL,
		TrackedURL:   p.TrackedURL,
		RedirectCode: p.RedirectCode,
	}})
}

func (h *TrackingHandler) ListPlacements(c *fiber.Ctx) error {
	placements, err := h.trackingService.Placements(c.Context(), c.Params("campaign_id"))
	if err != nil {
		h.log.Error("list placements failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: placements})
}

func (h *TrackingHandler) DeletePlacements(c *fiber.Ctx) error {
	if err := h.campaignService.DeletePlacements(c.Context(), c.Params("campaign_id")); err != nil {
		h.log.Error("delete placements failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TrackingHandler) RecordClick(c *fiber.Ctx) error {
	var req dto.RecordClickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	in := services.ClickInput{
		PlacementID: req.PlacementID,
		CampaignID:  req.CampaignID,
		URL:         req.URL,
		Channel:     req.Channel,
		AdType:      req.AdType,
		Medium:      req.Medium,
		UTM: models.UTMSet{
			Source:   req.UTMSource,
			Medium:   req.UTMMedium,
			Campaign: req.UTMCampaign,
			Content:  req.UTMContent,
		},
	}
	if err := h.recorder.RecordClick(c.Context(), in, requestMeta(c)); err != nil {
		h.log.Error("record click failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true})
}

func (h *TrackingHandler) RecordPageView(c *fiber.Ctx) error {
	var req dto.PageViewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	if err := h.recorder.RecordPageView(c.Context(), pageViewInput(req), requestMeta(c)); err != nil {
		h.log.Error("record page view failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true})
}

// Pixel serves a 1x1 GIF and records the hit from query-string UTMs. It
// always answers 200 with the image; recording failures only get logged so
// a broken beacon never breaks the page embedding it.
func (h *TrackingHandler) Pixel(c *fiber.Ctx) error {
	in := services.PageViewInput{
		UTM: models.UTMSet{
			Source:   c.Query("utm_source"),
			Medium:   c.Query("utm_medium"),
			Campaign: c.Query("utm_campaign"),
			Content:  c.Query("utm_content"),
		},
		QRID:     c.Query("qr"),
		PageURL:  c.Query("page_url"),
		Referrer: c.Query("referrer"),
	}
	if err := h.recorder.RecordPixel(c.Context(), in, requestMeta(c)); err != nil {
		h.log.Warn("record pixel failed", zap.Error(err))
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	return c.Send(pixelGIF)
}

func pageViewInput(req dto.PageViewRequest) services.PageViewInput {
	return services.PageViewInput{
		UTM: models.UTMSet{
			Source:   req.UTMSource,
			Medium:   req.UTMMedium,
			Campaign: req.UTMCampaign,
			Content:  req.UTMContent,
		},
		QRID:     req.QRID,
		PageURL:  req.PageURL,
		Referrer: req.Referrer,
		IP:       req.IP,
		Country:  req.Country,
		Region:   req.Region,
		City:     req.City,
		ISP:      req.ISP,
	}
}

func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referrer:  c.Get(fiber.HeaderReferer),
	}
}
