package handlers

import (
	"errors"
	"strconv"

	"github.com/RappnCH/rappn-campaign-tracker/internal/http/dto"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	log       *zap.Logger
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log}
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.analytics.Overview(c.Context())
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: overview})
}

func (h *AnalyticsHandler) Campaign(c *fiber.Ctx) error {
	summary, err := h.analytics.CampaignSummary(c.Context(), c.Params("campaign_id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: summary})
}

func (h *AnalyticsHandler) Placement(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("placement_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid placement id"})
	}

	summary, err := h.analytics.PlacementSummary(c.Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: summary})
}

func (h *AnalyticsHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "dependency unavailable"})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	default:
		h.log.Error("analytics query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
