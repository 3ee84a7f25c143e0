package handlers

import (
	"errors"

	"github.com/RappnCH/rappn-campaign-tracker/internal/http/dto"
	"github.com/RappnCH/rappn-campaign-tracker/internal/models"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, log: log}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	missing := missingFields(map[string]string{
		"campaign_id": req.CampaignID,
		"name":        req.Name,
		"date_start":  req.DateStart,
	})
	if missing != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: missing + " required"})
	}

	campaign := &models.Campaign{
		CampaignID:     req.CampaignID,
		Name:           req.Name,
		DateStart:      req.DateStart,
		DateEnd:        req.DateEnd,
		Geo:            req.Geo,
		PrimaryChannel: req.PrimaryChannel,
		Type:           req.Type,
		Concept:        req.Concept,
		Language:       req.Language,
		Status:         req.Status,
		Budget:         req.Budget,
		Description:    req.Description,
	}

	if err := h.campaignService.Create(c.Context(), campaign); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "campaign_id already exists"})
		}
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.log.Error("create campaign failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.campaignService.List(c.Context())
	if err != nil {
		h.log.Error("list campaigns failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	campaign, err := h.campaignService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "campaign not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	var req dto.UpdateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	campaign, err := h.campaignService.Update(c.Context(), c.Params("id"), services.CampaignUpdate{
		Name:        req.Name,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
		Status:      req.Status,
		Budget:      req.Budget,
		Description: req.Description,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) DeleteCampaign(c *fiber.Ctx) error {
	campaign, err := h.campaignService.SoftDelete(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ToggleStatus(c *fiber.Ctx) error {
	campaign, err := h.campaignService.ToggleStatus(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) ReactivateCampaign(c *fiber.Ctx) error {
	var req dto.ReactivateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	campaign, err := h.campaignService.Reactivate(c.Context(), c.Params("id"), req.DateStart, req.DateEnd)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "date_start required"})
		}
		return h.mapError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "campaign not found"})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("campaign operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
