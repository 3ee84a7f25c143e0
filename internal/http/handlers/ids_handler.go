package handlers

import (
	"github.com/RappnCH/rappn-campaign-tracker/internal/http/dto"
	"github.com/RappnCH/rappn-campaign-tracker/internal/naming"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IDsHandler struct {
	log *zap.Logger
}

func NewIDsHandler(log *zap.Logger) *IDsHandler {
	return &IDsHandler{log: log}
}

// GenerateCampaignID derives the canonical campaign id from its naming
// parts without persisting anything.
func (h *IDsHandler) GenerateCampaignID(c *fiber.Ctx) error {
	var req dto.GenerateCampaignIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	missing := missingFields(map[string]string{
		"date_start": req.DateStart,
		"geo":        req.Geo,
		"type":       req.Type,
		"concept":    req.Concept,
		"language":   req.Language,
	})
	if missing != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: missing + " required"})
	}

	id, err := naming.BuildCampaignID(req.DateStart, req.Geo, req.PrimaryChannel, req.Type, req.Concept, req.Language)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.CampaignIDResponse{CampaignID: id}})
}

func missingFields(fields map[string]string) string {
	// Fixed order so the error message is stable.
	order := []string{"date_start", "geo", "type", "concept", "language", "campaign_id", "name", "channel", "ad_type", "base_url", "medium"}
	out := ""
	for _, name := range order {
		if v, ok := fields[name]; ok && v == "" {
			if out != "" {
				out += ", "
			}
			out += name
		}
	}
	return out
}
