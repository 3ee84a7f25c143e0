package handlers

import (
	"errors"

	"github.com/RappnCH/rappn-campaign-tracker/internal/http/dto"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RedirectHandler struct {
	trackingService *services.TrackingService
	recorder        *services.ClickRecorder
	log             *zap.Logger
}

func NewRedirectHandler(trackingService *services.TrackingService, recorder *services.ClickRecorder, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{trackingService: trackingService, recorder: recorder, log: log}
}

// Redirect resolves a short code, records the click, and 302s to the final
// URL. An unknown code is an explicit 404, never a default destination. A
// failed recording does not block the visitor.
func (h *RedirectHandler) Redirect(c *fiber.Ctx) error {
	code := c.Params("code")

	target, err := h.trackingService.ResolveRedirect(c.Context(), code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "unknown redirect code"})
		}
		h.log.Error("resolve redirect failed", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	if err := h.recorder.RecordRedirect(c.Context(), target, requestMeta(c)); err != nil {
		h.log.Warn("failed to record redirect click",
			zap.String("code", code),
			zap.Int64("placement_id", target.PlacementID),
			zap.Error(err),
		)
	}

	return c.Redirect(target.FinalURL, fiber.StatusFound)
}
