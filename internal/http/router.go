package http

import (
	"time"

	"github.com/RappnCH/rappn-campaign-tracker/internal/config"
	"github.com/RappnCH/rappn-campaign-tracker/internal/http/handlers"
	"github.com/RappnCH/rappn-campaign-tracker/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	idsHandler *handlers.IDsHandler,
	campaignHandler *handlers.CampaignHandler,
	trackingHandler *handlers.TrackingHandler,
	redirectHandler *handlers.RedirectHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Redirect resolution sits at the root so distributed short URLs stay
	// short.
	r := app.Group("/r")
	if rdb != nil {
		r.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))
	}
	r.Get("/:code", redirectHandler.Redirect)

	api := app.Group("/api/v1")

	// IDs
	api.Post("/ids/campaign", idsHandler.GenerateCampaignID)

	// Campaigns
	api.Post("/campaigns", campaignHandler.CreateCampaign)
	api.Get("/campaigns", campaignHandler.ListCampaigns)
	api.Get("/campaigns/:id", campaignHandler.GetCampaign)
	api.Put("/campaigns/:id", campaignHandler.UpdateCampaign)
	api.Delete("/campaigns/:id", campaignHandler.DeleteCampaign)
	api.Patch("/campaigns/:id/status", campaignHandler.ToggleStatus)
	api.Patch("/campaigns/:id/reactivate", campaignHandler.ReactivateCampaign)

	// Tracking (public, beacon-facing, rate limited)
	tracking := api.Group("/tracking")
	if rdb != nil {
		tracking.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))
	}
	tracking.Post("/build-placement-link", trackingHandler.BuildPlacementLink)
	tracking.Get("/placements/:campaign_id", trackingHandler.ListPlacements)
	tracking.Delete("/placements/:campaign_id", trackingHandler.DeletePlacements)
	tracking.Post("/click", trackingHandler.RecordClick)
	tracking.Post("/page-view", trackingHandler.RecordPageView)
	tracking.Get("/pixel.gif", trackingHandler.Pixel)

	// Analytics
	api.Get("/analytics/overview", analyticsHandler.Overview)
	api.Get("/analytics/campaign/:campaign_id", analyticsHandler.Campaign)
	api.Get("/analytics/placement/:placement_id", analyticsHandler.Placement)

	// WebSocket live click feed
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws/clicks", websocket.New(wsHub.HandleWS))
}
