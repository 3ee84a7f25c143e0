package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RappnCH/rappn-campaign-tracker/internal/attribution"
	"github.com/RappnCH/rappn-campaign-tracker/internal/config"
	"github.com/RappnCH/rappn-campaign-tracker/internal/db"
	"github.com/RappnCH/rappn-campaign-tracker/internal/events"
	apphttp "github.com/RappnCH/rappn-campaign-tracker/internal/http"
	"github.com/RappnCH/rappn-campaign-tracker/internal/http/handlers"
	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/seed"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable mirror (postgres). The process serves from memory, so a
	// missing mirror degrades the deployment instead of killing it.
	var durable mirror.Mirror
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Warn("postgres unavailable, running in-memory only", zap.Error(err))
	} else {
		defer pool.Close()
		if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
		durable = mirror.NewPostgres(pool)
	}

	// Redis: rate limiting and the live click feed. Also optional.
	var rdb *redis.Client
	if client, err := db.NewRedisClient(ctx, cfg.RedisURL, log); err != nil {
		log.Warn("redis unavailable, rate limiting and live feed disabled", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	// In-memory source of truth
	kv := store.NewMemory()
	campaignRepo := repositories.NewCampaignRepo(kv)
	placementRepo := repositories.NewPlacementRepo(kv)
	clickRepo := repositories.NewClickRepo(kv)
	redirectRepo := repositories.NewRedirectRepo(kv)

	// Mirror write-behind
	dispatcher := mirror.NewDispatcher(mirror.DispatcherConfig{
		QueueSize:   cfg.MirrorQueueSize,
		Workers:     cfg.MirrorWorkers,
		CallTimeout: cfg.MirrorCallTimeout,
		MaxRetries:  cfg.MirrorMaxRetries,
		Backoff:     cfg.MirrorBackoff,
	}, log)
	defer dispatcher.Close()

	// Events
	var publisher events.Publisher
	var subscriber events.Subscriber
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb, log)
		subscriber = events.NewRedisSubscriber(rdb, log)
	}

	// Services
	matcher := attribution.NewMatcher(placementRepo, log)
	campaignService := services.NewCampaignService(campaignRepo, placementRepo, durable, dispatcher, log)
	trackingService := services.NewTrackingService(placementRepo, redirectRepo, durable, dispatcher, cfg.TrackingBaseURL, log)
	recorder := services.NewClickRecorder(clickRepo, placementRepo, matcher, durable, dispatcher, publisher, log)
	analytics := services.NewAnalyticsService(campaignRepo, placementRepo, clickRepo, log)

	// Warm the in-memory store from the mirror; if that is impossible the
	// read side answers 503 until the first write arrives.
	if durable != nil {
		if err := services.RestoreFromMirror(ctx, durable, campaignRepo, placementRepo, redirectRepo, log); err != nil {
			log.Warn("mirror restore failed", zap.Error(err))
			analytics.SetDegraded(true)
		}
	} else {
		analytics.SetDegraded(true)
	}

	if cfg.SeedDemo {
		if err := seed.New(campaignService, trackingService, clickRepo, log).Demo(ctx); err != nil {
			log.Warn("demo seed failed", zap.Error(err))
		}
	}

	// Handlers
	idsHandler := handlers.NewIDsHandler(log)
	campaignHandler := handlers.NewCampaignHandler(campaignService, log)
	trackingHandler := handlers.NewTrackingHandler(trackingService, campaignService, recorder, log)
	redirectHandler := handlers.NewRedirectHandler(trackingService, recorder, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics, log)
	wsHub := handlers.NewWSHub(subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, idsHandler, campaignHandler, trackingHandler, redirectHandler, analyticsHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
