package main

import (
	"context"

	"github.com/RappnCH/rappn-campaign-tracker/internal/config"
	"github.com/RappnCH/rappn-campaign-tracker/internal/db"
	"github.com/RappnCH/rappn-campaign-tracker/internal/mirror"
	"github.com/RappnCH/rappn-campaign-tracker/internal/repositories"
	"github.com/RappnCH/rappn-campaign-tracker/internal/seed"
	"github.com/RappnCH/rappn-campaign-tracker/internal/services"
	"github.com/RappnCH/rappn-campaign-tracker/internal/store"
	"go.uber.org/zap"
)

// Seeds the durable mirror with demo campaigns, placements and a week of
// click history. Builds everything in memory first, then lets the
// dispatcher drain it into postgres.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	durable := mirror.NewPostgres(pool)
	dispatcher := mirror.NewDispatcher(mirror.DefaultDispatcherConfig(), log)

	kv := store.NewMemory()
	campaignRepo := repositories.NewCampaignRepo(kv)
	placementRepo := repositories.NewPlacementRepo(kv)
	clickRepo := repositories.NewClickRepo(kv)
	redirectRepo := repositories.NewRedirectRepo(kv)

	campaignService := services.NewCampaignService(campaignRepo, placementRepo, durable, dispatcher, log)
	trackingService := services.NewTrackingService(placementRepo, redirectRepo, durable, dispatcher, cfg.TrackingBaseURL, log)

	if err := seed.New(campaignService, trackingService, clickRepo, log).Demo(ctx); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	// Click history goes straight to the repo, so mirror it explicitly.
	clicks, err := clickRepo.AllByCampaign(ctx)
	if err != nil {
		log.Fatal("failed to read seeded clicks", zap.Error(err))
	}
	for _, events := range clicks {
		for _, ev := range events {
			if err := durable.SaveClick(ctx, ev); err != nil {
				log.Fatal("failed to mirror click", zap.Error(err))
			}
		}
	}

	dispatcher.Close()
	enqueued, dropped, failed := dispatcher.Stats()
	log.Info("seed complete",
		zap.Int64("mirror_writes", enqueued),
		zap.Int64("dropped", dropped),
		zap.Int64("failed", failed),
	)
}
