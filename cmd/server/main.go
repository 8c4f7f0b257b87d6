package main

import (
	"context"
	"log"
	"net/http"

	logrus "github.com/sirupsen/logrus"

	"shuttle_tracker/internal/attendance"
	"shuttle_tracker/internal/config"
	"shuttle_tracker/internal/controllers"
	"shuttle_tracker/internal/driversim"
	"shuttle_tracker/internal/logger"
	"shuttle_tracker/internal/middleware"
	"shuttle_tracker/internal/routes"
	"shuttle_tracker/internal/seed"
	"shuttle_tracker/internal/store"
	"shuttle_tracker/internal/store/docstore"
	"shuttle_tracker/internal/store/memstore"
	"shuttle_tracker/internal/store/redisnotify"
	"shuttle_tracker/internal/tracker"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	cfg := config.Load()
	ctx := context.Background()

	gw, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	// Populate reference data on first start
	if err := seed.New(gw).Initialize(ctx); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	sync := tracker.New(gw)
	att := attendance.New(gw, sync)

	hub := controllers.NewSnapshotHub()
	controllers.RunFeedBridge(ctx, hub, sync, att)

	if cfg.Simulator.Enabled {
		sim := driversim.New(sync, cfg.Simulator.BusID, cfg.Simulator.Interval)
		sim.Start(ctx)
	}

	r := routes.SetupRouter(routes.Deps{
		Store:      gw,
		Tracker:    sync,
		Attendance: att,
		Hub:        hub,
		SimCfg:     cfg.Simulator,
	})

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚀 Server running at %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, handler))
}

// openStore picks the gateway binding from config: the in-memory store
// for development, or Postgres with an optional Redis notifier so a
// fleet of instances shares one realtime view.
func openStore(cfg *config.Config) (store.Gateway, error) {
	switch cfg.StoreBackend {
	case "postgres":
		var notifier docstore.Notifier
		if cfg.RedisAddr != "" {
			rn, err := redisnotify.New(cfg.RedisAddr)
			if err != nil {
				return nil, err
			}
			notifier = rn
		}
		return docstore.Open(cfg.Postgres.DSN(), notifier)
	default:
		logrus.Info("Using in-memory store backend")
		return memstore.New(), nil
	}
}
