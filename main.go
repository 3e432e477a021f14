// ABOUTME: Entry point for the VM placement planner backend service
// ABOUTME: Provides an HTTP API over the capacity placement engine

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/markalston/placement-planner/cache"
	"github.com/markalston/placement-planner/config"
	"github.com/markalston/placement-planner/engine"
	"github.com/markalston/placement-planner/handlers"
	"github.com/markalston/placement-planner/logger"
	"github.com/markalston/placement-planner/middleware"
	"github.com/markalston/placement-planner/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting VM Placement Planner Backend")
	slog.Info("Thresholds configured",
		"moderate", cfg.ThresholdModerate,
		"high", cfg.ThresholdHigh,
		"critical", cfg.ThresholdCritical,
		"over_capacity", cfg.ThresholdOverCapacity,
	)

	registry := engine.NewRegistry(cfg.Thresholds())

	var inventory *services.InventoryService
	if cfg.VSphereConfigured() {
		slog.Info("vSphere configured", "host", cfg.VSphereHost, "datacenter", cfg.VSphereDatacenter)
		ttl := time.Duration(cfg.CacheTTL) * time.Second
		client := services.NewVSphereClient(services.VSphereCredentials{
			Host:       cfg.VSphereHost,
			Username:   cfg.VSphereUsername,
			Password:   cfg.VSpherePassword,
			Datacenter: cfg.VSphereDatacenter,
			Insecure:   cfg.VSphereInsecure,
		}, cfg.Overcommit())
		inventory = services.NewInventoryService(client, cache.New(ttl), ttl)
	} else {
		slog.Info("vSphere not configured, API-supplied inventories only")
	}

	h := handlers.NewHandler(cfg, registry, inventory)

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Method+" "+route.Path,
			middleware.Chain(route.Handler, middleware.LogRequest, middleware.CORS))
	}

	// Method-qualified patterns don't match preflight requests, so CORS
	// OPTIONS gets its own catch-all.
	mux.HandleFunc("OPTIONS /api/", middleware.Chain(func(w http.ResponseWriter, r *http.Request) {},
		middleware.LogRequest, middleware.CORS))

	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
