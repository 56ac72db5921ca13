package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/BangBK2510/Digital-Map-Project/internal/api/http"
	"github.com/BangBK2510/Digital-Map-Project/internal/catalog"
	"github.com/BangBK2510/Digital-Map-Project/internal/config"
	"github.com/BangBK2510/Digital-Map-Project/internal/forecast"
	"github.com/BangBK2510/Digital-Map-Project/internal/routing"
	"github.com/BangBK2510/Digital-Map-Project/internal/scheduler"
	"github.com/BangBK2510/Digital-Map-Project/internal/search"
	"github.com/BangBK2510/Digital-Map-Project/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Shared HTTP client for outbound collaborator calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Catalog: provinces endpoint when configured, local file otherwise.
	// Either way a load failure leaves an empty catalog, never a dead
	// process.
	var cat *catalog.Catalog
	if cfg.CatalogURL != "" {
		loadCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		cat = catalog.LoadProvinces(loadCtx, httpClient, cfg.CatalogURL)
		cancel()
	} else {
		cat = catalog.LoadFile(cfg.CatalogPath)
	}

	// Place search database (sqlite seeded from the catalog, or pgx).
	searchStore, err := search.Open(cfg.SearchDriver, cfg.SearchDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open search database")
	}
	defer searchStore.Close()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := searchStore.Seed(seedCtx, cat.Locations()); err != nil {
		log.Error().Err(err).Msg("Search database seeding failed; search may return no results")
	}
	cancelSeed()

	searchSvc := search.NewService(searchStore, cfg.GeocoderAPIKey)

	// Forecast client with cache, coordinator, and pre-warm scheduler.
	cache := store.NewForecastCache(cfg.CacheMaxAge)
	predictClient := store.NewCachedClient(forecast.NewClient(httpClient, cfg.ForecastBaseURL), cache)
	coordinator := forecast.NewCoordinator(predictClient, cfg.FetchTimeout)

	sched := scheduler.New(cat.Locations(), cfg.PrewarmLimit, cfg.PrewarmInterval, predictClient, cache)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start pre-warm scheduler")
	}
	defer sched.Stop()

	routeClient := routing.NewClient(httpClient, cfg.RoutingBaseURL)

	app := fiber.New(fiber.Config{
		AppName:               "digital-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "digital-map",
			"locations": cat.Len(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Catalog:     cat,
		Search:      searchSvc,
		Routing:     routeClient,
		Forecast:    predictClient,
		Coordinator: coordinator,
		MaxVisible:  cfg.MaxVisible,
		MapConfig:   config.LoadMapConfig(cfg.MapConfigPath),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}
