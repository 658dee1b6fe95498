package main

import (
	"betaffiliate/config"
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/jobs"
	"betaffiliate/middlewares"
	"betaffiliate/routes"
	"betaffiliate/services/stats"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	helpers.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	if err := database.Connect(cfg.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cache *stats.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("could not connect to redis, stats cache disabled")
		} else {
			cache = stats.NewCache(client, 2*cfg.StatsRefreshInterval)
			defer client.Close()
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "betaffiliate",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return helpers.JSONFailure(c, code, "ERROR", err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middlewares.RequestLogger())

	routes.Setup(app, routes.Options{
		JWTSecret:       cfg.JWTSecret,
		TrackingBaseURL: cfg.TrackingBaseURL,
		RecordOrphans:   cfg.RecordOrphans,
		StatsCache:      cache,
		StatsMaxAge:     2 * cfg.StatsRefreshInterval,
	})
	jobs.StartStatsScheduler(ctx, database.DB, cache, cfg.StatsRefreshInterval)
	if cfg.RecordOrphans {
		jobs.StartOrphanPurge(ctx, database.DB, cfg.OrphanRetention)
	}

	addr := cfg.Addr()
	log.Info().Str("addr", addr).Msg("server running")

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panic().Err(err).Msg("failed to start server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info().Msg("gracefully shutting down")
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited cleanly")
}
