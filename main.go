package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/conradkoh/goals-sub001/internal/cache"
	"github.com/conradkoh/goals-sub001/internal/carryover"
	"github.com/conradkoh/goals-sub001/internal/config"
	"github.com/conradkoh/goals-sub001/internal/database"
	"github.com/conradkoh/goals-sub001/internal/handlers"
	"github.com/conradkoh/goals-sub001/internal/logging"
	"github.com/conradkoh/goals-sub001/internal/metrics"
	"github.com/conradkoh/goals-sub001/internal/routes"
	"github.com/conradkoh/goals-sub001/internal/store"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()
	metrics.Init()

	logger.Info("starting_application", zap.String("port", cfg.Port))

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("database_connect_failed", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("migration_failed", zap.Error(err))
	}

	if cache.Init(cfg, logger) {
		logger.Info("redis_cache_enabled")
	}

	handlers.Init(carryover.New(store.New(database.DB), logger))

	app := fiber.New()
	app.Use(recover.New())
	app.Use(cors.New())

	routes.Setup(app)

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server_failed", zap.Error(err))
	}
}
