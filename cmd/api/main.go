package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"lunch-order/internal/config"
	"lunch-order/internal/handler"
	"lunch-order/internal/middleware"
	"lunch-order/internal/pkg/i18n"
	"lunch-order/internal/repository"
	"lunch-order/internal/service"
	"lunch-order/internal/service/menu"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg)
	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, log); err != nil {
		log.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if rc, err := config.NewRedisClient(ctx, cfg); err != nil {
		log.Warn("failed to connect to Redis, caching disabled", "error", err)
	} else {
		redisClient = rc
		defer rc.Close()
	}

	var images menu.ImageStore
	if mc, err := config.NewMinIOClient(ctx, cfg); err != nil {
		log.Warn("failed to connect to MinIO, menu images disabled", "error", err)
	} else {
		images = mc
	}

	catalog, err := i18n.Default()
	if err != nil {
		log.Error("failed to load message catalog", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, images, catalog, cfg, log)
	handlers := handler.NewHandlers(services, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	handler.RegisterRoutes(app, handlers, middleware.AuthRequired(services.Auth))

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		services.Stream.Shutdown()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("failed to shut down server", "error", err)
		}
	}()

	log.Info("server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
