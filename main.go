// main.go - HTTP API server for the entrance exam quiz app
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"ingresosgo/cache"
	"ingresosgo/config"
	"ingresosgo/database"
	"ingresosgo/handlers"
	"ingresosgo/handlers/admin"
	"ingresosgo/middleware"
	"ingresosgo/questions"
	"ingresosgo/services"
	"ingresosgo/store"
	"ingresosgo/subscriptions"
	"ingresosgo/utils"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	cfg.Validate()
	utils.HideInternalErrors = cfg.IsProduction()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database.InitDB(cfg.Database)
	defer database.CloseDB()

	if applied, err := database.Seed(database.GetDB(), time.Now().UTC()); err != nil {
		log.Fatalf("❌ Failed to seed catalog: %v", err)
	} else if applied {
		log.Printf("🌱 Seeded badges, challenges and tournaments (v%d)", database.CatalogSeedVersion)
	}

	// Load questions from files
	catalog := questions.NewCatalog(cfg.Questions.Dir, questions.DefaultSources())
	report, err := catalog.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load questions: %v", err)
	}
	log.Printf("📚 Loaded %d questions (%d skipped, %d files missing)", report.Loaded, report.Skipped, report.Missing)

	board, err := cache.New(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("❌ Invalid Redis configuration: %v", err)
	}

	deps, err := services.NewDeps(store.New(database.GetDB()), catalog, board, cfg)
	if err != nil {
		log.Fatalf("❌ Invalid rules configuration: %v", err)
	}

	hub := services.NewLiveHub()
	users := services.NewUserService(deps)
	ranking := services.NewRankingService(deps)
	subs := services.NewSubscriptionService(deps, subscriptions.NewVerifier(ctx, cfg.GooglePlay))

	handlers.InitHandlers(handlers.Services{
		Users:         users,
		Progress:      services.NewProgressService(deps),
		Quiz:          services.NewQuizService(deps),
		Achievements:  services.NewAchievementService(deps),
		Tournaments:   services.NewTournamentService(deps, hub),
		Ranking:       ranking,
		Subscriptions: subs,
		Catalog:       catalog,
		Hub:           hub,
	})
	admin.Init(users, subs, ranking, catalog, middleware.NewAdminAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	if err := users.EnsureAdmin(ctx, cfg.Auth.AdminSeed, cfg.Auth.AdminPasswd); err != nil {
		log.Printf("❌ Failed to create admin user: %v", err)
	}
	if err := ranking.RebuildCache(ctx); err != nil {
		log.Printf("⚠️  Ranking cache rebuild failed: %v", err)
	}

	// Initialize cleanup service
	services.InitCleanupService(subs, cfg.GooglePlay.CleanupInterval)
	services.GetCleanupService().Start()
	defer services.GetCleanupService().Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.Server.CORSOrigins != "*",
	}))

	// API Routes
	api := app.Group("/api")

	// Apply rate limiting to all API routes
	limiters := middleware.NewRateLimiters(cfg.RateLimit)
	limiters.StartCleanup(ctx.Done())
	api.Use(limiters.General())

	started := time.Now()
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
			"version":   version,
		})
	})

	handlers.RegisterRoutes(api, limiters.Auth())
	admin.RegisterRoutes(api)

	app.Use(func(c *fiber.Ctx) error {
		return utils.JSONError(c, fiber.StatusNotFound, "Endpoint no encontrado")
	})

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 HTTP server starting on port %s", cfg.Server.Port)
	log.Printf("📊 Environment: %s", cfg.Env)
	log.Printf("🔐 JWT Secret configured: %v", cfg.Auth.JWTSecret != "")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Printf("❌ HTTP server stopped: %v", err)
	}
}
