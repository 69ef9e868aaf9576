package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	_ "github.com/spinspot/server/docs"
	"github.com/spinspot/server/internal/cache"
	"github.com/spinspot/server/internal/category"
	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/eventsearch"
	"github.com/spinspot/server/internal/handlers"
	appLogger "github.com/spinspot/server/internal/logger"
	"github.com/spinspot/server/internal/middleware"
	"github.com/spinspot/server/internal/places"
	"github.com/spinspot/server/internal/realtime"
	"github.com/spinspot/server/internal/services"
	"github.com/spinspot/server/internal/telemetry"
)

// @title SpinSpot API
// @version 1.0.0
// @description Spin the wheel, get a recommendation
// @host localhost:3000
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if err := appLogger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "spinspot-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "spinspot-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Domain wiring
	policy := category.NewPolicy(category.WithCategoryEnforcement(cfg.CategoryEnforceExclusions))
	searchService := services.NewSearchService(eventsearch.NewClient(cfg), cache.New())
	placesClient := places.NewClient(cfg)

	hub := realtime.NewHub()
	streaks := services.NewStreakService(db)
	feedService := services.NewFeedService(database.NewFeedStore(db), hub, streaks)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	feedService.Start(runCtx)
	defer feedService.Close()

	// Post-insert stream from the hosted store, feeding the hub
	stream := realtime.NewStreamClient(cfg, hub)
	go func() {
		if err := stream.Run(runCtx); err != nil {
			log.Printf("Post-insert stream stopped: %v", err)
		}
	}()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SpinSpot API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "spinspot-api",
	}))
	app.Use(middleware.PrometheusMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With, X-API-Key",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	// Setup routes
	setupRoutes(app, db, cfg, policy, searchService, feedService, placesClient)

	// Start server
	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(
	app *fiber.App,
	db *database.DB,
	cfg *config.Config,
	policy *category.Policy,
	searchService *services.SearchService,
	feedService *services.FeedService,
	placesClient *places.Client,
) {
	// Swagger UI
	app.Get("/v1/docs/*", swagger.HandlerDefault)

	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.PrometheusHandler())

	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/health", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// API v1 group
	v1 := app.Group("/v1")

	// Auth routes (no auth required except device registration)
	auth := v1.Group("/auth")
	handlers.SetupAuthRoutes(auth, db, cfg)

	// Event search (public, viewer location optional)
	search := v1.Group("/search")
	handlers.SetupSearchRoutes(search, searchService)

	// Feed routes (viewer resolved per route)
	feed := v1.Group("/feed")
	handlers.SetupFeedRoutes(feed, feedService, cfg)

	// Wheel spin (public)
	wheel := v1.Group("/wheel")
	handlers.SetupWheelRoutes(wheel, policy)

	// Category intents (public)
	categories := v1.Group("/categories")
	handlers.SetupCategoryRoutes(categories, policy)

	// Spots: validation, bookmarks, reviews
	spots := v1.Group("/spots")
	handlers.SetupSpotRoutes(spots, db, policy, cfg)

	// Place lookups (public)
	placesGroup := v1.Group("/places")
	handlers.SetupPlacesRoutes(placesGroup, placesClient)
}
