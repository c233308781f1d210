package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peritasorg/eventis-sub000/internal/balance"
	"github.com/peritasorg/eventis-sub000/internal/calendar"
	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/handlers"
	"github.com/peritasorg/eventis-sub000/internal/jobs"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/pkg/database"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Log.Warnf(".env file not found: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		logger.Log.Fatalf("Config error: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		logger.Log.Fatalf("Migration error: %v", err)
	}

	// Initialize repositories
	repo := repositories.NewRepository(db)

	// Pending balance edits live in Redis when configured, in memory otherwise
	var (
		store   balance.PendingStore
		sweeper jobs.Sweeper
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Log.Fatalf("Redis connection error: %v", err)
		}
		defer client.Close()
		store = balance.NewRedisStore(client)
	} else {
		mem := balance.NewMemoryStore()
		store, sweeper = mem, mem
	}

	// Initialize services
	svc := handlers.Services{
		Auth:          services.NewAuthService(repo, cfg),
		Customer:      services.NewCustomerService(repo, cfg),
		Field:         services.NewFieldService(repo, cfg),
		FormTemplate:  services.NewFormTemplateService(repo, cfg),
		Event:         services.NewEventService(repo, cfg),
		EventForm:     services.NewEventFormService(repo, cfg),
		Payment:       services.NewPaymentService(repo, cfg),
		Balance:       services.NewBalanceService(repo, cfg, store),
		Communication: services.NewCommunicationService(repo, cfg),
		Calendar:      services.NewCalendarService(repo, cfg, calendar.NewLogProvider(logger.Log, cfg.CalendarName)),
	}

	// Initialize handlers
	handler := handlers.NewHandler(svc, cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Eventis API",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadSize),
		// Pending balance edits outlive the request that opened them.
		Immutable: true,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Register routes
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)

	scheduler := jobs.NewScheduler(repo, cfg, sweeper, logger.Log)
	if err := scheduler.Start(); err != nil {
		logger.Log.Fatalf("Scheduler error: %v", err)
	}

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Log.Infof("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(ctx)

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Log.Fatalf("Server shutdown error: %v", err)
	}
	logger.Log.Info("Server stopped gracefully")
}
