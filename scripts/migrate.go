package main

import (
	"context"
	"os"

	"github.com/peritasorg/eventis-sub000/internal/config"
	"github.com/peritasorg/eventis-sub000/internal/repositories"
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/pkg/database"
	"github.com/peritasorg/eventis-sub000/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
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

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		logger.Log.Fatalf("Migration error: %v", err)
	}
	logger.Log.Info("Database migrations completed successfully")

	// Create default tenant and admin if not exists
	if err := createDefaultAdmin(context.Background(), repositories.NewRepository(db), cfg); err != nil {
		logger.Log.Fatalf("Failed to create default admin: %v", err)
	}
	logger.Log.Info("Migration process completed")
}

func createDefaultAdmin(ctx context.Context, repo *repositories.Repository, cfg *config.Config) error {
	adminEmail := getenv("SEED_ADMIN_EMAIL", "admin@eventis.local")
	adminPassword := getenv("SEED_ADMIN_PASSWORD", "change-me-now")

	// Check if admin already exists
	if existing, err := repo.UserRepo.GetUserByEmail(ctx, adminEmail); err == nil && existing != nil {
		logger.Log.Info("Default admin user already exists")
		return nil
	}

	resp, err := services.NewAuthService(repo, cfg).Signup(ctx, services.SignupRequest{
		BusinessName: getenv("SEED_BUSINESS_NAME", "Eventis Demo Venue"),
		FullName:     "Administrator",
		Email:        adminEmail,
		Password:     adminPassword,
	})
	if err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"email":     resp.User.Email,
		"tenant_id": resp.User.TenantID,
		"role":      resp.User.Role,
	}).Info("Default admin user created")
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
