package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rental-billing-backend/internal/config"
	"rental-billing-backend/internal/logging"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/routes"
	"rental-billing-backend/internal/services/sweep"
	"rental-billing-backend/internal/storage"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.Room{},
		&models.Contract{},
		&models.Invoice{},
		&models.PaymentRecord{},
		&models.PaymentProof{},
		&models.PaymentAuditLog{},
		&models.ImportBatch{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("proof storage init failed", zap.Error(err))
	}

	svcs := routes.BuildServices(db, cfg, store, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svcs, cfg)

	sweeper := sweep.New(svcs.Ledger, svcs.Contracts, cfg.SweepInterval, logger)
	sweeper.Start(context.Background())

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildStore(cfg *config.Config) (storage.ProofStore, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3Store(cfg.Storage)
	}
	return storage.NewLocalStore(cfg.Storage.Dir)
}
