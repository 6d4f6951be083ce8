package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claims-payment-backend/internal/config"
	"claims-payment-backend/internal/progress"
	"claims-payment-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	var tracker progress.Tracker = progress.NewMemoryTracker()
	if cfg.RedisURL != "" {
		rt, err := progress.NewRedisTrackerFromURL(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal("Redis unavailable", zap.Error(err))
		}
		defer rt.Close()
		tracker = rt
		logger.Info("Upload progress kept in Redis")
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-Email", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	accounts := routes.RegisterRoutes(r, db, cfg, logger, tracker)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	// Uploads already accepted run to completion.
	accounts.Wait()
}
