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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lendcore/credit-workflow/internal/calendar"
	"github.com/lendcore/credit-workflow/internal/config"
	"github.com/lendcore/credit-workflow/internal/handler"
	"github.com/lendcore/credit-workflow/internal/repository"
	"github.com/lendcore/credit-workflow/internal/schedule"
	"github.com/lendcore/credit-workflow/internal/service"
	"github.com/lendcore/credit-workflow/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	appRepo := repository.NewApplicationRepository(db)
	collateralRepo := repository.NewCollateralRepository(db)
	productRepo := repository.NewProductRepository(db, redisClient, cfg.GetProductCacheTTL())
	holidayRepo := repository.NewHolidayRepository(db)

	// Initialize calendar and schedule engine
	holidaySource := calendar.NewCachedHolidaySource(holidayRepo, redisClient, cfg.GetHolidayCacheTTL())
	businessCalendar := calendar.NewBusinessCalendar(holidaySource)
	engine := schedule.NewEngine(businessCalendar)

	// Initialize services
	appService := service.NewApplicationService(appRepo, productRepo, collateralRepo, engine, cfg)
	collateralService := service.NewCollateralService(appRepo, collateralRepo, productRepo)

	appHandler := handler.NewApplicationHandler(appService, collateralService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(appHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(appHandler *handler.ApplicationHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check and metrics
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/applications", appHandler.CreateApplication).Methods("POST")
	api.HandleFunc("/applications/{id}", appHandler.GetApplication).Methods("GET")
	api.HandleFunc("/applications/{id}", appHandler.UpdateApplication).Methods("PUT")
	api.HandleFunc("/applications/{id}/submit", appHandler.Submit).Methods("POST")
	api.HandleFunc("/applications/{id}/approve", appHandler.Approve).Methods("POST")
	api.HandleFunc("/applications/{id}/reject", appHandler.Reject).Methods("POST")
	api.HandleFunc("/applications/{id}/cancel", appHandler.Cancel).Methods("POST")
	api.HandleFunc("/applications/{id}/collateral", appHandler.AddCollateral).Methods("POST")
	api.HandleFunc("/applications/{id}/collateral", appHandler.ListCollateral).Methods("GET")
	api.HandleFunc("/applications/{id}/collateral/{linkId}", appHandler.RemoveCollateral).Methods("DELETE")
	api.HandleFunc("/applications/{id}/schedule-preview", appHandler.PreviewSchedule).Methods("POST")

	return router
}
