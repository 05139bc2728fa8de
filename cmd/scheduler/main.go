package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/lendcore/credit-workflow/internal/calendar"
	"github.com/lendcore/credit-workflow/internal/config"
	"github.com/lendcore/credit-workflow/internal/repository"
)

func main() {
	log.Println("Starting workflow scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	collateralRepo := repository.NewCollateralRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	holidaySource := calendar.NewCachedHolidaySource(holidayRepo, redisClient, cfg.GetHolidayCacheTTL())

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	setupCronJobs(c, cfg, collateralRepo, holidaySource)

	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, collateralRepo repository.CollateralRepository, holidaySource *calendar.CachedHolidaySource) {
	// Daily job releasing collateral stranded on rejected/cancelled
	// applications (runs at midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		released, err := collateralRepo.ReleaseTerminalLinks(ctx)
		if err != nil {
			log.Printf("Collateral reconciliation failed: %v", err)
			return
		}
		log.Printf("Collateral reconciliation released %d records", released)
	})
	if err != nil {
		log.Printf("Error scheduling collateral reconciliation job: %v", err)
	}

	// Daily job warming the holiday calendar cache for this and next year
	// (runs at 1 AM)
	_, err = c.AddFunc("0 0 1 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		year := time.Now().Year()
		for _, y := range []int{year, year + 1} {
			if err := holidaySource.WarmYear(ctx, y, cfg.Business.AgencyID, cfg.Business.PortfolioTypeID); err != nil {
				log.Printf("Holiday cache warm-up for %d failed: %v", y, err)
			}
		}
	})
	if err != nil {
		log.Printf("Error scheduling holiday cache warm-up job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}
