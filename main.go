package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/qr-restaurant/config"
	"github.com/yeremiapane/qr-restaurant/database"
	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/middlewares"
	"github.com/yeremiapane/qr-restaurant/router"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.LogFormat)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}

	revoker, closeRevoker := newRevoker(cfg)
	defer closeRevoker()

	hub := kds.NewHub()
	events := kds.Fanout{hub}
	if cfg.KafkaBroker != "" {
		writer := kds.NewKafkaWriter(cfg.KafkaBroker, cfg.KafkaTopic)
		defer writer.Close()
		events = append(events, kds.NewKafkaPublisher(writer))
		utils.InfoLogger.Printf("Publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middlewares.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	loginLimiter := middlewares.NewStrictRateLimiter()

	r := router.SetupRouter(router.Deps{
		Auth:         services.NewAuthService(db, tokens, revoker),
		Tenants:      services.NewTenantService(db),
		Catalog:      services.NewCatalogService(db),
		Tables:       services.NewTableService(db, cfg.PublicBaseURL),
		Orders:       services.NewOrderService(db, events),
		Reviews:      services.NewReviewService(db),
		Waiters:      services.NewWaiterService(db, events),
		Analytics:    services.NewAnalyticsService(db),
		Hub:          hub,
		CORSOrigins:  cfg.CORSOrigins,
		Limiter:      limiter,
		LoginLimiter: loginLimiter,
	})

	monitor := services.NewSubscriptionMonitor(db, cfg.SubscriptionCheckInterval)
	monitor.Start()
	defer monitor.Stop()

	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup()
				loginLimiter.Cleanup()
				if m, ok := revoker.(*utils.MemoryRevoker); ok {
					m.Cleanup()
				}
			case <-stopCleanup:
				return
			}
		}
	}()
	defer close(stopCleanup)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}

// newRevoker uses redis when REDIS_ADDR is set so logouts survive restarts
// and are shared between instances.
func newRevoker(cfg *config.Config) (utils.TokenRevoker, func()) {
	if cfg.RedisAddr == "" {
		return utils.NewMemoryRevoker(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
	}
	utils.InfoLogger.Printf("Using redis token revocation at %s", cfg.RedisAddr)
	return utils.NewRedisRevoker(client), func() { client.Close() }
}
