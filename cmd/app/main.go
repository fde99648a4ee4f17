package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hubcoin/internal/config"
	"hubcoin/internal/db"
	httpServer "hubcoin/internal/http"
	"hubcoin/internal/http/handlers"
	"hubcoin/internal/logger"
	"hubcoin/internal/repository"
	"hubcoin/internal/service"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer dbPool.Close()

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	var (
		cache      repository.LeaderboardCache
		redisCheck handlers.Pinger
	)
	if rdb != nil {
		defer rdb.Close()
		cache = repository.NewRedisLeaderboardCache(rdb, 5*time.Minute)
		redisCheck = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	ledger := repository.NewPostgresLedger(dbPool)
	clock := service.NewClock(cfg.ClaimLocation)
	// the API never creates accounts with a referrer, so no notifications originate here
	accounts := service.NewAccountService(ledger, service.NewReferralService(ledger, nil), clock)
	leaderboard := service.NewLeaderboardService(ledger, ledger, cache, cfg.AdminTelegramID, clock)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Handler: handlers.NewHandler(accounts, leaderboard),
		Health:  handlers.NewHealthHandler(dbPool, redisCheck, version),
		Redis:   rdb,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
