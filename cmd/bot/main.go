package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hubcoin/internal/bot"
	"hubcoin/internal/config"
	"hubcoin/internal/db"
	"hubcoin/internal/logger"
	"hubcoin/internal/notify"
	"hubcoin/internal/repository"
	"hubcoin/internal/service"
)

// notifierRef lets the referral service be built before the bot that delivers its notifications
type notifierRef struct {
	d *notify.Dispatcher
}

func (r *notifierRef) Enqueue(n notify.Notification) bool { return r.d.Enqueue(n) }

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if cfg.BotToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	dbPool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer dbPool.Close()

	var cache repository.LeaderboardCache
	if rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		cache = repository.NewRedisLeaderboardCache(rdb, 5*time.Minute)
	}

	ledger := repository.NewPostgresLedger(dbPool)
	clock := service.NewClock(cfg.ClaimLocation)
	notifier := &notifierRef{}
	accounts := service.NewAccountService(ledger, service.NewReferralService(ledger, notifier), clock)
	leaderboard := service.NewLeaderboardService(ledger, ledger, cache, cfg.AdminTelegramID, clock)

	b, err := bot.New(cfg.BotToken, accounts, leaderboard, ledger, cfg.FrontendURL)
	if err != nil {
		logger.Fatal("failed to start bot", "error", err)
	}
	notifier.d = notify.NewDispatcher(b, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	go b.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	b.Stop()
	notifier.d.Close()
	logger.Info("bot exited")
}
