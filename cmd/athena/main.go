package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierBriggs/Athena/adapters/theoddsapi"
	"github.com/XavierBriggs/Athena/internal/cache"
	"github.com/XavierBriggs/Athena/internal/config"
	"github.com/XavierBriggs/Athena/internal/drilldown"
	"github.com/XavierBriggs/Athena/internal/handlers"
	"github.com/XavierBriggs/Athena/internal/logging"
	"github.com/XavierBriggs/Athena/internal/prefs"
	"github.com/XavierBriggs/Athena/internal/registry"
	"github.com/XavierBriggs/Athena/internal/scheduler"
	"github.com/XavierBriggs/Athena/internal/store"
	"github.com/XavierBriggs/Athena/sports/basketball_nba"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	logger.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Starting Athena")

	ctx := context.Background()

	// Alexandria DB
	db, err := sql.Open("postgres", cfg.AlexandriaDSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open Alexandria DB")
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to ping Alexandria DB")
	}
	logger.Info("Connected to Alexandria DB")

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	logger.Info("Connected to Redis")

	// Sports
	sportRegistry := registry.NewSportRegistry()
	nba := basketball_nba.NewModule()
	if err := sportRegistry.Register(nba); err != nil {
		logger.WithError(err).Fatal("Failed to register NBA module")
	}

	alexandria := store.New(db,
		store.WithSharpBooks(sportRegistry.SharpBooks(nba.GetSportKey())),
		store.WithPublisher(redisClient),
		store.WithLogger(logging.WithComponent("store")),
	)

	gameLogs := cache.NewGameLogs(redisClient, alexandria, cfg.CacheTTL, logging.WithComponent("cache"))
	service := drilldown.NewService(gameLogs, alexandria, alexandria, nba, cfg.Season, logging.WithComponent("drilldown"))

	handler := handlers.NewHandler(
		service,
		prefs.NewRedisStore(redisClient, 0),
		prefs.NewStreamPublisher(redisClient),
		map[string]handlers.CheckFunc{
			"alexandria": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		logging.WithComponent("handlers"),
	)

	// Props refresh
	var sched *scheduler.Scheduler
	if cfg.RefreshEnabled() {
		adapter := theoddsapi.NewClient(cfg.OddsAPIKey,
			theoddsapi.WithRequestsPerSecond(cfg.OddsAPIRPS),
			theoddsapi.WithLogger(logging.WithComponent("theoddsapi")),
		)
		sched = scheduler.NewScheduler(adapter, alexandria, sportRegistry,
			scheduler.WithRefreshSchedule(cfg.PropsRefreshCron),
			scheduler.WithStatusUpdates(alexandria, cfg.EventStatusCron),
			scheduler.WithLogger(logging.WithComponent("scheduler")),
		)
		if err := sched.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to start props refresh scheduler")
		}
	} else {
		logger.Warn("ODDS_API_KEY not set, props refresh disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      handlers.NewRouter(handler, logger, cfg.CorsOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Port).Info("Athena listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}

	case sig := <-shutdown:
		logger.WithField("signal", sig.String()).Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Graceful shutdown failed")
			if err := srv.Close(); err != nil {
				logger.WithError(err).Error("Could not stop server")
			}
		}
	}

	if sched != nil {
		sched.Stop()
	}

	logger.Info("Shutdown complete")
}
