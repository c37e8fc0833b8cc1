package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/gamyam/crm-tasks/api/handler"
	"github.com/gamyam/crm-tasks/internal/config"
	"github.com/gamyam/crm-tasks/internal/infrastructure/activity"
	"github.com/gamyam/crm-tasks/internal/infrastructure/buffer"
	"github.com/gamyam/crm-tasks/internal/infrastructure/monitor"
	pgInfra "github.com/gamyam/crm-tasks/internal/infrastructure/postgres"
	redisInfra "github.com/gamyam/crm-tasks/internal/infrastructure/redis"
	"github.com/gamyam/crm-tasks/internal/router"
	"github.com/gamyam/crm-tasks/internal/services"
	"github.com/gamyam/crm-tasks/internal/services/lifecycle"
	"github.com/gamyam/crm-tasks/pkg/httpcontext"
	"github.com/gamyam/crm-tasks/pkg/logger"
	"github.com/gamyam/crm-tasks/repository/postgres"
	redisRepo "github.com/gamyam/crm-tasks/repository/redis"
	taskUC "github.com/gamyam/crm-tasks/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	retryStore, err := buffer.Open(cfg.Retry.Path, "activity")
	if err != nil {
		zapLogger.Fatal("failed to open activity retry buffer", zap.Error(err))
	}
	manager.Register("retry_buffer", func(ctx context.Context) error {
		return retryStore.Close()
	})

	mon := monitor.New(pool, redisClient, retryStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	taskCache := redisRepo.NewTaskCache(redisClient, cfg.Redis.CacheTTL)

	activityClient := activity.NewClient(activity.Config{
		BaseURL: cfg.Activity.BaseURL,
		APIKey:  cfg.Activity.APIKey,
		Timeout: cfg.Activity.Timeout,
	}, zapLogger)

	retryProcessor := services.NewRetryProcessor(
		retryStore,
		mon,
		activityClient,
		zapLogger,
		services.RetryConfig{
			Interval:   cfg.Retry.Interval,
			BatchSize:  cfg.Retry.BatchSize,
			MaxRetries: cfg.Retry.MaxRetries,
			Retention:  cfg.Retry.Retention,
		},
	)
	retryProcessor.Start()
	manager.Register("retry_processor", func(ctx context.Context) error {
		retryProcessor.Stop(ctx)
		return nil
	})

	sweeper := services.NewSweeper(
		taskRepo,
		taskCache,
		activityClient,
		retryProcessor,
		zapLogger,
		services.SweepConfig{
			Interval: cfg.Sweep.Interval,
			Lookback: cfg.Sweep.Lookback,
		},
	)
	sweeper.Start()
	manager.Register("sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	taskUseCase := taskUC.New(taskRepo, taskCache, activityClient, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
