package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/opdflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/livequeue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/tracer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	collector := metrics.NewCollector(cfg.App.Name)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}
	log.Info("database ready",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)
	if sqlDB, err := db.DB(); err == nil {
		go func() {
			for range time.Tick(15 * time.Second) {
				collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("redis unreachable, queue change broadcasts disabled until it recovers", zap.Error(err))
	}
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWT)
	broadcaster := livequeue.NewBroadcaster(redisClient, cfg.Redis.BroadcastPrefix, log)

	queueRepo := repository.NewQueueRepository(db)
	chargeRepo := repository.NewChargeRepository(db)
	vitalsRepo := repository.NewVitalsRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	directory := repository.NewDirectory(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	queueSvc := service.NewQueueService(queueRepo, directory, auditSvc, broadcaster, collector, cfg.Queue, log)
	chargeSvc := service.NewChargeService(chargeRepo, auditSvc, collector, log)
	vitalsSvc := service.NewVitalsService(vitalsRepo, queueRepo, auditSvc, collector, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, log)

	router := v1.NewRouter(cfg, jwtManager, collector, v1.Handlers{
		Auth:   v1.NewAuthHandler(authSvc),
		Queue:  v1.NewQueueHandler(queueSvc, cfg.Queue.PollInterval),
		Charge: v1.NewChargeHandler(chargeSvc),
		Vitals: v1.NewVitalsHandler(vitalsSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped cleanly")
	return nil
}
