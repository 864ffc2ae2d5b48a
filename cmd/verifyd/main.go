package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/audit"
	"github.com/olegmz/verigate/internal/bank"
	"github.com/olegmz/verigate/internal/handler"
	"github.com/olegmz/verigate/internal/infra"
	"github.com/olegmz/verigate/internal/infra/auth"
	"github.com/olegmz/verigate/internal/metrics"
	"github.com/olegmz/verigate/internal/repository/postgres"
	"github.com/olegmz/verigate/internal/server"
	"github.com/olegmz/verigate/internal/service"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	store, err := postgres.NewStore(appCtx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}
	defer store.Close()

	// Проверяем соединение с таймаутом
	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	pingCancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(reg)

	// 3. Внешний банковский сервис (транспорт + обвязка надежности)
	transport := bank.NewHTTPTransport(cfg.Bank.BaseURL, cfg.Bank.CallTimeout)
	safeTransport := bank.NewReliabilityWrapper(transport, cfg.Bank, m)
	dispatcher := bank.NewDispatcher(bank.NewClient(safeTransport))

	// 4. Слои сервиса (Dependency Injection)
	codec := auth.NewTokenCodec([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)

	// Асинхронный журнал решений (append-only, пакетная запись)
	trail := audit.NewTrail(store, logger)
	trail.Start()
	defer trail.Stop()

	verificationSvc := service.NewVerificationService(store, dispatcher, rdb, trail, m, logger)
	limitSvc := service.NewLimitService(store, store, logger)
	authSvc := service.NewAuthService(store, codec, logger)

	srv := server.NewServer(
		cfg,
		logger,
		codec,
		handler.NewAuthHandler(authSvc),
		handler.NewVerificationHandler(verificationSvc),
		handler.NewLimitHandler(limitSvc),
	)

	// 5. Ежедневный сброс лимитов
	if cfg.Scheduler.Enabled {
		job := service.NewDailyResetJob(
			limitSvc,
			service.NewRedisResetLocker(rdb),
			m,
			logger,
			cfg.Scheduler.ResetHourUTC,
		)
		go job.Run(appCtx)
	}

	// Экспортируем метрики для Prometheus на отдельном порту
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	// 6. HTTP Server + graceful shutdown
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("verification service started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
