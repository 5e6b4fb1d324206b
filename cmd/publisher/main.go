package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	handlers "mediapub/internal/handlers/http"
	"mediapub/internal/infrastructure/middleware"
	"mediapub/internal/infrastructure/monitoring"
	"mediapub/internal/infrastructure/streams/rtprelay"
	"mediapub/internal/infrastructure/transport"
	"mediapub/internal/publisher"
	"mediapub/pkg/config"
	"mediapub/pkg/logger"
	"mediapub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			log.Printf("Loaded config from: %s", path)
			break
		}
	}
	if err != nil {
		log.Fatalf("could not load config from any path: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	tp, err := tracing.Init(tracing.Config{
		Enabled:    cfg.Tracing.Enabled,
		JaegerURL:  cfg.Tracing.JaegerURL,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		zlog.Fatal("tracing init failed", zap.Error(err))
	}

	var metrics publisher.Metrics
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPublisherCollector()
	}

	factory := rtprelay.NewFactory(zlog)
	pub := publisher.New(factory, zlog, metrics)
	for _, appCfg := range cfg.Applications {
		if _, err := pub.AddApplication(appCfg.Name, appCfg.ThreadCount, cfg.Publisher.StatsInterval); err != nil {
			zlog.Fatal("add application failed", zap.String("app", appCfg.Name), zap.Error(err))
		}
	}

	if err := pub.StartAll(); err != nil {
		zlog.Fatal("publisher start failed", zap.Error(err))
	}

	ingest := transport.NewWebSocketIngest(
		func(name string) (transport.Application, bool) {
			app, ok := pub.GetApplication(name)
			if !ok {
				return nil, false
			}
			return app, true
		},
		transport.Options{
			ReadLimitBytes:   cfg.Transport.ReadLimitBytes,
			WriteTimeout:     cfg.Transport.WriteTimeout,
			PacketsPerSecond: cfg.Transport.PacketsPerSecond,
			Burst:            cfg.Transport.Burst,
		},
		zlog,
	)

	transportSrv := &http.Server{Addr: cfg.Transport.Address, Handler: ingest.Handler()}
	go func() {
		zlog.Info("ingest transport listening", zap.String("address", cfg.Transport.Address))
		if err := transportSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("ingest transport failed", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TracingMiddleware())

	handlers.NewPublisherHandler(pub).SetupRoutes(router)
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	apiSrv := &http.Server{Addr: cfg.API.Address, Handler: router}
	go func() {
		zlog.Info("control api listening", zap.String("address", cfg.API.Address))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("control api failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("control api shutdown failed", zap.Error(err))
	}
	if err := transportSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("ingest transport shutdown failed", zap.Error(err))
	}

	pub.StopAll()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("tracer shutdown failed", zap.Error(err))
	}
}
