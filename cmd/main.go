package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"user-search/internal/config"
	"user-search/internal/delivery"
	applog "user-search/internal/logger"
	"user-search/internal/service"
	"user-search/internal/source"
)

func main() {
	envLoaded := config.LoadDotEnv()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envLoaded {
		logger.Info("environment variables loaded from .env file")
	} else {
		logger.Info(".env file not found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := source.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open data source", zap.String("source", cfg.DataSource), zap.Error(err))
	}
	defer closeSource()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(reg)

	lookup := service.NewLookupService(src, logger, metrics)
	gate := service.NewGate(lookup, cfg.DebounceDelay,
		service.WithLookupTimeout(cfg.LookupTimeout),
		service.WithGateLogger(logger),
		service.WithGateMetrics(metrics),
	)

	opts := delivery.AppOptions{
		AllowOrigins: cfg.CORSAllowOrigins,
		ProxyHeader:  cfg.ProxyHeader,
		AccessLog:    true,
	}
	if cfg.MetricsEnabled {
		opts.Gatherer = reg
	}
	app := delivery.NewApp(opts, delivery.NewSearchHandler(gate, logger))

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.HTTPAddr), zap.Error(err))
	}

	logger.Info("server running",
		zap.String("addr", ln.Addr().String()),
		zap.Duration("debounce_delay", cfg.DebounceDelay),
		zap.String("data_source", cfg.DataSource),
	)

	// ждущие debounce запросы получают 503, выполняющиеся поиски доводятся до конца
	if err := delivery.Serve(ctx, app, ln, cfg.LookupTimeout+5*time.Second, gate.Close); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
