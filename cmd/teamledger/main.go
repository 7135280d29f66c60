package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"teamledger/internal/cache"
	"teamledger/internal/cli"
	"teamledger/internal/config"
	"teamledger/internal/events"
	apphttp "teamledger/internal/http"
	"teamledger/internal/ledger"
	"teamledger/internal/log"
	"teamledger/internal/receipts"
	"teamledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal("configuration", err)
	}
	logger, err := cli.SetupLogger(cfg.LogLevel)
	if err != nil {
		cli.Fatal("logger", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err)
		stop()
		cli.Fatal("teamledger", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	reg := receipts.NewRegistry(logger)

	opts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithReceiptReleaser(reg),
	}
	roster := cfg.Roster()
	if cfg.SeedDemo {
		opts = append(opts, ledger.WithExpenses(ledger.DemoExpenses()))
		if len(roster) == 0 {
			roster = ledger.DemoRoster()
		}
	}
	if len(roster) > 0 {
		opts = append(opts, ledger.WithRoster(roster...))
	}
	l := ledger.New(opts...)

	svc := services.NewLedgerService(l, reg, newPublisher(cfg, logger), logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close ledger service", log.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc, reg, apphttp.Options{
		Delimiter:          cfg.Delimiter(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheSize:    cfg.ReportCacheSize,
		ReportCacheTTL:     cfg.ReportCacheTTL,
		Logger:             logger,
	})

	caches := cache.NewManager(logger)
	for _, c := range srv.Cleaners() {
		caches.Register(c)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting teamledger server",
			"port", cfg.Port,
			"expenses", l.Len(),
			"roster_size", len(roster),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return caches.Run(gctx, time.Minute)
	})
	return g.Wait()
}

// newPublisher connects to the broker when one is configured. A broker that
// is down at start-up degrades to dropping events rather than refusing to serve.
func newPublisher(cfg *config.Config, logger *log.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP not configured, ledger events disabled")
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		logger.Warn("Failed to connect to AMQP, ledger events disabled", log.FieldError, err)
		return events.NopPublisher{}
	}
	logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
	return p
}
