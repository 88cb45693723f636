package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decor-studio/internal/config"
	"decor-studio/internal/domain/ports/adapter"
	computeAdapters "decor-studio/internal/infra/adapters/compute"
	pg "decor-studio/internal/infra/db/postgres"
	"decor-studio/internal/infra/logging"
	"decor-studio/internal/infra/metrics"
	red "decor-studio/internal/infra/redis"
	"decor-studio/internal/infra/sched"
	"decor-studio/internal/infra/web"
	"decor-studio/internal/infra/worker"
	"decor-studio/internal/poller"
	"decor-studio/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop compute, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	resultCache := red.NewResultCache(redisClient, cfg.Redis.TTL)
	claimer := red.NewClaimer(redisClient)
	events := red.NewJobEvents(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	jobRepo := pg.NewJobRepo(pool)
	creditRepo := pg.NewCreditRepo(pool)
	spaceRepo := pg.NewSpaceResultRepo(pool)

	// ---- Compute adapter ----
	var compute adapter.ComputeAdapter
	if cfg.Runtime.Dev && cfg.Compute.BaseURL == "" {
		compute = computeAdapters.NewNoopComputeAdapter()
		logger.Info().Msg("compute adapter: noop")
	} else {
		compute, err = computeAdapters.NewHTTPComputeAdapter(cfg.Compute.BaseURL, cfg.Compute.APIKey, nil)
		if err != nil {
			log.Fatalf("compute adapter: %v", err)
		}
		logger.Info().Str("base_url", cfg.Compute.BaseURL).Msg("compute adapter: http")
	}

	// ---- Worker ----
	pool2 := worker.NewPool(cfg.Worker.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()
	processor := worker.NewProcessor(jobRepo, compute, events, pool2, cfg.Worker.LeaseTTL, cfg.Compute.Timeout, logger)

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(jobRepo, creditRepo, spaceRepo, resultCache, dispatcherFunc(processor.Intake), cfg.Costs, logger)
	creditUC := usecase.NewCreditUseCase(creditRepo, logger)
	completionUC := usecase.NewCompletionUseCase(tm, spaceRepo, creditRepo, resultCache, claimer, cfg.Costs, logger)

	// Server-side poll session behind GET /jobs/{id}/result; the redis
	// subscription wakes it before the next tick.
	awaiter := poller.New(jobUC, completionUC, events, cfg.Poll.Interval, cfg.Poll.MaxAttempts, logger)

	// ---- Reaper ----
	reaper := sched.NewReaper(cfg.Worker.ReaperInterval, jobRepo, events, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP server ----
	srv := web.NewServer(jobUC, creditUC, processor, awaiter, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := server.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}

// dispatcherFunc adapts the in-process intake to the dispatcher port.
type dispatcherFunc func(ctx context.Context, jobID string) error

func (f dispatcherFunc) Dispatch(ctx context.Context, jobID string) error { return f(ctx, jobID) }
