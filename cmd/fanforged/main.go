package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanforge/config"
	"fanforge/core/events"
	"fanforge/gateway"
	"fanforge/gateway/middleware"
	"fanforge/native/commitment"
	"fanforge/native/guild"
	"fanforge/native/payout"
	"fanforge/native/pitch"
	"fanforge/native/registry"
	"fanforge/observability/logging"
	"fanforge/observability/metrics"
	"fanforge/storage/ledgerstore"
	"fanforge/storage/memory"
)

const (
	ecosystemFundAccount    = "platform:ecosystem-fund"
	platformTreasuryAccount = "platform:treasury"
)

func main() {
	configPath := flag.String("config", "fanforge.toml", "path to the economics configuration file")
	schedulePath := flag.String("schedule", "", "optional YAML payout schedule override")
	archivePath := flag.String("archive", "", "optional sqlite archive path for terminal records")
	listenAddr := flag.String("listen", ":8080", "gateway listen address")
	env := flag.String("env", "", "deployment environment label")
	flag.Parse()

	logger := logging.Setup("fanforged", *env)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if *schedulePath != "" {
		if err := cfg.LoadPayoutSchedule(*schedulePath); err != nil {
			logger.Error("failed to load payout schedule", "err", err)
			os.Exit(1)
		}
	}
	params, err := registry.FromConfig(cfg, 1)
	if err != nil {
		logger.Error("configuration integrity check failed", "err", err)
		os.Exit(1)
	}
	store := registry.NewStore(params)

	ledger := memory.NewStore()

	commitments := commitment.NewEngine()
	commitments.SetState(ledger)
	commitments.SetLocker(ledger.Locker())
	commitments.SetRegistry(store)
	commitments.SetEcosystemFund(ecosystemFundAccount)

	guilds := guild.NewEngine()
	guilds.SetState(ledger)
	guilds.SetLocker(ledger.Locker())
	guilds.SetRegistry(store)

	pitches := pitch.NewEngine()
	pitches.SetState(ledger)
	pitches.SetLocker(ledger.Locker())
	pitches.SetRegistry(store)
	pitches.SetPlatformTreasury(platformTreasuryAccount)

	payouts := payout.NewEngine()
	payouts.SetState(ledger)
	payouts.SetLocker(ledger.Locker())
	payouts.SetRegistry(store)

	obs := middleware.NewObservability(middleware.ObservabilityConfig{
		ServiceName: "fanforged",
		LogRequests: true,
	}, logger)

	subscribers := []events.Emitter{metrics.NewObserver(obs.Registerer())}
	if *archivePath != "" {
		archive, err := ledgerstore.Open(*archivePath)
		if err != nil {
			logger.Error("failed to open ledger archive", "err", err)
			os.Exit(1)
		}
		recorder := ledgerstore.NewRecorder(archive, logger)
		recorder.SetCommitmentSource(commitments)
		recorder.SetPayoutSource(payouts)
		recorder.SetPitchSource(pitches)
		subscribers = append(subscribers, recorder)
		logger.Info("ledger archive enabled", "path", *archivePath)
	}
	emitter := events.Fanout(subscribers...)
	commitments.SetEmitter(emitter)
	guilds.SetEmitter(emitter)
	pitches.SetEmitter(emitter)
	payouts.SetEmitter(emitter)

	limiter := middleware.NewRateLimiter(map[string]middleware.RateLimit{
		"v1": {RequestsPerMinute: 600, Burst: 30},
	}, logger)

	server := gateway.NewServer(gateway.Config{
		Logger:      logger,
		Registry:    store,
		Commitments: commitments,
		Guilds:      guilds,
		Pitches:     pitches,
		Payouts:     payouts,
	})

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           server.Router(obs, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		version := params.Version
		for range reload {
			next, err := config.Load(*configPath)
			if err != nil {
				logger.Error("reload: failed to load configuration", "err", err)
				continue
			}
			version++
			swapped, err := registry.FromConfig(next, version)
			if err != nil {
				logger.Error("reload: configuration integrity check failed", "err", err)
				continue
			}
			store.Swap(swapped)
			logger.Info("registry hot-swapped", "version", version)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}()

	logger.Info("fanforged listening", "addr", *listenAddr, "registryVersion", params.Version)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("gateway terminated", "err", err)
		os.Exit(1)
	}
}
