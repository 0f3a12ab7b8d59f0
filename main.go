package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backflowdir/discovery/config"
	"github.com/backflowdir/discovery/geocoder"
	"github.com/backflowdir/discovery/postgres"
	"github.com/backflowdir/discovery/promotion"
	"github.com/backflowdir/discovery/proximity"
	"github.com/backflowdir/discovery/ratelimit"
	"github.com/backflowdir/discovery/resolver"
	"github.com/backflowdir/discovery/staticgeo"
	"github.com/backflowdir/discovery/web"
	"github.com/backflowdir/discovery/web/handlers"
)

func main() {
	_ = godotenv.Load() // Load .env file if present

	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan

		log.Info("received signal, shutting down")

		cancel()
	}()

	db, err := postgres.Open(cfg.Dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := postgres.NewStore(db, log)
	dyncfg := config.NewService(db)

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = cache.Close() }()
	}

	geo := geocoder.New(geocoder.Config{
		BaseURL:        cfg.GeocoderBaseURL,
		UserAgent:      cfg.GeocoderUserAgent,
		Timeout:        cfg.GeocoderTimeout,
		RequestsPerSec: 1,
	}, cache, log)

	dataset, err := staticgeo.Load()
	if err != nil {
		return err
	}

	geocodeLimiter := ratelimit.New(cfg.GeocodeBudget, time.Minute)

	chain := resolver.Default(dataset, store, geo, geocodeLimiter, log)
	searcher := proximity.NewSearcher(store, log)

	startupCtx, startupCancel := context.WithTimeout(ctx, 5*time.Second)
	promotionRadius, err := dyncfg.GetFloat(startupCtx, config.KeyPromotionRadiusMiles, promotion.DefaultRadiusMiles)
	startupCancel()

	if err != nil {
		log.Warn("promotion radius lookup failed, using default", zap.Error(err))

		promotionRadius = promotion.DefaultRadiusMiles
	}

	engine := promotion.NewEngine(store, promotionRadius, log)
	service := web.NewService(chain, searcher, engine, store, dyncfg, log)

	group := handlers.NewHandlerGroup(handlers.Dependencies{
		Logger: log,
		Search: service,
		Geo:    geo,
		DB:     db,
		Limits: handlers.RateLimits{
			Geocode: geocodeLimiter,
			Reverse: ratelimit.New(cfg.ReverseBudget, time.Minute),
			Suggest: ratelimit.New(cfg.SuggestBudget, time.Minute),
		},
	})

	srv := web.NewServer(cfg.Addr, group.Router(log), log)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
