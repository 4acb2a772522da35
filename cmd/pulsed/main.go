package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/atelierhq/pulse/pkg/alerting"
	"github.com/atelierhq/pulse/pkg/api"
	"github.com/atelierhq/pulse/pkg/cache"
	"github.com/atelierhq/pulse/pkg/collector"
	"github.com/atelierhq/pulse/pkg/config"
	"github.com/atelierhq/pulse/pkg/db"
	"github.com/atelierhq/pulse/pkg/lifecycle"
	"github.com/atelierhq/pulse/pkg/query"
	"github.com/atelierhq/pulse/pkg/sysinfo"
)

func main() {
	configPath := flag.String("config", "/etc/pulse/pulse.json", "Path to config file")
	flag.Parse()

	var cfg config.PulseConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	var queryCache cache.Cache = cache.NewNoop()

	if cfg.Redis != nil {
		redisCache, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Printf("Redis unavailable, serving without cache: %v", err)
		} else {
			queryCache = redisCache
			defer redisCache.Close()
		}
	}

	hub := api.NewHub()
	defer hub.Close()

	engineOpts := []alerting.Option{
		alerting.WithNotifier(hub),
		alerting.WithNotifier(alerting.NewFeedNotifier(queryCache)),
	}

	for _, wh := range cfg.Webhooks {
		if wh.Enabled {
			engineOpts = append(engineOpts, alerting.WithNotifier(alerting.NewWebhookNotifier(wh)))
		}
	}

	engine := alerting.NewEngine(database, cfg.Thresholds, engineOpts...)

	host := sysinfo.NewHostProvider(cfg.DiskPath)

	sysCollector, err := collector.NewSystemCollector(
		database, engine, host, time.Duration(cfg.CollectInterval), nil)
	if err != nil {
		log.Fatalf("Failed to create collector: %v", err)
	}

	sysCollector.EnableErrorRateCheck(database, time.Duration(cfg.Thresholds.ErrorRateWindow))

	janitor := collector.NewJanitor(database, time.Duration(cfg.Retention), nil)

	queries := query.NewService(database, database, queryCache, host, cfg.Thresholds)

	server := api.NewServer(queries, database, hub,
		api.WithRequestCapture(database),
		api.WithRateLimit(cfg.RateLimitPerSec),
		api.WithAlertFeed(queryCache),
	)
	defer server.Close()

	err = lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "pulse",
		Handler:     server.Router(),
		Services:    []lifecycle.Service{sysCollector, janitor},
	})
	if err != nil {
		log.Fatalf("Service terminated: %v", err)
	}
}
