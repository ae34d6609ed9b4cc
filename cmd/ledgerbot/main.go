package main

import (
	"context"
	"os"
	"time"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/bot"
	"ledgerbot/internal/cache"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/command"
	"ledgerbot/internal/config"
	"ledgerbot/internal/core"
	apphttp "ledgerbot/internal/http"
	"ledgerbot/internal/ledger"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/middleware/ratelimit"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(config.Load().LogLevel, nil)
	cfg := cli.LoadAndValidateConfig(logger)

	registry := ledger.NewRegistry()
	dispatcher := command.NewDispatcher(registry, core.NewFormatter(cfg.Locale), logger)

	replies := cache.NewLRUCache[bot.Reply](cfg.DedupeCacheSize, cfg.DedupeTTL)
	caches := cache.NewManager(logger)
	caches.Register(replies)
	b := bot.New(dispatcher, replies, logger)

	userLimiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	ipLimiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute * 10})

	var consumer *amqp.Consumer
	if cfg.AMQPEnabled() {
		consumer = amqp.NewConsumer(amqp.Config{
			URL:          cfg.AMQPURL,
			Exchange:     cfg.AMQPExchange,
			InboundQueue: cfg.AMQPInboundQueue,
			ReplyQueue:   cfg.AMQPReplyQueue,
		}, b, logger)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Bot:            b,
		Logger:         logger,
		UserLimiter:    userLimiter,
		IPLimiter:      ipLimiter,
		TrustedProxies: cfg.TrustedProxies,
		Ready: func() error {
			if consumer == nil {
				return nil
			}
			return consumer.Ready()
		},
	})

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, cfg.ShutdownTimeout) })
	g.Go(func() error { return caches.Run(ctx, time.Minute) })
	g.Go(func() error { return userLimiter.Run(ctx) })
	g.Go(func() error { return ipLimiter.Run(ctx) })
	if consumer != nil {
		g.Go(func() error { return consumer.Run(ctx) })
	}

	logger.Info("Starting ledger bot",
		"port", cfg.Port,
		"locale", cfg.Locale,
		"amqp_enabled", cfg.AMQPEnabled(),
		applog.FieldOperation, applog.OpStartup,
	)
	err := g.Wait()
	logStats(logger, registry, replies, userLimiter, ipLimiter, srv)
	if err != nil {
		logger.Error("Ledger bot stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger bot stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

// logStats reports the process counters once on the way out.
func logStats(logger *applog.Logger, registry *ledger.Registry, replies *cache.LRUCache[bot.Reply],
	userLimiter, ipLimiter *ratelimit.Limiter, srv *apphttp.Server) {
	dedupe := replies.Stats()
	users, ips := userLimiter.GetMetrics(), ipLimiter.GetMetrics()
	logger.Info("Final counters",
		"users", registry.Len(),
		"dedupe_hits", dedupe.Hits,
		"dedupe_misses", dedupe.Misses,
		"dedupe_evictions", dedupe.Evictions,
		"user_limit_rejected", users.TotalHits,
		"user_limit_clients", users.ClientCount,
		"ip_limit_rejected", ips.TotalHits,
		"ip_limit_clients", ips.ClientCount,
		"suspicious_requests", srv.SuspiciousRequests(),
		applog.FieldOperation, applog.OpShutdown,
	)
}
