package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiro/internal/pagecache"
	"shiro/internal/server"
	"shiro/middleware/throttle"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sobe o servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(parent context.Context, flags *rootFlags) error {
	if parent == nil {
		parent = context.Background()
	}

	env, dotenv, err := loadEnv(flags)
	if err != nil {
		return err
	}
	log, err := newLogger(isProduction(env), flags.debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st, err := readSettings(env)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := buildConfig(ctx, flags, env, dotenv, log)

	mem := pagecache.NewMemory(st.cacheTTL, pagecache.WithMaxEntries(st.cacheMaxEntries))
	var cache pagecache.Store = mem
	if st.cacheRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     st.cacheRedisAddr,
			Password: st.cacheRedisPassword,
			DB:       st.cacheRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		rc := pagecache.NewRedis(rdb, pagecache.WithTTL(st.cacheTTL))
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		pingCancel()
		if err != nil {
			return fmt.Errorf("redis cache ping: %w", err)
		}
		cache = rc
	} else {
		mem.StartJanitor(ctx)
	}

	var buckets *throttle.Buckets
	if st.throttleRPS > 0 {
		buckets = throttle.NewBuckets(st.throttleRPS, st.throttleBurst)
		buckets.StartJanitor(ctx)
	}

	h, err := server.New(server.Options{
		Config:           cfg,
		Logger:           log,
		Upstream:         st.upstream,
		StaticDir:        st.staticDir,
		Cache:            cache,
		Buckets:          buckets,
		TrustXFF:         st.trustXFF,
		SiteTitle:        st.siteTitle,
		ImageConcurrency: st.imageConcurrency,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", st.listenAddr)
	if err != nil {
		return err
	}

	log.Info("shiro listening",
		zap.String("addr", ln.Addr().String()),
		zap.Bool("production", cfg.Production),
		zap.String("commit", cfg.CommitHash()),
		zap.String("commit_url", cfg.CommitURL()),
		zap.String("upstream", upstreamString(st)),
		zap.Bool("redis_cache", st.cacheRedisAddr != ""),
		zap.Float64("throttle_rps", st.throttleRPS),
		zap.Bool("analyzer", cfg.Analyzer.Enabled))

	return server.Serve(ctx, server.NewHTTPServer(st.listenAddr, h), ln, 10*time.Second, log)
}

func upstreamString(st settings) string {
	if st.upstream == nil {
		return ""
	}
	return st.upstream.String()
}
