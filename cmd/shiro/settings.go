package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"shiro/internal/buildconfig"
	"shiro/internal/server"
)

// settings são os knobs de runtime (fora da buildconfig.Config).
type settings struct {
	listenAddr string
	upstream   *url.URL
	staticDir  string
	siteTitle  string

	cacheRedisAddr     string
	cacheRedisPassword string
	cacheRedisDB       int
	cacheTTL           time.Duration
	cacheMaxEntries    int

	throttleRPS      float64
	throttleBurst    int
	trustXFF         bool
	imageConcurrency int
}

func readSettings(env buildconfig.Env) (settings, error) {
	s := settings{}
	s.listenAddr = getenvDefault(env, "LISTEN_ADDR", ":2323")
	s.staticDir = getenvDefault(env, "STATIC_DIR", "public")
	s.siteTitle = getenvDefault(env, "SITE_TITLE", "Shiro")

	s.cacheRedisAddr = env.Get("CACHE_REDIS_ADDR")
	s.cacheRedisPassword = env.Get("CACHE_REDIS_PASSWORD")
	s.cacheRedisDB = getenvIntDefault(env, "CACHE_REDIS_DB", 0)
	s.cacheTTL = getenvDurationDefault(env, "CACHE_TTL", 5*time.Minute)
	s.cacheMaxEntries = getenvIntDefault(env, "CACHE_MAX_ENTRIES", 10_000)

	s.throttleRPS = getenvFloatDefault(env, "THROTTLE_RPS", 2)
	s.throttleBurst = getenvIntDefault(env, "THROTTLE_BURST", 10)
	s.trustXFF = getenvBoolDefault(env, "TRUST_XFF", false)
	s.imageConcurrency = getenvIntDefault(env, "IMAGE_CONCURRENCY", 16)

	up, err := server.ParseUpstream(env.Get("UPSTREAM_URL"))
	if err != nil {
		return settings{}, err
	}
	s.upstream = up

	if strings.TrimSpace(s.listenAddr) == "" {
		return settings{}, errors.New("LISTEN_ADDR must not be empty")
	}
	if s.throttleRPS < 0 {
		return settings{}, errors.New("THROTTLE_RPS must be >= 0")
	}
	if s.throttleRPS > 0 && s.throttleBurst <= 0 {
		return settings{}, errors.New("THROTTLE_BURST must be > 0")
	}
	if s.cacheMaxEntries <= 0 {
		return settings{}, errors.New("CACHE_MAX_ENTRIES must be > 0")
	}
	if s.imageConcurrency < 0 {
		return settings{}, errors.New("IMAGE_CONCURRENCY must be >= 0")
	}
	return s, nil
}

// loadEnv lê o .env e sobrepõe o ambiente do processo, que tem precedência
// para os knobs de runtime. dotenv volta separado: ASSETPREFIX só vale de lá.
func loadEnv(flags *rootFlags) (env, dotenv buildconfig.Env, err error) {
	dotenv, err = buildconfig.LoadDotEnv(flags.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", flags.envFile, err)
	}

	env = buildconfig.Env{}
	for k, v := range dotenv {
		env[k] = v
	}
	for k, v := range buildconfig.EnvFromOS() {
		env[k] = v
	}
	return env, dotenv, nil
}

func isProduction(env buildconfig.Env) bool { return env.Get("APP_ENV") == "production" }

// buildConfig monta a configuração uma única vez, antes do servidor subir.
func buildConfig(ctx context.Context, flags *rootFlags, env, dotenv buildconfig.Env, log *zap.Logger) buildconfig.Config {
	gitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return buildconfig.Build(gitCtx, buildconfig.Options{
		Env:    env,
		DotEnv: dotenv,
		Git:    buildconfig.ExecGit{Dir: flags.gitDir},
		Logger: log,
	})
}
