package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shiro/internal/buildconfig"
)

func TestReadSettings_Defaults(t *testing.T) {
	s, err := readSettings(buildconfig.Env{})
	require.NoError(t, err)

	require.Equal(t, ":2323", s.listenAddr)
	require.Nil(t, s.upstream)
	require.Equal(t, "public", s.staticDir)
	require.Equal(t, 5*time.Minute, s.cacheTTL)
	require.Equal(t, 10_000, s.cacheMaxEntries)
	require.Equal(t, 2.0, s.throttleRPS)
	require.Equal(t, 10, s.throttleBurst)
	require.False(t, s.trustXFF)
	require.Equal(t, 16, s.imageConcurrency)
}

func TestReadSettings_Overrides(t *testing.T) {
	s, err := readSettings(buildconfig.Env{
		"LISTEN_ADDR":      "127.0.0.1:9000",
		"UPSTREAM_URL":     "https://api.example.com/v2",
		"CACHE_TTL":        "30s",
		"THROTTLE_RPS":     "0",
		"TRUST_XFF":        "true",
		"CACHE_REDIS_ADDR": "localhost:6379",
		"CACHE_REDIS_DB":   "not-a-number",
	})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9000", s.listenAddr)
	require.Equal(t, "https://api.example.com/v2", s.upstream.String())
	require.Equal(t, 30*time.Second, s.cacheTTL)
	require.Equal(t, 0.0, s.throttleRPS)
	require.True(t, s.trustXFF)
	require.Equal(t, "localhost:6379", s.cacheRedisAddr)
	require.Equal(t, 0, s.cacheRedisDB)
}

func TestReadSettings_Invalid(t *testing.T) {
	cases := []buildconfig.Env{
		{"UPSTREAM_URL": "ftp://example.com"},
		{"THROTTLE_RPS": "-1"},
		{"THROTTLE_RPS": "1", "THROTTLE_BURST": "0"},
		{"IMAGE_CONCURRENCY": "-2"},
		{"CACHE_MAX_ENTRIES": "0"},
	}
	for _, env := range cases {
		if _, err := readSettings(env); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}
