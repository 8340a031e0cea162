package main

import (
	"strconv"
	"time"

	"shiro/internal/buildconfig"
)

func getenvDefault(env buildconfig.Env, k, def string) string {
	if v := env.Get(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(env buildconfig.Env, k string, def int) int {
	v := env.Get(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(env buildconfig.Env, k string, def float64) float64 {
	v := env.Get(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(env buildconfig.Env, k string, def bool) bool {
	v := env.Get(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(env buildconfig.Env, k string, def time.Duration) time.Duration {
	v := env.Get(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
