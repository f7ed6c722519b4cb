package main

import (
	"os"
	"strconv"
	"time"

	"github.com/laterq/laterq"
)

type config struct {
	RedisAddr    string
	RedisDB      int
	PollInterval time.Duration
	Codec        string
	Port         string
}

func loadConfig() config {
	return config{
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		PollInterval: getEnvDuration("POLL_INTERVAL", laterq.DefaultConfig().PollInterval),
		Codec:        getEnv("JOB_CODEC", "json"),
		Port:         getEnv("PORT", "8080"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
