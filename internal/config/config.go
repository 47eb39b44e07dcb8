// Package config collects the server's runtime settings from the
// environment. Every value has a default, so a bare `acid-rain-server`
// starts with local data directories and no origin restrictions.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Addr is the TCP endpoint carrying the raw line protocol.
	Addr string
	// GatewayAddr serves /health and the websocket bridge.
	GatewayAddr string
	// DataDir holds the words/ and leaderboard/ subdirectories.
	DataDir string

	// ReadTimeout bounds how long a peer may stay silent; zero disables
	// the deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// AllowedOrigins restricts websocket upgrades; empty allows all.
	AllowedOrigins []string

	Debug bool
}

func FromEnv() Config {
	return Config{
		Addr:           envStr("ACIDRAIN_ADDR", ":9070"),
		GatewayAddr:    envStr("ACIDRAIN_WS_ADDR", ":9071"),
		DataDir:        envStr("ACIDRAIN_DATA_DIR", "data"),
		ReadTimeout:    envDuration("ACIDRAIN_READ_TIMEOUT", 10*time.Minute),
		WriteTimeout:   envDuration("ACIDRAIN_WRITE_TIMEOUT", 10*time.Second),
		AllowedOrigins: envList("ACIDRAIN_ALLOWED_ORIGINS"),
		Debug:          envBool("ACIDRAIN_DEBUG"),
	}
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}
