// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service needs at startup.
type Config struct {
	Addr            string
	DBPath          string
	CacheTTL        time.Duration
	SpotifyClientID string
	SpotifySecret   string
	// SpotifyUserToken, when set, enables the user-scoped catalog endpoints
	// (top tracks, recently played, saved tracks, followed artists).
	SpotifyUserToken string
	PreviewWorkers   int
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (Config, error) {
	// A missing .env file is fine; variables come from the environment then.
	_ = godotenv.Load()

	cfg := Config{
		Addr:             envOr("CADENZA_ADDR", ":8080"),
		DBPath:           envOr("CADENZA_DB_PATH", "cadenza.db"),
		CacheTTL:         30 * time.Minute,
		SpotifyClientID:  os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifySecret:    os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyUserToken: os.Getenv("SPOTIFY_USER_TOKEN"),
		PreviewWorkers:   2,
	}

	if raw := os.Getenv("CADENZA_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid CADENZA_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	if raw := os.Getenv("CADENZA_PREVIEW_WORKERS"); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil || workers < 1 {
			return Config{}, fmt.Errorf("config: invalid CADENZA_PREVIEW_WORKERS: %q", raw)
		}
		cfg.PreviewWorkers = workers
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifySecret == "" {
		return Config{}, fmt.Errorf("config: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
