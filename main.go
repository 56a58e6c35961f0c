// geotube — location-based YouTube discovery service.
//
// Turns a map coordinate (or the browser's geolocation) into a YouTube
// search session: classifies the coordinate, builds a ladder of query
// candidates, and returns the first candidate that yields videos.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"geotube/internal/engine"
	"geotube/internal/engine/sources"
	"geotube/internal/geocode"
	"geotube/internal/server"
	"geotube/internal/store"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	port := env.Str("PORT", "8080")
	slog.Info("starting geotube",
		slog.String("version", version),
		slog.String("port", port),
	)

	initEngine()

	ctx := context.Background()
	handlers := server.NewHandlers(
		engine.NewSessions(),
		initGeocoder(),
		initHistory(),
		initComments(ctx),
	)

	app := server.NewApp(handlers)
	if err := app.Listen(":" + port); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initEngine() {
	c := engine.Config{
		MaxResults:           env.Int("MAX_RESULTS", 5),
		UpstreamTimeout:      env.Duration("UPSTREAM_TIMEOUT", 10*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	yt, err := sources.NewYouTube(
		env.Str("YOUTUBE_API_KEY", ""),
		env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		env.Str("YOUTUBE_SCRAPE_FALLBACK", "true") == "true",
		env.Float("YOUTUBE_RPS", 4),
		env.Int("YOUTUBE_BURST", 2),
	)
	switch {
	case errors.Is(err, engine.ErrMissingConfiguration):
		slog.Warn("no YouTube credentials and scraping disabled, search will answer unconfigured")
	case err != nil:
		slog.Error("youtube client init failed", slog.Any("error", err))
	default:
		c.Searcher = yt
	}

	engine.Init(c)
	engine.InitCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 10*time.Minute),
		c.CacheMaxEntries,
		c.CacheCleanupInterval,
	)
}

func initGeocoder() geocode.Geocoder {
	if env.Str("GEOCODE_ENABLED", "true") != "true" {
		return nil
	}
	return geocode.NewNominatim(
		env.Str("NOMINATIM_URL", ""),
		env.Str("NOMINATIM_USER_AGENT", "geotube/"+version),
	)
}

func initHistory() *store.History {
	path := env.Str("HISTORY_DB", "")
	if path == "" {
		slog.Info("HISTORY_DB not set, watch history disabled")
		return nil
	}
	h, err := store.OpenHistory(path)
	if err != nil {
		slog.Error("history store init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("watch history enabled", slog.String("path", path))
	return h
}

func initComments(ctx context.Context) *store.Comments {
	url := env.Str("DATABASE_URL", "")
	if url == "" {
		slog.Info("DATABASE_URL not set, comments disabled")
		return nil
	}
	c, err := store.ConnectComments(ctx, url)
	if err != nil {
		slog.Error("comments store init failed", slog.Any("error", err))
		return nil
	}
	return c
}
