package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	MaxResults           int           // per-candidate upstream result limit
	UpstreamTimeout      time.Duration // per-candidate request budget
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	Searcher             VideoSearcher // nil = search unconfigured
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, geocode).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.MaxResults <= 0 || c.MaxResults > 10 {
		c.MaxResults = 5
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = 10 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
