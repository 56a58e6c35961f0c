package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// metrics tracks operational counters across the engine. Sub-packages
// increment through the exported helpers below.
var metrics struct {
	SearchRequests     atomic.Int64
	UpstreamRequests   atomic.Int64
	UpstreamErrors     atomic.Int64
	ScrapeFallbacks    atomic.Int64
	SupersededSearches atomic.Int64
	GeocodeRequests    atomic.Int64
	HistoryWrites      atomic.Int64
	CommentWrites      atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"upstream_requests":   metrics.UpstreamRequests.Load(),
		"upstream_errors":     metrics.UpstreamErrors.Load(),
		"scrape_fallbacks":    metrics.ScrapeFallbacks.Load(),
		"superseded_searches": metrics.SupersededSearches.Load(),
		"geocode_requests":    metrics.GeocodeRequests.Load(),
		"history_writes":      metrics.HistoryWrites.Load(),
		"comment_writes":      metrics.CommentWrites.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics renders the counters as plain text for the /metrics
// endpoint, one "name value" line per counter in a fixed order.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"search_requests", "upstream_requests", "upstream_errors",
		"scrape_fallbacks", "superseded_searches", "geocode_requests",
		"history_writes", "comment_writes",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrScrapeFallbacks() { metrics.ScrapeFallbacks.Add(1) }
func IncrGeocodeRequests() { metrics.GeocodeRequests.Add(1) }
func IncrHistoryWrites()   { metrics.HistoryWrites.Add(1) }
func IncrCommentWrites()   { metrics.CommentWrites.Add(1) }
