package engine

import (
	"context"

	"geotube/internal/engine/geo"
)

// IntentKind selects the query phrasing templates for a search.
type IntentKind string

const (
	IntentCurrentLocation  IntentKind = "current_location"
	IntentSelectedLocation IntentKind = "selected_location"
	IntentAreaVideos       IntentKind = "area_videos"
)

// Valid reports whether k is one of the three known intents.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentCurrentLocation, IntentSelectedLocation, IntentAreaVideos:
		return true
	}
	return false
}

// Video is one raw item returned by an upstream video search.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at"`
}

// VideoSearcher is the upstream search contract the orchestrator depends
// on. An empty slice with a nil error means "no results for this query";
// a non-nil error means the request itself failed.
type VideoSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]Video, error)
}

// VideoResult is an upstream video annotated with the search that found
// it. Created only by the orchestrator; never mutated afterwards.
type VideoResult struct {
	Video
	Coordinate   geo.Coordinate      `json:"coordinate"`
	Place        geo.PlaceDescriptor `json:"place"`
	Query        string              `json:"query,omitempty"`
	Intent       IntentKind          `json:"intent"`
	MatchedQuery string              `json:"matched_query"`
}

// SearchOutput is the result of one successful search operation.
type SearchOutput struct {
	Coordinate   geo.Coordinate      `json:"coordinate"`
	Place        geo.PlaceDescriptor `json:"place"`
	Query        string              `json:"query,omitempty"`
	Intent       IntentKind          `json:"intent"`
	MatchedQuery string              `json:"matched_query"`
	Attempts     int                 `json:"attempts"`
	Videos       []VideoResult       `json:"videos"`
}
