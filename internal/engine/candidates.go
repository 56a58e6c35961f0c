package engine

import (
	"strings"

	"geotube/internal/engine/geo"
)

// genericTail is the fixed backup terms appended to every candidate list.
// The builder always produces at least these, so search never runs with
// an empty candidate set.
var genericTail = []string{"news today", "viral videos", "trending"}

// BuildCandidates produces the ordered, deduplicated list of search
// strings for one search session, from most specific to generic backup.
// Pure and deterministic: no timestamps, no randomness.
func BuildCandidates(query string, place geo.PlaceDescriptor, intent IntentKind) []string {
	query = strings.TrimSpace(query)
	loc := place.Locality()

	var cands []string
	switch {
	case place.IsGeneric():
		// No box matched: nothing location-specific is worth phrasing.
		if query != "" {
			cands = append(cands, query, query+" videos")
		}

	case intent == IntentCurrentLocation && query != "":
		cands = append(cands,
			join(query, loc, place.Region),
			join(query, "en", loc),
			query+" cerca de mi ubicación",
			query+" local",
		)

	case intent == IntentCurrentLocation:
		cands = append(cands,
			join("news", loc, "today"),
			join("events", loc),
		)
		if place.City != "" {
			cands = append(cands, join(place.City, place.Region, "live"))
		}
		cands = append(cands, join("que hacer en", loc))

	case intent == IntentSelectedLocation && query != "":
		cands = append(cands,
			join(query, loc, place.Region),
			join(query, "en", loc),
			join(query, place.Region),
			join(query, place.Country),
		)

	case intent == IntentSelectedLocation:
		cands = append(cands,
			join("news", loc, "today"),
			join("events", loc),
		)
		if place.City != "" {
			cands = append(cands, join(place.City, place.Region, "travel"), join(place.City, place.Country))
		}

	case query != "": // area_videos
		cands = append(cands,
			join(query, loc),
			join(query, place.Region),
			join(query, place.Country),
			query+" videos",
		)

	default: // area_videos, no query
		cands = append(cands, join(loc, "videos"))
		if place.Region != "" {
			cands = append(cands, join(place.Region, "videos"))
		}
		cands = append(cands, join("travel", loc))
	}

	cands = append(cands, genericTail...)
	return dedupe(cands)
}

// join concatenates non-empty parts with single spaces. Country-level
// descriptors have an empty city, so templates collapse cleanly instead
// of emitting double spaces.
func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// dedupe removes duplicate strings, keeping the first occurrence's
// position. Empty strings are dropped.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
