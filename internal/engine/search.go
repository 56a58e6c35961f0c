package engine

import (
	"context"
	"fmt"
	"log/slog"

	"geotube/internal/engine/geo"
)

// Search runs one location search: classify the coordinate, build the
// candidate list, and try candidates strictly in order against the
// upstream searcher. The first candidate returning at least one item
// wins and later candidates are not attempted. At most one upstream
// round trip is in flight at a time; candidate lists are short (≤ 8), so
// sequential fallback is preferred over parallel fan-out.
//
// All failures are recovered into a *SearchError wrapping one of the
// taxonomy sentinels; no raw transport error escapes.
func Search(ctx context.Context, coord geo.Coordinate, query string, intent IntentKind) (*SearchOutput, error) {
	metrics.SearchRequests.Add(1)

	if cfg.Searcher == nil {
		return nil, searchErr(ErrMissingConfiguration, intent, query)
	}

	place := geo.Classify(coord)
	candidates := BuildCandidates(query, place, intent)

	key := CacheKey(coord.String(), query, string(intent))
	if out, ok := CacheGet(ctx, key); ok {
		return &out, nil
	}

	var lastErr error
	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, searchErr(fmt.Errorf("%w: %w", ErrUpstream, err), intent, query)
		}

		videos, err := searchCandidate(ctx, cand)
		metrics.UpstreamRequests.Add(1)
		lastErr = err
		if err != nil {
			metrics.UpstreamErrors.Add(1)
			slog.Debug("candidate failed, advancing",
				slog.String("candidate", cand), slog.Any("error", err))
			continue
		}
		if len(videos) == 0 {
			slog.Debug("candidate empty, advancing", slog.String("candidate", cand))
			continue
		}

		out := &SearchOutput{
			Coordinate:   coord,
			Place:        place,
			Query:        query,
			Intent:       intent,
			MatchedQuery: cand,
			Attempts:     i + 1,
			Videos:       annotate(videos, coord, place, query, intent, cand),
		}
		CacheSet(ctx, key, *out)
		slog.Info("search resolved",
			slog.String("place", place.DisplayName),
			slog.String("matched", cand),
			slog.Int("attempts", i+1),
			slog.Int("videos", len(out.Videos)),
		)
		return out, nil
	}

	// Exhausted. The last attempt's failure decides the taxonomy kind:
	// a transport/auth error is UpstreamError, a clean empty set is NoResults.
	if lastErr != nil {
		return nil, searchErr(fmt.Errorf("%w: %w", ErrUpstream, lastErr), intent, query)
	}
	return nil, searchErr(ErrNoResults, intent, query)
}

// searchCandidate issues one upstream request under the per-candidate
// timeout. A timeout counts as a failed candidate, not a fatal error.
func searchCandidate(ctx context.Context, candidate string) ([]Video, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.UpstreamTimeout)
	defer cancel()
	return cfg.Searcher.Search(reqCtx, candidate, cfg.MaxResults)
}

// annotate stamps every upstream video with the session that found it.
func annotate(videos []Video, coord geo.Coordinate, place geo.PlaceDescriptor, query string, intent IntentKind, matched string) []VideoResult {
	out := make([]VideoResult, len(videos))
	for i, v := range videos {
		out[i] = VideoResult{
			Video:        v,
			Coordinate:   coord,
			Place:        place,
			Query:        query,
			Intent:       intent,
			MatchedQuery: matched,
		}
	}
	return out
}
