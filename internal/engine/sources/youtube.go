// Package sources holds upstream video-search clients. The engine only
// sees the VideoSearcher contract; this package supplies the YouTube
// implementation.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"geotube/internal/engine"
)

const (
	ytDataAPIBase       = "https://www.googleapis.com/youtube/v3"
	ytResultsBase       = "https://www.youtube.com"
	ytInitialDataMarker = "var ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos-only filter param
	ytThumbnailBase     = "https://i.ytimg.com/vi/"
)

// YouTube searches YouTube videos. Uses the Data API v3 when a key is
// configured, with automatic fallback to a secondary key on quota/auth
// errors; without any key it scrapes ytInitialData from the results
// page when scraping is enabled. Implements engine.VideoSearcher.
type YouTube struct {
	apiKey      string
	fallbackKey string
	scrape      bool
	limiter     *rate.Limiter

	// Overridable in tests.
	apiBase     string
	resultsBase string
}

// NewYouTube builds the client. Returns ErrMissingConfiguration when no
// API key is set and the scraping fallback is disabled — better to fail
// at startup than on the first search.
func NewYouTube(apiKey, fallbackKey string, scrape bool, rps float64, burst int) (*YouTube, error) {
	if apiKey == "" && !scrape {
		return nil, engine.ErrMissingConfiguration
	}
	if rps <= 0 {
		rps = 4
	}
	if burst <= 0 {
		burst = 2
	}
	return &YouTube{
		apiKey:      apiKey,
		fallbackKey: fallbackKey,
		scrape:      scrape,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		apiBase:     ytDataAPIBase,
		resultsBase: ytResultsBase,
	}, nil
}

// Search runs one video search for query. An empty result list is
// returned as ([], nil): the caller distinguishes "nothing found" from
// a failed request.
func (yt *YouTube) Search(ctx context.Context, query string, limit int) ([]engine.Video, error) {
	if limit <= 0 || limit > 10 {
		limit = 5
	}
	if err := yt.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if yt.apiKey != "" {
		return yt.searchDataAPI(ctx, query, limit)
	}
	engine.IncrScrapeFallbacks()
	return yt.searchInitialData(ctx, query, limit)
}

// --- YouTube Data API v3 ---

type ytDataSearchResp struct {
	Items []ytDataItem `json:"items"`
}

type ytDataItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Thumbnails   struct {
			Medium struct {
				URL string `json:"url"`
			} `json:"medium"`
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

// searchDataAPI tries the primary key, then the fallback key.
func (yt *YouTube) searchDataAPI(ctx context.Context, query string, limit int) ([]engine.Video, error) {
	keys := []string{yt.apiKey}
	if yt.fallbackKey != "" {
		keys = append(keys, yt.fallbackKey)
	}
	var lastErr error
	for _, key := range keys {
		videos, err := yt.doDataSearch(ctx, query, limit, key)
		if err == nil {
			return videos, nil
		}
		lastErr = err
		slog.Debug("youtube data API key failed, trying fallback", slog.Any("err", err))
	}
	return nil, lastErr
}

func (yt *YouTube) doDataSearch(ctx context.Context, query string, limit int, apiKey string) ([]engine.Video, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("key", apiKey)

	apiURL := yt.apiBase + "/search?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube data API %d: %s", resp.StatusCode, string(body))
	}

	var result ytDataSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube data API: %w", err)
	}

	videos := make([]engine.Video, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails.Medium.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Default.URL
		}
		videos = append(videos, engine.Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailURL: thumb,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// --- ytInitialData scraping fallback ---

type ytVideoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"title"`
	OwnerText struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"ownerText"`
	DescriptionSnippet *struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"descriptionSnippet"`
	PublishedTimeText struct {
		SimpleText string `json:"simpleText"`
	} `json:"publishedTimeText"`
}

// searchInitialData scrapes YouTube search results by parsing ytInitialData.
func (yt *YouTube) searchInitialData(ctx context.Context, query string, limit int) ([]engine.Video, error) {
	searchURL := yt.resultsBase + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.8")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read youtube search response: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("ytInitialData not found in YouTube search response")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("failed to extract ytInitialData JSON")
	}
	return extractVideos(jsonData, limit), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// extractVideos recursively walks ytInitialData JSON for videoRenderer
// entries, up to limit.
func extractVideos(data []byte, limit int) []engine.Video {
	var results []engine.Video
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" {
					title := ""
					if len(vr.Title.Runs) > 0 {
						title = vr.Title.Runs[0].Text
					}
					channel := ""
					if len(vr.OwnerText.Runs) > 0 {
						channel = vr.OwnerText.Runs[0].Text
					}
					var descParts []string
					if vr.DescriptionSnippet != nil {
						for _, r := range vr.DescriptionSnippet.Runs {
							descParts = append(descParts, r.Text)
						}
					}
					results = append(results, engine.Video{
						ID:           vr.VideoID,
						Title:        title,
						Description:  strings.Join(descParts, ""),
						ThumbnailURL: ytThumbnailBase + vr.VideoID + "/hqdefault.jpg",
						ChannelTitle: channel,
						PublishedAt:  vr.PublishedTimeText.SimpleText,
					})
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}
