package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"geotube/internal/engine"
	"geotube/internal/geocode"
	"geotube/internal/store"
)

type stubSearcher struct {
	videos []engine.Video
	err    error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]engine.Video, error) {
	return s.videos, s.err
}

type stubGeocoder struct {
	result geocode.Result
	err    error
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (geocode.Result, error) {
	return g.result, g.err
}

func newTestApp(t *testing.T, searcher engine.VideoSearcher, geocoder geocode.Geocoder) *fiber.App {
	t.Helper()
	engine.Init(engine.Config{Searcher: searcher})

	history, err := store.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}
	t.Cleanup(func() { history.Close() })

	h := NewHandlers(engine.NewSessions(), geocoder, history, nil)
	return NewApp(h)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	resp, body := doJSON(t, app, "GET", "/health", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestMetricsPlainText(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "search_requests") {
		t.Errorf("expected counter names in output, got %q", raw)
	}
}

func TestSearchSuccess(t *testing.T) {
	app := newTestApp(t, &stubSearcher{videos: []engine.Video{
		{ID: "abc", Title: "Tacos en Roma Norte"},
	}}, nil)

	resp, body := doJSON(t, app, "POST", "/api/search", searchRequest{
		Lat: 19.4326, Lng: -99.1332, Query: "tacos", Intent: "selected_location",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	videos, ok := body["videos"].([]any)
	if !ok || len(videos) != 1 {
		t.Fatalf("expected 1 video, got %v", body["videos"])
	}
	if body["matched_query"] == "" {
		t.Error("expected matched_query to be set")
	}
}

func TestSearchInvalidCoordinate(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	resp, body := doJSON(t, app, "POST", "/api/search", searchRequest{
		Lat: 91.0, Lng: 0.0, Intent: "area_videos",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestSearchNoResults(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	resp, body := doJSON(t, app, "POST", "/api/search", searchRequest{
		Lat: 19.4326, Lng: -99.1332, Query: "nothing", Intent: "selected_location",
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "nothing") {
		t.Errorf("expected query in message, got %q", msg)
	}
}

func TestSearchUnconfigured(t *testing.T) {
	app := newTestApp(t, nil, nil)

	resp, _ := doJSON(t, app, "POST", "/api/search", searchRequest{
		Lat: 19.4326, Lng: -99.1332, Intent: "area_videos",
	})
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t, &stubSearcher{videos: []engine.Video{{ID: "abc", Title: "t"}}}, nil)

	resp, _ := doJSON(t, app, "POST", "/api/search", searchRequest{
		Lat: 19.4326, Lng: -99.1332, Query: "tacos", Intent: "selected_location",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("search failed with %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, "GET", "/api/session", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["pending"] != false {
		t.Errorf("expected resolved session, got pending=%v", body["pending"])
	}
	if body["output"] == nil {
		t.Error("expected session output")
	}

	resp, _ = doJSON(t, app, "POST", "/api/session/clear", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("clear failed with %d", resp.StatusCode)
	}

	_, body = doJSON(t, app, "GET", "/api/session", nil)
	if gen, _ := body["generation"].(float64); gen != 0 {
		t.Errorf("expected zeroed session after clear, got generation %v", body["generation"])
	}
}

func TestReverseGeocode(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, &stubGeocoder{result: geocode.Result{
		DisplayName: "Centro, Ciudad de México",
		City:        "Ciudad de México",
		Country:     "México",
	}})

	resp, body := doJSON(t, app, "GET", "/api/geocode/reverse?lat=19.4326&lng=-99.1332", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["city"] != "Ciudad de México" {
		t.Errorf("expected city, got %v", body["city"])
	}
}

func TestReverseGeocodeUnconfigured(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	resp, _ := doJSON(t, app, "GET", "/api/geocode/reverse?lat=1&lng=2", nil)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	entry := store.WatchEntry{VideoID: "abc", Title: "Tacos", Lat: 19.4326, Lng: -99.1332, Place: "Ciudad de México"}
	data, _ := json.Marshal(entry)

	req := httptest.NewRequest("POST", "/api/history", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "u1")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("X-User-ID", "u1")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	var listBody map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&listBody); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if total, _ := listBody["total"].(float64); total != 1 {
		t.Fatalf("expected 1 entry, got %v", listBody["total"])
	}

	// Other users see nothing.
	req = httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("X-User-ID", "u2")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&listBody); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if total, _ := listBody["total"].(float64); total != 0 {
		t.Errorf("expected isolation between users, got %v entries", listBody["total"])
	}

	req = httptest.NewRequest("DELETE", "/api/history", nil)
	req.Header.Set("X-User-ID", "u1")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	var delBody map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&delBody); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	resp.Body.Close()
	if deleted, _ := delBody["deleted"].(float64); deleted != 1 {
		t.Errorf("expected 1 deleted, got %v", delBody["deleted"])
	}
}

func TestCommentsUnconfigured(t *testing.T) {
	app := newTestApp(t, &stubSearcher{}, nil)

	resp, _ := doJSON(t, app, "GET", "/api/videos/abc/comments", nil)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "POST", "/api/videos/abc/comments", commentRequest{Text: "hola"})
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
