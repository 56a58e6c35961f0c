// Package geocode provides reverse geocoding for the map-click display
// path. The search core never depends on this: place classification for
// queries uses the offline bounding-box table in engine/geo.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"geotube/internal/engine"
)

// Result contains the place details returned by a geocoding provider.
type Result struct {
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// Geocoder converts coordinates to place details.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Result, error)
}

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim is a Geocoder backed by the OSM Nominatim API.
type Nominatim struct {
	baseURL   string
	userAgent string
}

// NewNominatim builds a client. baseURL can be empty for the public
// instance. Nominatim requires an identifying User-Agent.
func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if userAgent == "" {
		userAgent = "geotube/1.0"
	}
	return &Nominatim{baseURL: baseURL, userAgent: userAgent}
}

type nominatimResp struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode resolves a coordinate to a display string and coarse
// address parts.
func (n *Nominatim) ReverseGeocode(ctx context.Context, lat, lon float64) (Result, error) {
	engine.IncrGeocodeRequests()

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("accept-language", "es")

	reqURL := n.baseURL + "/reverse?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", n.userAgent)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return Result{}, fmt.Errorf("nominatim reverse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return Result{}, fmt.Errorf("nominatim reverse: status %d", resp.StatusCode)
	}

	var data nominatimResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Result{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	city := data.Address.City
	if city == "" {
		city = data.Address.Town
	}
	if city == "" {
		city = data.Address.Village
	}
	return Result{
		DisplayName: data.DisplayName,
		City:        city,
		State:       data.Address.State,
		Country:     data.Address.Country,
	}, nil
}
