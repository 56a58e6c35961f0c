// Package geo holds the offline geographic primitives: validated
// coordinates and the bounding-box place classifier. Everything here is
// pure and synchronous so the search core stays testable without network
// access.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate reports an out-of-range or non-finite coordinate.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a validated (latitude, longitude) pair, normalized to
// 6 decimal places. Construct via NewCoordinate; the zero value is the
// null island point, which is valid but matches no bounding box.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate validates lat/lng and returns a normalized Coordinate.
// Out-of-range or non-finite input is an error, never a clamped value.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return Coordinate{}, fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinate, lat, lng)
	}
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("%w: latitude %v out of [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, fmt.Errorf("%w: longitude %v out of [-180, 180]", ErrInvalidCoordinate, lng)
	}
	return Coordinate{Lat: round6(lat), Lng: round6(lng)}, nil
}

// round6 truncates excess precision; map SDKs emit far more digits than
// a search query ever needs.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}
