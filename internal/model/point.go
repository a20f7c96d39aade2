// Package model defines the value types for captured building geometry:
// geo-tagged points, classified space markers, floors, and survey sessions.
package model

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidCoordinate indicates a latitude or longitude outside the valid range.
var ErrInvalidCoordinate = eris.New("model: invalid coordinate")

// GeoPoint is a geographic fix with the compass bearing observed at capture
// time. Heading is degrees clockwise from true north in [0, 360).
type GeoPoint struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    float64   `json:"heading"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewGeoPoint validates the coordinate pair and returns a GeoPoint stamped
// with the current time. Heading is normalized into [0, 360).
func NewGeoPoint(lat, lng, heading float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, eris.Wrapf(ErrInvalidCoordinate, "latitude %v", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoPoint{}, eris.Wrapf(ErrInvalidCoordinate, "longitude %v", lng)
	}
	return GeoPoint{
		Latitude:   lat,
		Longitude:  lng,
		Heading:    NormalizeHeading(heading),
		CapturedAt: time.Now().UTC(),
	}, nil
}

// NormalizeHeading maps an arbitrary bearing in degrees into [0, 360).
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// MovedTo returns a copy of p at the given coordinates, preserving the
// original heading and capture time. Coordinates are validated the same way
// as NewGeoPoint.
func (p GeoPoint) MovedTo(lat, lng float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, eris.Wrapf(ErrInvalidCoordinate, "latitude %v", lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoPoint{}, eris.Wrapf(ErrInvalidCoordinate, "longitude %v", lng)
	}
	p.Latitude = lat
	p.Longitude = lng
	return p, nil
}
