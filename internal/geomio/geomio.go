// Package geomio converts captured floor geometry to and from standard
// geospatial formats.
package geomio

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/dwellscan/survey-cli/internal/model"
)

// ErrDegenerateBoundary is returned when a boundary has fewer than three
// corners and cannot form a polygon.
var ErrDegenerateBoundary = eris.New("geomio: boundary needs at least 3 corners")

// BoundaryPolygon converts an ordered corner list to a go-geom Polygon.
// The boundary is stored open; the closing edge is added here.
func BoundaryPolygon(boundary []model.GeoPoint) (*geom.Polygon, error) {
	if len(boundary) < 3 {
		return nil, ErrDegenerateBoundary
	}

	flat := make([]float64, 0, (len(boundary)+1)*2)
	for _, p := range boundary {
		flat = append(flat, p.Longitude, p.Latitude)
	}
	flat = append(flat, boundary[0].Longitude, boundary[0].Latitude)

	ring := geom.NewLinearRingFlat(geom.XY, flat)
	poly := geom.NewPolygon(geom.XY).SetSRID(4326)
	if err := poly.Push(ring); err != nil {
		return nil, eris.Wrap(err, "geomio: build boundary ring")
	}
	return poly, nil
}

// SignedArea computes the shoelace area of the boundary in squared
// degrees. Positive means counterclockwise winding.
func SignedArea(boundary []model.GeoPoint) float64 {
	if len(boundary) < 3 {
		return 0
	}
	var sum float64
	for i, p := range boundary {
		q := boundary[(i+1)%len(boundary)]
		sum += p.Longitude*q.Latitude - q.Longitude*p.Latitude
	}
	return sum / 2
}

// IsCounterclockwise reports the winding direction of the boundary.
func IsCounterclockwise(boundary []model.GeoPoint) bool {
	return SignedArea(boundary) > 0
}

// Centroid returns the arithmetic mean of the boundary corners. It is
// used as the reference point for bearing calculations.
func Centroid(boundary []model.GeoPoint) (lat, lng float64, ok bool) {
	if len(boundary) == 0 {
		return 0, 0, false
	}
	for _, p := range boundary {
		lat += p.Latitude
		lng += p.Longitude
	}
	n := float64(len(boundary))
	return lat / n, lng / n, true
}
