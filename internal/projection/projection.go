// Package projection maps geographic coordinates onto a square logical
// viewport and back. A View is a snapshot of the bounding window, scale, and
// pan offset used for one render pass; inverse projection must use the same
// snapshot that produced the forward render, and the window must be
// recomputed from the live point set whenever that set changes.
package projection

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/model"
)

const (
	// ViewportSize is the side length of the square logical viewport.
	ViewportSize = 200.0

	// padding is the geographic margin added symmetrically around the
	// bounding window so edge points are not flush with the border.
	padding = 0.0005

	// minSpan floors the window extent per axis, keeping the scale finite
	// when the point set has one or two points.
	minSpan = 0.0005
)

// ErrNoContent indicates projection is undefined because the floor has no
// points yet; renderers show a placeholder state instead.
var ErrNoContent = eris.New("projection: no points to project")

// Window is a padded geographic bounding box.
type Window struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Width returns the longitude extent in degrees.
func (w Window) Width() float64 { return w.MaxLng - w.MinLng }

// Height returns the latitude extent in degrees.
func (w Window) Height() float64 { return w.MaxLat - w.MinLat }

// View is an immutable projection snapshot: window, uniform scale, zoom, and
// pan offset in viewport units.
type View struct {
	Window Window  `json:"window"`
	Scale  float64 `json:"scale"`
	Zoom   float64 `json:"zoom"`
	PanX   float64 `json:"pan_x"`
	PanY   float64 `json:"pan_y"`
}

// ComputeView derives the projection snapshot for the given point set. The
// scale is uniform across both axes so the polygon is never distorted.
func ComputeView(points []model.GeoPoint, zoom, panX, panY float64) (View, error) {
	if len(points) == 0 {
		return View{}, ErrNoContent
	}
	if zoom <= 0 || math.IsNaN(zoom) {
		return View{}, eris.Errorf("projection: zoom %v must be positive", zoom)
	}

	w := boundingWindow(points)
	w = pad(w)

	scale := math.Min(ViewportSize/w.Width(), ViewportSize/w.Height()) * zoom

	return View{
		Window: w,
		Scale:  scale,
		Zoom:   zoom,
		PanX:   panX,
		PanY:   panY,
	}, nil
}

// Forward projects a geographic coordinate to viewport coordinates. The
// y-axis is inverted: latitude grows northward, canvas y grows downward.
func (v View) Forward(lat, lng float64) (x, y float64) {
	x = (lng-v.Window.MinLng)*v.Scale + v.PanX
	y = ViewportSize - (lat-v.Window.MinLat)*v.Scale + v.PanY
	return x, y
}

// Inverse is the exact algebraic inverse of Forward over the same snapshot.
func (v View) Inverse(x, y float64) (lat, lng float64) {
	lng = (x-v.PanX)/v.Scale + v.Window.MinLng
	lat = (ViewportSize-(y-v.PanY))/v.Scale + v.Window.MinLat
	return lat, lng
}

// ProjectPoint is a convenience wrapper around Forward for a GeoPoint.
func (v View) ProjectPoint(p model.GeoPoint) (x, y float64) {
	return v.Forward(p.Latitude, p.Longitude)
}

// StrokeWidth returns a line thickness that stays a constant screen size
// regardless of zoom.
func StrokeWidth(base, zoom float64) float64 {
	return base / math.Max(zoom, 1)
}

// MarkerRadius returns a marker radius that stays a constant screen size
// regardless of zoom.
func MarkerRadius(base, zoom float64) float64 {
	return base / math.Max(zoom, 1)
}

func boundingWindow(points []model.GeoPoint) Window {
	w := Window{
		MinLat: points[0].Latitude,
		MaxLat: points[0].Latitude,
		MinLng: points[0].Longitude,
		MaxLng: points[0].Longitude,
	}
	for _, p := range points[1:] {
		w.MinLat = math.Min(w.MinLat, p.Latitude)
		w.MaxLat = math.Max(w.MaxLat, p.Latitude)
		w.MinLng = math.Min(w.MinLng, p.Longitude)
		w.MaxLng = math.Max(w.MaxLng, p.Longitude)
	}
	return w
}

func pad(w Window) Window {
	w.MinLat -= padding
	w.MaxLat += padding
	w.MinLng -= padding
	w.MaxLng += padding

	// Degenerate windows (one or two close points) are widened around their
	// center so the scale stays finite.
	if w.Height() < minSpan {
		c := (w.MinLat + w.MaxLat) / 2
		w.MinLat = c - minSpan/2
		w.MaxLat = c + minSpan/2
	}
	if w.Width() < minSpan {
		c := (w.MinLng + w.MaxLng) / 2
		w.MinLng = c - minSpan/2
		w.MaxLng = c + minSpan/2
	}
	return w
}
