package capture

import (
	"math"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/model"
	"github.com/dwellscan/survey-cli/internal/projection"
	"github.com/dwellscan/survey-cli/internal/sensor"
)

const (
	// MinZoom and MaxZoom clamp the zoom factor.
	MinZoom = 0.4
	MaxZoom = 8.0

	// hitRadius is the marker hit-test distance in viewport units.
	hitRadius = 8.0
)

// ErrNoReference indicates a capture request that could not be resolved to a
// geographic location: no projectable content, no seed coordinate, and no
// sensor fix.
var ErrNoReference = eris.New("capture: no reference location available")

// Event is a raw canvas input position in viewport coordinates.
type Event struct {
	X float64
	Y float64
}

// PointSource resolves a capture request into a geographic point. The two
// implementations are the interchangeable interaction strategies: pointer
// input inverse-projected through the current view, or the sensor feed's
// latest reading. view is only meaningful when viewOK is true.
type PointSource interface {
	NextPoint(view projection.View, viewOK bool, ev Event) (model.GeoPoint, error)
}

// PointerSource places points from canvas taps. The heading recorded on the
// point is the latest compass observation, if any. Before the floor has any
// projectable content the tap falls back to the seed coordinate or the
// latest fix, since inverse projection is undefined on an empty window.
type PointerSource struct {
	Latest *sensor.Latest
	Seed   *model.GeoPoint
}

// NextPoint implements PointSource.
func (s *PointerSource) NextPoint(view projection.View, viewOK bool, ev Event) (model.GeoPoint, error) {
	heading := 0.0
	if s.Latest != nil {
		if h, ok := s.Latest.Heading(); ok {
			heading = h.Degrees
		}
	}

	if viewOK {
		lat, lng := view.Inverse(ev.X, ev.Y)
		return model.NewGeoPoint(lat, lng, heading)
	}
	if s.Seed != nil {
		return model.NewGeoPoint(s.Seed.Latitude, s.Seed.Longitude, heading)
	}
	if s.Latest != nil {
		if fix, ok := s.Latest.Fix(); ok {
			return model.NewGeoPoint(fix.Latitude, fix.Longitude, heading)
		}
	}
	return model.GeoPoint{}, ErrNoReference
}

// SensorSource places points from the sensor feed's latest fix, ignoring the
// canvas event. This is the walk-the-perimeter capture strategy.
type SensorSource struct {
	Latest *sensor.Latest
}

// NextPoint implements PointSource.
func (s *SensorSource) NextPoint(_ projection.View, _ bool, _ Event) (model.GeoPoint, error) {
	fix, ok := s.Latest.Fix()
	if !ok {
		return model.GeoPoint{}, eris.Wrap(ErrNoReference, "no sensor fix")
	}
	heading := 0.0
	if h, ok := s.Latest.Heading(); ok {
		heading = h.Degrees
	}
	return model.NewGeoPoint(fix.Latitude, fix.Longitude, heading)
}

// HitKind distinguishes what a hit test found.
type HitKind string

const (
	HitBoundary HitKind = "boundary"
	HitSpace    HitKind = "space"
)

// Hit identifies a marker under the pointer: boundary corners by index,
// space markers by id.
type Hit struct {
	Kind  HitKind
	Index int
	ID    string
}

// Controller translates raw input events into projection lookups and
// workflow mutations. It owns the pan/zoom state; the view is recomputed
// from the live point set before every inverse projection so clicks never
// go through a stale window.
type Controller struct {
	wf     *Workflow
	source PointSource

	mu    sync.Mutex
	zoom  float64
	panX  float64
	panY  float64
	armed model.SpaceCategory
}

// NewController creates a controller at zoom 1 with no pan offset.
func NewController(wf *Workflow, source PointSource) *Controller {
	return &Controller{wf: wf, source: source, zoom: 1}
}

// View computes the projection snapshot for the active floor's current
// point set. Returns projection.ErrNoContent for an empty floor.
func (c *Controller) View() (projection.View, error) {
	c.mu.Lock()
	zoom, panX, panY := c.zoom, c.panX, c.panY
	c.mu.Unlock()
	return projection.ComputeView(c.wf.ActiveFloor().Points(), zoom, panX, panY)
}

// Pan accumulates a drag delta into the pan offset.
func (c *Controller) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panX += dx
	c.panY += dy
}

// ZoomBy multiplies the zoom factor, clamped to [MinZoom, MaxZoom].
func (c *Controller) ZoomBy(factor float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(c.zoom * factor)
	return c.zoom
}

// SetZoom sets the zoom factor directly, clamped to [MinZoom, MaxZoom].
func (c *Controller) SetZoom(zoom float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(zoom)
	return c.zoom
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// ArmCategory selects the category the next space capture will use.
func (c *Controller) ArmCategory(category model.SpaceCategory) error {
	if !category.Valid() {
		return eris.Errorf("capture: unknown space category %q", category)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = category
	return nil
}

// Capture resolves the event to a geographic point via the active strategy
// and routes it to the stage's collection: boundary corners during boundary
// capture, the armed category's marker during space tagging.
func (c *Controller) Capture(ev Event) error {
	view, err := c.View()
	viewOK := err == nil
	if err != nil && !eris.Is(err, projection.ErrNoContent) {
		return err
	}

	p, err := c.source.NextPoint(view, viewOK, ev)
	if err != nil {
		return err
	}

	switch c.wf.Stage() {
	case StageBoundaryCapture:
		return c.wf.AppendBoundary(p)
	case StageSpaceTagging:
		c.mu.Lock()
		armed := c.armed
		c.mu.Unlock()
		if armed == "" {
			return eris.New("capture: no space category armed")
		}
		_, err := c.wf.AppendSpace(armed, p)
		return err
	default:
		return eris.Wrapf(ErrNotAllowed, "capture in %s", c.wf.Stage())
	}
}

// Undo removes the last-appended point of the current stage.
func (c *Controller) Undo() error {
	return c.wf.Undo()
}

// HitTest finds the nearest marker within the hit radius of the event, in
// viewport units. Space markers win ties over boundary corners so tagging
// adjustments do not grab the polygon underneath.
func (c *Controller) HitTest(ev Event) (Hit, bool) {
	view, err := c.View()
	if err != nil {
		return Hit{}, false
	}
	floor := c.wf.ActiveFloor()

	best := Hit{}
	bestDist := math.Inf(1)

	for _, sp := range floor.Spaces {
		x, y := view.ProjectPoint(sp.Location)
		if d := math.Hypot(x-ev.X, y-ev.Y); d < bestDist {
			bestDist = d
			best = Hit{Kind: HitSpace, ID: sp.ID}
		}
	}
	if bestDist <= hitRadius {
		return best, true
	}

	for i, p := range floor.Boundary {
		x, y := view.ProjectPoint(p)
		if d := math.Hypot(x-ev.X, y-ev.Y); d < bestDist {
			bestDist = d
			best = Hit{Kind: HitBoundary, Index: i}
		}
	}
	if bestDist <= hitRadius {
		return best, true
	}
	return Hit{}, false
}

// DragTo repositions a previously hit marker to the event location.
func (c *Controller) DragTo(hit Hit, ev Event) error {
	view, err := c.View()
	if err != nil {
		return err
	}
	lat, lng := view.Inverse(ev.X, ev.Y)

	switch hit.Kind {
	case HitBoundary:
		return c.wf.RepositionBoundary(hit.Index, lat, lng)
	case HitSpace:
		return c.wf.RepositionSpace(hit.ID, lat, lng)
	default:
		return eris.Errorf("capture: unknown hit kind %q", hit.Kind)
	}
}

// StrokeWidth returns the boundary line thickness for the current zoom.
func (c *Controller) StrokeWidth(base float64) float64 {
	return projection.StrokeWidth(base, c.Zoom())
}

// MarkerRadius returns the marker radius for the current zoom.
func (c *Controller) MarkerRadius(base float64) float64 {
	return projection.MarkerRadius(base, c.Zoom())
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
