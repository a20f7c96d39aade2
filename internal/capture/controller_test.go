package capture

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwellscan/survey-cli/internal/model"
	"github.com/dwellscan/survey-cli/internal/projection"
	"github.com/dwellscan/survey-cli/internal/sensor"
)

func pointerController(t *testing.T) (*Controller, *Workflow) {
	t.Helper()
	w := startedWorkflow(t)
	seed := mustPoint(t, 10.0, 76.0, 0)
	c := NewController(w, &PointerSource{Seed: &seed})
	return c, w
}

func TestController_ZoomClamped(t *testing.T) {
	c, _ := pointerController(t)

	assert.Equal(t, 1.0, c.Zoom())
	assert.Equal(t, MaxZoom, c.SetZoom(100))
	assert.Equal(t, MinZoom, c.SetZoom(0.01))

	c.SetZoom(4)
	assert.Equal(t, MaxZoom, c.ZoomBy(4))
	assert.InDelta(t, MaxZoom/2, c.ZoomBy(0.5), 1e-9)
}

func TestController_PanAccumulates(t *testing.T) {
	c, w := pointerController(t)
	require.NoError(t, w.AppendBoundary(mustPoint(t, 10, 76, 0)))

	c.Pan(5, -3)
	c.Pan(2, 1)

	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.PanX)
	assert.Equal(t, -2.0, v.PanY)
}

func TestController_ViewNoContentOnEmptyFloor(t *testing.T) {
	c, _ := pointerController(t)
	_, err := c.View()
	assert.True(t, eris.Is(err, projection.ErrNoContent))
}

func TestController_FirstCaptureFallsBackToSeed(t *testing.T) {
	c, w := pointerController(t)

	require.NoError(t, c.Capture(Event{X: 100, Y: 100}))
	b := w.ActiveFloor().Boundary
	require.Len(t, b, 1)
	assert.Equal(t, 10.0, b[0].Latitude)
	assert.Equal(t, 76.0, b[0].Longitude)
}

func TestController_CaptureWithoutAnyReference(t *testing.T) {
	w := startedWorkflow(t)
	c := NewController(w, &PointerSource{})
	err := c.Capture(Event{X: 100, Y: 100})
	assert.True(t, eris.Is(err, ErrNoReference))
}

func TestController_TapInverseProjectsThroughLiveView(t *testing.T) {
	c, w := pointerController(t)
	require.NoError(t, w.AppendBoundary(mustPoint(t, 10, 76, 0)))
	require.NoError(t, w.AppendBoundary(mustPoint(t, 10.001, 76.001, 0)))

	v, err := c.View()
	require.NoError(t, err)
	x, y := v.Forward(10.0005, 76.0005)

	require.NoError(t, c.Capture(Event{X: x, Y: y}))
	b := w.ActiveFloor().Boundary
	require.Len(t, b, 3)
	assert.InDelta(t, 10.0005, b[2].Latitude, 1e-9)
	assert.InDelta(t, 76.0005, b[2].Longitude, 1e-9)
}

func TestController_SpaceCaptureNeedsArmedCategory(t *testing.T) {
	c, w := pointerController(t)
	for _, coords := range [][2]float64{{10, 76}, {10, 76.001}, {10.001, 76.001}} {
		require.NoError(t, w.AppendBoundary(mustPoint(t, coords[0], coords[1], 0)))
	}
	require.NoError(t, w.AdvanceToTagging())

	err := c.Capture(Event{X: 100, Y: 100})
	assert.Error(t, err)

	require.NoError(t, c.ArmCategory(model.SpaceKitchen))
	require.NoError(t, c.Capture(Event{X: 100, Y: 100}))

	spaces := w.ActiveFloor().Spaces
	require.Len(t, spaces, 1)
	assert.Equal(t, model.SpaceKitchen, spaces[0].Category)
}

func TestController_ArmCategoryRejectsUnknown(t *testing.T) {
	c, _ := pointerController(t)
	assert.Error(t, c.ArmCategory("garage"))
}

func TestController_HitTestAndDrag(t *testing.T) {
	c, w := pointerController(t)
	for _, coords := range [][2]float64{{10, 76}, {10, 76.001}, {10.001, 76.001}} {
		require.NoError(t, w.AppendBoundary(mustPoint(t, coords[0], coords[1], 0)))
	}
	require.NoError(t, w.AdvanceToTagging())
	sp, err := w.AppendSpace(model.SpaceKitchen, mustPoint(t, 10.0005, 76.0005, 135))
	require.NoError(t, err)

	v, err := c.View()
	require.NoError(t, err)
	x, y := v.ProjectPoint(sp.Location)

	hit, ok := c.HitTest(Event{X: x + 2, Y: y - 2})
	require.True(t, ok)
	assert.Equal(t, HitSpace, hit.Kind)
	assert.Equal(t, sp.ID, hit.ID)

	// Drag the marker; category and heading must survive.
	tx, ty := v.Forward(10.0004, 76.0004)
	require.NoError(t, c.DragTo(hit, Event{X: tx, Y: ty}))

	got := w.ActiveFloor().Spaces[0]
	assert.Equal(t, sp.ID, got.ID)
	assert.Equal(t, model.SpaceKitchen, got.Category)
	assert.Equal(t, 135.0, got.Location.Heading)
	assert.InDelta(t, 10.0004, got.Location.Latitude, 1e-9)
}

func TestController_HitTestMissesFarPointer(t *testing.T) {
	c, w := pointerController(t)
	require.NoError(t, w.AppendBoundary(mustPoint(t, 10, 76, 0)))
	require.NoError(t, w.AppendBoundary(mustPoint(t, 10.001, 76.001, 0)))

	v, err := c.View()
	require.NoError(t, err)
	x, y := v.Forward(10, 76)

	_, ok := c.HitTest(Event{X: x + 50, Y: y + 50})
	assert.False(t, ok)
}

func TestSensorSource_RequiresFix(t *testing.T) {
	var latest sensor.Latest
	src := &SensorSource{Latest: &latest}

	_, err := src.NextPoint(projection.View{}, false, Event{})
	assert.True(t, eris.Is(err, ErrNoReference))

	latest.SetFix(sensor.Reading{Latitude: 10.2, Longitude: 76.4})
	latest.SetHeading(sensor.Heading{Degrees: 270})

	p, err := src.NextPoint(projection.View{}, false, Event{})
	require.NoError(t, err)
	assert.Equal(t, 10.2, p.Latitude)
	assert.Equal(t, 270.0, p.Heading)
}
