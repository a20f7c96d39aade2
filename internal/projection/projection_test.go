package projection

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwellscan/survey-cli/internal/model"
)

func pt(t *testing.T, lat, lng float64) model.GeoPoint {
	t.Helper()
	p, err := model.NewGeoPoint(lat, lng, 0)
	require.NoError(t, err)
	return p
}

func TestComputeView_NoContent(t *testing.T) {
	_, err := ComputeView(nil, 1, 0, 0)
	assert.True(t, eris.Is(err, ErrNoContent))
}

func TestComputeView_RejectsNonPositiveZoom(t *testing.T) {
	pts := []model.GeoPoint{pt(t, 10, 10)}
	_, err := ComputeView(pts, 0, 0, 0)
	assert.Error(t, err)
	_, err = ComputeView(pts, -1, 0, 0)
	assert.Error(t, err)
}

func TestComputeView_SinglePointHasFiniteScale(t *testing.T) {
	v, err := ComputeView([]model.GeoPoint{pt(t, 10, 10)}, 1, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, v.Scale, 0.0)
	assert.GreaterOrEqual(t, v.Window.Width(), minSpan)
	assert.GreaterOrEqual(t, v.Window.Height(), minSpan)
}

func TestComputeView_TwoCollinearPoints(t *testing.T) {
	// Same latitude: zero height before padding.
	pts := []model.GeoPoint{pt(t, 10, 10), pt(t, 10, 11)}
	v, err := ComputeView(pts, 1, 0, 0)
	require.NoError(t, err)
	assert.Greater(t, v.Scale, 0.0)
}

func TestComputeView_UniformScale(t *testing.T) {
	// A wide window: scale must be driven by the wider axis so the shorter
	// axis is not stretched.
	pts := []model.GeoPoint{pt(t, 10, 10), pt(t, 10.001, 10.01)}
	v, err := ComputeView(pts, 1, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, ViewportSize/v.Window.Width(), v.Scale, 1e-9)
}

func TestForward_YAxisInverted(t *testing.T) {
	pts := []model.GeoPoint{pt(t, 10, 10), pt(t, 11, 11)}
	v, err := ComputeView(pts, 1, 0, 0)
	require.NoError(t, err)

	_, ySouth := v.Forward(10, 10.5)
	_, yNorth := v.Forward(11, 10.5)
	assert.Less(t, yNorth, ySouth)
}

func TestForwardInverse_RoundTrip(t *testing.T) {
	pts := []model.GeoPoint{
		pt(t, 10, 10), pt(t, 10, 11), pt(t, 11, 11), pt(t, 10.4, 10.4),
	}
	zooms := []float64{0.4, 1, 2.5, 8}
	pans := [][2]float64{{0, 0}, {15, -40}, {-120, 33}}

	for _, z := range zooms {
		for _, pan := range pans {
			v, err := ComputeView(pts, z, pan[0], pan[1])
			require.NoError(t, err)

			for _, p := range pts {
				x, y := v.Forward(p.Latitude, p.Longitude)
				lat, lng := v.Inverse(x, y)
				assert.InDelta(t, p.Latitude, lat, 1e-9)
				assert.InDelta(t, p.Longitude, lng, 1e-9)
			}
		}
	}
}

func TestComputeView_RecomputedAfterPointSetChange(t *testing.T) {
	pts := []model.GeoPoint{pt(t, 10, 10), pt(t, 10, 11)}
	before, err := ComputeView(pts, 1, 0, 0)
	require.NoError(t, err)

	pts = append(pts, pt(t, 12, 11))
	after, err := ComputeView(pts, 1, 0, 0)
	require.NoError(t, err)

	assert.NotEqual(t, before.Window, after.Window)
	assert.Equal(t, 12.0+padding, after.Window.MaxLat)
}

func TestStrokeWidth_InverseZoom(t *testing.T) {
	assert.Equal(t, 4.0, StrokeWidth(4, 0.5)) // below 1, clamped
	assert.Equal(t, 4.0, StrokeWidth(4, 1))
	assert.Equal(t, 2.0, StrokeWidth(4, 2))
	assert.Equal(t, 0.5, MarkerRadius(4, 8))
}
