package geomio

import (
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwellscan/survey-cli/internal/model"
)

func mustPoint(t *testing.T, lat, lng float64) model.GeoPoint {
	t.Helper()
	p, err := model.NewGeoPoint(lat, lng, 0)
	require.NoError(t, err)
	return p
}

func squareBoundary(t *testing.T) []model.GeoPoint {
	t.Helper()
	return []model.GeoPoint{
		mustPoint(t, 10, 20),
		mustPoint(t, 10, 21),
		mustPoint(t, 11, 21),
		mustPoint(t, 11, 20),
	}
}

func TestBoundaryPolygonClosesRing(t *testing.T) {
	poly, err := BoundaryPolygon(squareBoundary(t))
	require.NoError(t, err)

	ring := poly.LinearRing(0)
	assert.Equal(t, 5, ring.NumCoords())
	assert.Equal(t, ring.Coord(0), ring.Coord(ring.NumCoords()-1))
	assert.Equal(t, 4326, poly.SRID())
}

func TestBoundaryPolygonRejectsDegenerate(t *testing.T) {
	_, err := BoundaryPolygon(squareBoundary(t)[:2])
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDegenerateBoundary))
}

func TestSignedAreaAndWinding(t *testing.T) {
	ccw := squareBoundary(t)
	assert.InDelta(t, 1.0, SignedArea(ccw), 1e-9)
	assert.True(t, IsCounterclockwise(ccw))

	cw := []model.GeoPoint{ccw[3], ccw[2], ccw[1], ccw[0]}
	assert.InDelta(t, -1.0, SignedArea(cw), 1e-9)
	assert.False(t, IsCounterclockwise(cw))

	assert.Zero(t, SignedArea(ccw[:2]))
}

func TestCentroid(t *testing.T) {
	lat, lng, ok := Centroid(squareBoundary(t))
	require.True(t, ok)
	assert.InDelta(t, 10.5, lat, 1e-9)
	assert.InDelta(t, 20.5, lng, 1e-9)

	_, _, ok = Centroid(nil)
	assert.False(t, ok)
}

func TestSessionGeoJSON(t *testing.T) {
	session := model.NewSession("Test Plot")
	floor := &session.Floors[0]
	floor.Boundary = squareBoundary(t)
	floor.Spaces = append(floor.Spaces, model.NewSpacePoint(model.SpaceKitchen, mustPoint(t, 10.5, 20.5)))

	data, err := SessionGeoJSON(&session)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.Type)
	assert.Equal(t, "boundary", fc.Features[0].Properties["kind"])
	assert.Equal(t, "Point", fc.Features[1].Geometry.Type)
	assert.Equal(t, "kitchen", fc.Features[1].Properties["category"])
}

func TestSessionGeoJSONSkipsIncompleteFloors(t *testing.T) {
	session := model.NewSession("Empty Plot")
	data, err := SessionGeoJSON(&session)
	require.NoError(t, err)

	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Empty(t, fc.Features)
}
