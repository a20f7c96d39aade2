package geomio

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestShapefile(t *testing.T, shapes ...shp.Shape) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plot.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	for _, s := range shapes {
		w.Write(s)
	}
	w.Close()
	return path
}

func closedSquare() *shp.Polygon {
	points := []shp.Point{
		{X: 77.59, Y: 12.97},
		{X: 77.60, Y: 12.97},
		{X: 77.60, Y: 12.98},
		{X: 77.59, Y: 12.98},
		{X: 77.59, Y: 12.97},
	}
	return &shp.Polygon{
		Box:       shp.Box{MinX: 77.59, MinY: 12.97, MaxX: 77.60, MaxY: 12.98},
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}
}

func TestImportBoundary(t *testing.T) {
	path := writeTestShapefile(t, closedSquare())

	boundary, err := ImportBoundary(path)
	require.NoError(t, err)

	require.Len(t, boundary, 4, "closing point should be dropped")
	assert.InDelta(t, 12.97, boundary[0].Latitude, 1e-9)
	assert.InDelta(t, 77.59, boundary[0].Longitude, 1e-9)
	assert.InDelta(t, 12.98, boundary[3].Latitude, 1e-9)
}

func TestImportBoundaryNoPolygons(t *testing.T) {
	path := writeTestShapefile(t)

	_, err := ImportBoundary(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoPolygons))
}

func TestImportBoundaryMissingFile(t *testing.T) {
	_, err := ImportBoundary(filepath.Join(t.TempDir(), "missing.shp"))
	require.Error(t, err)
}
