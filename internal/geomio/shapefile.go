package geomio

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dwellscan/survey-cli/internal/model"
)

// ErrNoPolygons is returned when a shapefile contains no usable polygon
// shapes.
var ErrNoPolygons = eris.New("geomio: shapefile has no polygons")

// ImportBoundary reads the first polygon ring from a shapefile and
// converts it to an ordered boundary corner list. The closing point is
// dropped since boundaries are stored open.
func ImportBoundary(path string) ([]model.GeoPoint, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geomio: open shapefile %s", path)
	}
	defer reader.Close()

	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil || len(poly.Points) == 0 {
			zap.L().Debug("geomio: skipping non-polygon shape", zap.Int("shape", n))
			continue
		}

		boundary, err := ringToBoundary(poly)
		if err != nil {
			zap.L().Warn("geomio: skipping malformed polygon", zap.Int("shape", n), zap.Error(err))
			continue
		}
		return boundary, nil
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "geomio: read shapefile %s", path)
	}
	return nil, ErrNoPolygons
}

// ringToBoundary converts the outer ring of a shapefile polygon to
// GeoPoints. Shapefile points are X=longitude, Y=latitude.
func ringToBoundary(poly *shp.Polygon) ([]model.GeoPoint, error) {
	end := len(poly.Points)
	if poly.NumParts > 1 {
		end = int(poly.Parts[1])
	}

	points := poly.Points[:end]
	if len(points) >= 2 {
		first, last := points[0], points[len(points)-1]
		if first.X == last.X && first.Y == last.Y {
			points = points[:len(points)-1]
		}
	}
	if len(points) < 3 {
		return nil, ErrDegenerateBoundary
	}

	boundary := make([]model.GeoPoint, 0, len(points))
	for _, p := range points {
		gp, err := model.NewGeoPoint(p.Y, p.X, 0)
		if err != nil {
			return nil, eris.Wrap(err, "geomio: shapefile point")
		}
		boundary = append(boundary, gp)
	}
	return boundary, nil
}
