package geomio

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/dwellscan/survey-cli/internal/model"
)

// SessionGeoJSON renders a session as a GeoJSON FeatureCollection. Each
// floor boundary becomes a Polygon feature and each space marker a Point
// feature.
func SessionGeoJSON(s *model.Session) ([]byte, error) {
	fc := &geojson.FeatureCollection{}

	for _, floor := range s.Floors {
		if len(floor.Boundary) >= 3 {
			poly, err := BoundaryPolygon(floor.Boundary)
			if err != nil {
				return nil, eris.Wrapf(err, "geomio: floor %q boundary", floor.Name)
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       floor.ID,
				Geometry: poly,
				Properties: map[string]interface{}{
					"kind":  "boundary",
					"floor": floor.Name,
					"level": floor.Level,
				},
			})
		}

		for _, sp := range floor.Spaces {
			pt := geom.NewPointFlat(geom.XY, []float64{sp.Location.Longitude, sp.Location.Latitude}).SetSRID(4326)
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       sp.ID,
				Geometry: pt,
				Properties: map[string]interface{}{
					"kind":     "space",
					"category": string(sp.Category),
					"floor":    floor.Name,
					"level":    floor.Level,
					"heading":  sp.Location.Heading,
				},
			})
		}
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "geomio: marshal feature collection")
	}
	return data, nil
}
