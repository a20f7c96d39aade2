package export

import (
	"os"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/geomio"
	"github.com/dwellscan/survey-cli/internal/model"
)

// WriteGeoJSON writes the session geometry as a GeoJSON FeatureCollection.
func WriteGeoJSON(session *model.Session, path string) error {
	data, err := geomio.SessionGeoJSON(session)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
