package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dwellscan/survey-cli/internal/geomio"
	"github.com/dwellscan/survey-cli/internal/model"
)

var compassNames = []string{
	"North", "North-East", "East", "South-East",
	"South", "South-West", "West", "North-West",
}

// compassDirection maps a bearing in degrees to an 8-point compass name.
func compassDirection(bearing float64) string {
	idx := int(math.Mod(bearing+22.5, 360) / 45)
	return compassNames[idx]
}

// bearingFrom computes the bearing in degrees from (fromLat, fromLng) to
// the point, measured clockwise from north. Planar approximation, fine at
// building scale.
func bearingFrom(fromLat, fromLng float64, p model.GeoPoint) float64 {
	dy := p.Latitude - fromLat
	dx := (p.Longitude - fromLng) * math.Cos(fromLat*math.Pi/180)
	bearing := math.Atan2(dx, dy) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	return bearing
}

// buildDigest renders the captured geometry as a compact textual
// description the model can reason about: per floor, the boundary corners
// and each space's compass position relative to the floor centroid.
func buildDigest(req Request) (string, error) {
	var b strings.Builder

	if req.PlaceName != "" {
		fmt.Fprintf(&b, "Property: %s\n\n", req.PlaceName)
	}

	for _, floor := range req.Floors {
		centLat, centLng, ok := geomio.Centroid(floor.Boundary)
		if !ok {
			return "", eris.Errorf("floor %q has no boundary", floor.Name)
		}

		fmt.Fprintf(&b, "Floor %q (level %d):\n", floor.Name, floor.Level)
		fmt.Fprintf(&b, "  Boundary: %d corners, winding %s\n",
			len(floor.Boundary), windingName(floor.Boundary))
		for i, corner := range floor.Boundary {
			bearing := bearingFrom(centLat, centLng, corner)
			fmt.Fprintf(&b, "  Corner %d: %s of center (bearing %.0f)\n",
				i+1, compassDirection(bearing), bearing)
		}
		for _, space := range floor.Spaces {
			bearing := bearingFrom(centLat, centLng, space.Location)
			fmt.Fprintf(&b, "  Space %q: %s sector (bearing %.0f, facing %.0f)\n",
				space.Category, compassDirection(bearing), bearing, space.Location.Heading)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func windingName(boundary []model.GeoPoint) string {
	if geomio.IsCounterclockwise(boundary) {
		return "counterclockwise"
	}
	return "clockwise"
}

func systemPrompt(language string) string {
	langName := "English"
	if strings.HasPrefix(language, "hi") {
		langName = "Hindi"
	}

	var categories []string
	for _, c := range model.SpaceCategories {
		categories = append(categories, string(c))
	}

	return fmt.Sprintf(`You are a vastu consultant reviewing a surveyed building layout.
You receive each floor's boundary corners and the compass sector of every tagged space.

Evaluate the placement of each space against vastu principles and respond with ONLY a JSON object:
{
  "overall_score": <0-100>,
  "summary": "<two or three sentences>",
  "spaces": [
    {"category": "<one of: %s>", "status": "good"|"fair"|"poor", "observation": "<why>", "remedy": "<optional fix>", "floor_name": "<floor>"}
  ],
  "general_remedies": ["<optional overall suggestions>"]
}

Write all prose fields in %s. Include one entry per tagged space. No text outside the JSON object.`,
		strings.Join(categories, ", "), langName)
}
