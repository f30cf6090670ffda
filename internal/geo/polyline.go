package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ParseRoute parses a JSON array of coordinates into a closed patrol route.
// Input format: "[[x1,y1],[x2,y2],...]". The route is implicitly closed:
// the last waypoint leads back to the first.
func ParseRoute(input string) ([]geom.XY, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse route JSON: %w", err)
	}

	if len(coords) < 3 {
		return nil, fmt.Errorf("route must have at least 3 points, got %d", len(coords))
	}

	flatCoords := make([]float64, 0, len(coords)*2)
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		flatCoords = append(flatCoords, coord[0], coord[1])
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	route := make([]geom.XY, seq.Length())
	for i := range route {
		route[i] = seq.Get(i).XY
	}
	return route, nil
}

// MirrorRoute reflects a route defined against the bottom-left corner so that
// it hugs the arena corner nearest to p.
func MirrorRoute(route []geom.XY, width, height float64, p geom.XY) []geom.XY {
	flipX := p.X > width/2
	flipY := p.Y > height/2

	out := make([]geom.XY, len(route))
	for i, wp := range route {
		if flipX {
			wp.X = width - wp.X
		}
		if flipY {
			wp.Y = height - wp.Y
		}
		out[i] = wp
	}
	return out
}
