package calibration

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mastercactapus/planarity/coord"
)

// Measurement is a single zero-offset reading.
type Measurement struct {
	coord.Point
	Valid bool
}

// ReadMeasurements decodes a JSON array of measurements and returns
// the valid points.
func ReadMeasurements(r io.Reader) ([]coord.Point, error) {
	var res []Measurement
	err := json.NewDecoder(r).Decode(&res)
	if err != nil {
		return nil, fmt.Errorf("decode measurements: %w", err)
	}

	points := make([]coord.Point, 0, len(res))
	for _, p := range res {
		if !p.Valid {
			continue
		}
		points = append(points, p.Point)
	}
	return points, nil
}
