package calibration

import (
	"github.com/mastercactapus/planarity/coord"
)

// OffsetFrom returns a copy of points with z subtracted from every
// reading, so a sensor that reads z on the reference plate reports zero.
func OffsetFrom(z float64, points []coord.Point) []coord.Point {
	res := make([]coord.Point, 0, len(points))
	for _, p := range points {
		res = append(res, p.Sub(coord.Point{Z: z}))
	}
	return res
}
