package planarity

import (
	"fmt"

	"github.com/mastercactapus/planarity/coord"
)

// Wheel identifies one of the four wheel positions.
type Wheel int

const (
	FrontLeft Wheel = iota
	FrontRight
	RearLeft
	RearRight
)

// Wheels lists every wheel in column order.
var Wheels = [4]Wheel{FrontLeft, FrontRight, RearLeft, RearRight}

var wheelCodes = [4]string{"flh", "frh", "rlh", "rrh"}

func (w Wheel) String() string {
	if w < 0 || int(w) >= len(wheelCodes) {
		return fmt.Sprintf("Wheel(%d)", int(w))
	}
	return wheelCodes[w]
}

// ParseWheel returns the wheel for a position code (flh, frh, rlh or rrh).
func ParseWheel(code string) (Wheel, error) {
	for i, c := range wheelCodes {
		if c == code {
			return Wheel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wheel code %q", code)
}

// Geometry holds the fixed in-plane anchor layout of the wheels.
type Geometry struct {
	// HalfTrack is half the lateral distance between left and right wheels.
	HalfTrack float64

	// HalfWheelbase is half the distance between front and rear axles.
	HalfWheelbase float64
}

var DefaultGeometry = Geometry{HalfTrack: 750, HalfWheelbase: 1500}

// Anchor returns the x,y position of w. Left is -x and front is +y.
func (g Geometry) Anchor(w Wheel) (x, y float64) {
	switch w {
	case FrontLeft:
		return -g.HalfTrack, g.HalfWheelbase
	case FrontRight:
		return g.HalfTrack, g.HalfWheelbase
	case RearLeft:
		return -g.HalfTrack, -g.HalfWheelbase
	default:
		return g.HalfTrack, -g.HalfWheelbase
	}
}

// Points places the four heights at their anchors.
func (g Geometry) Points(heights [4]float64) [4]coord.Point {
	var pts [4]coord.Point
	for _, w := range Wheels {
		x, y := g.Anchor(w)
		pts[w] = coord.Point{X: x, Y: y, Z: heights[w]}
	}
	return pts
}

// supports lists, per held-out wheel, the other three wheels in fit order.
var supports = [4][3]Wheel{
	FrontLeft:  {FrontRight, RearLeft, RearRight},
	FrontRight: {FrontLeft, RearLeft, RearRight},
	RearLeft:   {FrontLeft, FrontRight, RearRight},
	RearRight:  {FrontLeft, FrontRight, RearLeft},
}
