package calibration

// A ZOffsetter reports the sensor zero offset at a position.
type ZOffsetter interface {
	OffsetZ(x, y float64) (bool, float64)
}

// Fixed applies the same offset everywhere.
type Fixed float64

func (f Fixed) OffsetZ(x, y float64) (bool, float64) { return true, float64(f) }

type dummyOffsetter struct {
}

func (dummyOffsetter) OffsetZ(x, y float64) (bool, float64) {
	return false, 0
}

// Or returns z when it is non-nil, otherwise an offsetter that
// never reports an offset.
func Or(z ZOffsetter) ZOffsetter {
	if z == nil {
		return dummyOffsetter{}
	}
	return z
}
