package calibration

import (
	"strings"
	"testing"

	"github.com/mastercactapus/planarity/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offsets rise 1mm per meter of x, with a 1mm base
var plate = []coord.Point{
	{X: -1000, Y: -2000, Z: 0},
	{X: 1000, Y: -2000, Z: 2},
	{X: -1000, Y: 2000, Z: 0},
	{X: 1000, Y: 2000, Z: 2},
	{X: 0, Y: 0, Z: 1},
}

func TestMesh_OffsetZ(t *testing.T) {
	mesh, err := NewMesh(plate)
	require.NoError(t, err)

	check := func(x, y, exp float64) {
		t.Helper()
		ok, z := mesh.OffsetZ(x, y)
		require.True(t, ok, "%g,%g inside mesh", x, y)
		assert.InDelta(t, exp, z, 1e-9)
	}
	check(-750, 1500, 0.25)
	check(750, 1500, 1.75)
	check(-750, -1500, 0.25)
	check(750, -1500, 1.75)
	check(0, 0, 1)
	check(1000, 2000, 2)

	ok, _ := mesh.OffsetZ(1500, 0)
	assert.False(t, ok)
}

func TestNewMesh_Invalid(t *testing.T) {
	_, err := NewMesh(plate[:2])
	assert.Error(t, err)

	_, err = NewMesh([]coord.Point{{X: 0}, {X: 1}, {X: 0, Z: 5}})
	assert.Error(t, err)
}

func TestOffsetFrom(t *testing.T) {
	res := OffsetFrom(1, plate)
	assert.Equal(t, -1.0, res[0].Z)
	assert.Equal(t, 1.0, res[1].Z)

	assert.Equal(t, plate[4].X, res[4].X)
	assert.Equal(t, 0.0, res[4].Z)

	// input untouched
	assert.Equal(t, 0.0, plate[0].Z)
	assert.Empty(t, OffsetFrom(1, nil))
}

func TestOr(t *testing.T) {
	ok, _ := Or(nil).OffsetZ(1, 2)
	assert.False(t, ok)

	ok, z := Or(Fixed(2.5)).OffsetZ(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 2.5, z)
}

func TestReadMeasurements(t *testing.T) {
	points, err := ReadMeasurements(strings.NewReader(`[
		{"X": 1, "Y": 2, "Z": 0.5, "Valid": true},
		{"X": 3, "Y": 4, "Z": 9, "Valid": false}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []coord.Point{{X: 1, Y: 2, Z: 0.5}}, points)

	_, err = ReadMeasurements(strings.NewReader(`{`))
	assert.Error(t, err)
}
