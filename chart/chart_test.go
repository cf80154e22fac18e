package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mastercactapus/planarity/planarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results() []planarity.Result {
	res := make([]planarity.Result, 6)
	for i := range res {
		res[i].Travelled = float64(i)
		res[i].Dist = float64(i) / 2
	}
	res[3].Err = errors.New("bad row")
	return res
}

func TestLines(t *testing.T) {
	lines := Lines(results())
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 3)
	assert.Len(t, lines[1], 2)
	assert.Equal(t, 4.0, lines[1][0].X)
	assert.Equal(t, 2.0, lines[1][0].Y)

	assert.Empty(t, Lines([]planarity.Result{{Err: errors.New("x")}}))
}

func TestOptions_Ticks(t *testing.T) {
	ticks := DefaultOptions.ticks()
	require.Len(t, ticks, 9)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Equal(t, "0.5", ticks[1].Label)
	assert.Equal(t, 4.0, ticks[8].Value)

	assert.Nil(t, Options{}.ticks())
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTo(&buf, "png", results(), "sample.csv", DefaultOptions)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	err = WriteTo(&buf, "png", nil, "empty", DefaultOptions)
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName("data/planarity_sample.csv"))
	assert.Equal(t, "planarity_sample.csv.png", filepath.Base(path))

	require.NoError(t, Save(path, results(), "data/planarity_sample.csv", DefaultOptions))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
