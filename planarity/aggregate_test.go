package planarity

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mastercactapus/planarity/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heights(v float64) [4]float64 { return [4]float64{v, v, v, v} }

func TestAggregate_Median(t *testing.T) {
	samples := []Sample{
		{Index: 4, Travelled: 0.5, Heights: heights(1)},
		{Index: 1, Travelled: 0, Heights: heights(5)},
		{Index: 2, Travelled: 1, Heights: heights(3)},
		{Index: 3, Travelled: 2.9, Heights: heights(2)},
		{Index: 5, Travelled: 3, Heights: heights(7)},
		{Index: 6, Travelled: 4, Heights: heights(9)},
		{Index: 7, Travelled: 9.5, Heights: heights(4)},
	}

	res, err := Aggregate(samples, DefaultAggregateOptions)
	require.NoError(t, err)

	exp := []Sample{
		{Index: 1, Travelled: 1.5, Heights: heights(2.5)},
		{Index: 5, Travelled: 4.5, Heights: heights(8)},
		{Index: 7, Travelled: 10.5, Heights: heights(4)},
	}
	if diff := cmp.Diff(exp, res); diff != "" {
		t.Errorf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Methods(t *testing.T) {
	samples := []Sample{
		{Travelled: 0, Heights: heights(1)},
		{Travelled: 1, Heights: heights(2)},
		{Travelled: 2, Heights: heights(6)},
	}

	res, err := Aggregate(samples, AggregateOptions{Interval: 3, Method: Mean})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.InDelta(t, 3, res[0].Heights[FrontLeft], 1e-12)

	// alpha = 0.5: 1 -> 1.5 -> 3.75
	res, err = Aggregate(samples, AggregateOptions{Interval: 3, Method: EMA, EMASpan: 3})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.InDelta(t, 3.75, res[0].Heights[RearRight], 1e-12)

	res, err = Aggregate(samples, AggregateOptions{Interval: 3, Method: Median})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res[0].Heights[RearLeft])
}

func TestAggregate_Invalid(t *testing.T) {
	_, err := Aggregate(nil, AggregateOptions{Interval: 0.1, Method: Median})
	assert.Error(t, err)

	_, err = Aggregate(nil, AggregateOptions{Interval: 1, Method: "mode"})
	assert.Error(t, err)

	_, err = Aggregate(nil, AggregateOptions{Interval: 1, Method: EMA})
	assert.Error(t, err)

	res, err := Aggregate(nil, DefaultAggregateOptions)
	assert.NoError(t, err)
	assert.Empty(t, res)
}

func TestAggregate_NonFiniteTravelled(t *testing.T) {
	samples := []Sample{
		{Index: 1, Travelled: math.NaN(), Heights: heights(1)},
		{Index: 2, Travelled: 1, Heights: heights(2)},
		{Index: 3, Travelled: math.NaN(), Heights: heights(3)},
	}
	res, err := Aggregate(samples, DefaultAggregateOptions)
	assert.ErrorIs(t, err, coord.ErrInvalidShape)
	assert.ErrorContains(t, err, "row 1")
	assert.Nil(t, res)

	samples[0].Travelled = math.Inf(1)
	samples[2].Travelled = 2
	_, err = Aggregate(samples, DefaultAggregateOptions)
	assert.ErrorIs(t, err, coord.ErrInvalidShape)

	_, err = AggregateLevels([]LevelSample{{Index: 4, Travelled: math.Inf(-1)}}, DefaultAggregateOptions)
	assert.ErrorIs(t, err, coord.ErrInvalidShape)
	assert.ErrorContains(t, err, "row 4")
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, Median, m)

	m, err = ParseMethod("ema")
	require.NoError(t, err)
	assert.Equal(t, EMA, m)

	_, err = ParseMethod("max")
	assert.Error(t, err)
}

func TestAggregateLevels(t *testing.T) {
	levels := []LevelSample{
		{Index: 1, Travelled: 0, Level1: 1, Level2: 10},
		{Index: 2, Travelled: 1, Level1: 3, Level2: 30},
		{Index: 3, Travelled: 3.5, Level1: 5, Level2: 50},
	}

	res, err := AggregateLevels(levels, AggregateOptions{Interval: 3, Method: Mean})
	require.NoError(t, err)
	assert.Equal(t, []LevelSample{
		{Index: 1, Travelled: 1.5, Level1: 2, Level2: 20},
		{Index: 3, Travelled: 4.5, Level1: 5, Level2: 50},
	}, res)
}

func TestFromLevels(t *testing.T) {
	levels := []LevelSample{
		{Index: 1, Travelled: 1.5, Level1: 1, Level2: 2},
		{Index: 2, Travelled: 4.5, Level1: 3, Level2: 4},
		{Index: 3, Travelled: 7.5, Level1: 5, Level2: 6},
	}

	res := FromLevels(levels)
	assert.Equal(t, []Sample{
		{Index: 2, Travelled: 4.5, Heights: [4]float64{4, 3, 2, 1}},
		{Index: 3, Travelled: 7.5, Heights: [4]float64{6, 5, 4, 3}},
	}, res)

	assert.Nil(t, FromLevels(levels[:1]))
}
