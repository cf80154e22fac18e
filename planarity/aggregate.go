package planarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mastercactapus/planarity/coord"
	"gonum.org/v1/gonum/stat"
)

// Method reduces the values of one travelled-distance interval to a single value.
type Method string

const (
	Median Method = "median"
	Mean   Method = "mean"
	EMA    Method = "ema"
)

// ParseMethod accepts median, mean or ema. An empty string is Median.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return Median, nil
	case Median, Mean, EMA:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown aggregation method %q", s)
}

// MinInterval is the exclusive lower bound for AggregateOptions.Interval.
const MinInterval = 0.1

type AggregateOptions struct {
	// Interval is the width of each travelled-distance bin.
	Interval float64
	Method   Method

	// EMASpan is the span of the exponential moving average (alpha = 2/(span+1)).
	EMASpan int
}

// DefaultAggregateOptions bins by roughly one wheelbase.
var DefaultAggregateOptions = AggregateOptions{Interval: 3, Method: Median, EMASpan: 5}

func (o AggregateOptions) Validate() error {
	if !(o.Interval > MinInterval) {
		return fmt.Errorf("aggregation interval must be greater than %g, got %g", MinInterval, o.Interval)
	}
	if _, err := ParseMethod(string(o.Method)); err != nil {
		return err
	}
	if o.Method == EMA && o.EMASpan < 1 {
		return errors.New("ema span must be at least 1")
	}
	return nil
}

func (o AggregateOptions) reduce(values []float64) float64 {
	switch o.Method {
	case Mean:
		return stat.Mean(values, nil)
	case EMA:
		alpha := 2 / (float64(o.EMASpan) + 1)
		v := values[0]
		for _, x := range values[1:] {
			v = alpha*x + (1-alpha)*v
		}
		return v
	default:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	}
}

type bin struct {
	k    float64
	mid  float64
	rows []int
}

// finite returns an error for the first row whose travelled value is
// NaN or infinite; such a row cannot be placed in any bin.
func finite(n int, row func(int) (int, float64)) error {
	for i := 0; i < n; i++ {
		idx, t := row(i)
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("row %d: %w: non-finite travelled %g", idx, coord.ErrInvalidShape, t)
		}
	}
	return nil
}

// binRows groups row indexes into [start, start+interval) windows beginning
// at the smallest travelled value. Rows keep travelled order within a bin and
// empty windows are dropped.
func binRows(n int, travelled func(int) float64, interval float64) []bin {
	if n == 0 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return travelled(order[a]) < travelled(order[b]) })

	first := travelled(order[0])
	var bins []bin
	for _, i := range order {
		k := math.Floor((travelled(i) - first) / interval)
		if len(bins) == 0 || bins[len(bins)-1].k != k {
			bins = append(bins, bin{k: k, mid: first + k*interval + interval/2})
		}
		bins[len(bins)-1].rows = append(bins[len(bins)-1].rows, i)
	}
	return bins
}

// Aggregate reduces samples to one sample per travelled-distance interval.
//
// Each wheel height is reduced independently, Travelled becomes the interval
// midpoint and Index is taken from the first sample of the interval.
func Aggregate(samples []Sample, opt AggregateOptions) ([]Sample, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	err := finite(len(samples), func(i int) (int, float64) { return samples[i].Index, samples[i].Travelled })
	if err != nil {
		return nil, err
	}

	bins := binRows(len(samples), func(i int) float64 { return samples[i].Travelled }, opt.Interval)
	res := make([]Sample, len(bins))
	values := make([]float64, 0, len(samples))
	for b, bn := range bins {
		res[b].Index = samples[bn.rows[0]].Index
		res[b].Travelled = bn.mid
		for _, w := range Wheels {
			values = values[:0]
			for _, i := range bn.rows {
				values = append(values, samples[i].Heights[w])
			}
			res[b].Heights[w] = opt.reduce(values)
		}
	}
	return res, nil
}

// LevelSample is a reading from a two-sensor rig measuring only the
// right (Level1) and left (Level2) heights at the front axle.
type LevelSample struct {
	Index     int
	Travelled float64
	Level1    float64
	Level2    float64
}

// AggregateLevels is Aggregate for level readings.
func AggregateLevels(levels []LevelSample, opt AggregateOptions) ([]LevelSample, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	err := finite(len(levels), func(i int) (int, float64) { return levels[i].Index, levels[i].Travelled })
	if err != nil {
		return nil, err
	}

	bins := binRows(len(levels), func(i int) float64 { return levels[i].Travelled }, opt.Interval)
	res := make([]LevelSample, len(bins))
	l1 := make([]float64, 0, len(levels))
	l2 := make([]float64, 0, len(levels))
	for b, bn := range bins {
		l1, l2 = l1[:0], l2[:0]
		for _, i := range bn.rows {
			l1 = append(l1, levels[i].Level1)
			l2 = append(l2, levels[i].Level2)
		}
		res[b] = LevelSample{
			Index:     levels[bn.rows[0]].Index,
			Travelled: bn.mid,
			Level1:    opt.reduce(l1),
			Level2:    opt.reduce(l2),
		}
	}
	return res, nil
}

// FromLevels builds wheel samples from consecutive level readings: the
// current reading supplies the front wheels and the previous one the rear.
// The first reading has no predecessor and produces no sample.
func FromLevels(levels []LevelSample) []Sample {
	if len(levels) < 2 {
		return nil
	}
	res := make([]Sample, len(levels)-1)
	for i := 1; i < len(levels); i++ {
		cur, prev := levels[i], levels[i-1]
		res[i-1] = Sample{
			Index:     cur.Index,
			Travelled: cur.Travelled,
			Heights: [4]float64{
				FrontLeft:  cur.Level2,
				FrontRight: cur.Level1,
				RearLeft:   prev.Level2,
				RearRight:  prev.Level1,
			},
		}
	}
	return res
}
