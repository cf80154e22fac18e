package planarity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/mastercactapus/planarity/calibration"
	"github.com/mastercactapus/planarity/coord"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// ErrorPolicy decides what happens when a row cannot be evaluated.
type ErrorPolicy int

const (
	// Halt stops processing at the first failing row.
	Halt ErrorPolicy = iota

	// Skip flags the failing row and continues.
	Skip
)

func (p ErrorPolicy) String() string {
	if p == Skip {
		return "skip"
	}
	return "halt"
}

// ParseErrorPolicy accepts "halt" or "skip".
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "halt":
		return Halt, nil
	case "skip":
		return Skip, nil
	}
	return Halt, fmt.Errorf("unknown error policy %q", s)
}

// Correction is a linear adjustment applied to the aggregate distance.
type Correction struct {
	Scale  float64
	Offset float64
}

func (c Correction) apply(v float64) float64 {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return v*scale + c.Offset
}

type Config struct {
	Geometry   Geometry
	Tolerance  coord.Tolerance
	Correction Correction

	// ZOffsetter, if set, supplies per-anchor sensor zero offsets
	// that are subtracted from the measured heights.
	ZOffsetter calibration.ZOffsetter

	Policy ErrorPolicy

	// Workers limits concurrent row evaluation in Process. Values
	// below 2 process rows sequentially.
	Workers int

	// Progress, if set, is called after every processed row.
	Progress func(done, total int)

	Logf func(format string, v ...interface{})
}

// Evaluator computes the planarity metric for samples.
type Evaluator struct {
	geom       Geometry
	tol        coord.Tolerance
	correction Correction
	offsetter  calibration.ZOffsetter

	policy   ErrorPolicy
	workers  int
	progress func(done, total int)
	logf     func(format string, v ...interface{})
}

func New(cfg Config) *Evaluator {
	e := &Evaluator{
		geom:       cfg.Geometry,
		tol:        cfg.Tolerance,
		correction: cfg.Correction,
		offsetter:  calibration.Or(cfg.ZOffsetter),

		policy:   cfg.Policy,
		workers:  cfg.Workers,
		progress: cfg.Progress,
		logf:     cfg.Logf,
	}
	if e.geom == (Geometry{}) {
		e.geom = DefaultGeometry
	}
	if e.tol == (coord.Tolerance{}) {
		e.tol = coord.DefaultTolerance
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.logf == nil {
		e.logf = log.Printf
	}
	return e
}

// Evaluate fits the four held-out planes for s and computes the
// signed vertical distance of each held-out wheel.
//
// Dist is the largest signed distance, so only upward deviations
// dominate the metric.
func (e *Evaluator) Evaluate(s Sample) (Result, error) {
	res := Result{Sample: s}

	heights := s.Heights
	for _, w := range Wheels {
		if math.IsNaN(heights[w]) || math.IsInf(heights[w], 0) {
			return e.fail(res, w, fmt.Errorf("%w: non-finite height %g", coord.ErrInvalidShape, heights[w]))
		}
		x, y := e.geom.Anchor(w)
		if ok, off := e.offsetter.OffsetZ(x, y); ok {
			heights[w] -= off
		}
	}
	pts := e.geom.Points(heights)

	for _, w := range Wheels {
		sup := supports[w]
		pl, err := e.tol.PlaneFrom3Points(pts[sup[0]], pts[sup[1]], pts[sup[2]])
		if err != nil {
			return e.fail(res, w, err)
		}
		d, err := e.tol.ZDistance(pl, pts[w])
		if err != nil {
			return e.fail(res, w, err)
		}
		res.Planes[w] = pl
		res.Distances[w] = d
	}

	res.Dist = e.correction.apply(floats.Max(res.Distances[:]))
	return res, nil
}

func (e *Evaluator) fail(res Result, w Wheel, err error) (Result, error) {
	res.Planes = [4]coord.Plane{}
	res.Distances = [4]float64{}
	res.Dist = 0
	res.Err = &RowError{Index: res.Index, Wheel: w, Err: err}
	return res, res.Err
}

// Process evaluates every sample, returning results in input order.
//
// With the Halt policy the first failing row (lowest index) is returned as
// the error and no results are returned. With Skip, every result is returned
// and failing rows carry their error in Result.Err; the joined row errors
// are returned as well.
func (e *Evaluator) Process(ctx context.Context, samples []Sample) ([]Result, error) {
	results := make([]Result, len(samples))

	var mx sync.Mutex
	var done int
	report := func() {
		if e.progress == nil {
			return
		}
		mx.Lock()
		done++
		e.progress(done, len(samples))
		mx.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var err error
			results[i], err = e.Evaluate(samples[i])
			report()
			if err != nil && e.policy == Halt {
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.policy == Halt {
		if err == nil {
			return results, nil
		}
		// report the earliest failure regardless of scheduling
		for _, r := range results {
			if r.Err != nil {
				return nil, r.Err
			}
		}
		return nil, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			e.logf("ERROR: skipping %v", r.Err)
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Stream evaluates samples from r as they arrive, passing each
// result to fn. It returns nil once r reports io.EOF.
func (e *Evaluator) Stream(ctx context.Context, r Reader, fn func(Result) error) error {
	var n int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		n++

		res, err := e.Evaluate(s)
		if err != nil {
			if e.policy == Halt {
				return err
			}
			e.logf("ERROR: skipping %v", err)
		}
		if e.progress != nil {
			e.progress(n, 0)
		}
		err = fn(res)
		if err != nil {
			return err
		}
	}
}
