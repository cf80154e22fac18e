package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mastercactapus/planarity/calibration"
	"github.com/mastercactapus/planarity/config"
	"github.com/mastercactapus/planarity/planarity"
	"github.com/mastercactapus/planarity/table"
)

// analysis is a processed input table.
type analysis struct {
	table   *table.Table
	results []planarity.Result

	// direct is true when results line up 1:1 with table.Records.
	direct bool
}

type inputError struct{ err error }

func (e inputError) Error() string { return e.err.Error() }
func (e inputError) Unwrap() error { return e.err }

func loadOffsetter(cfg *config.Config) (calibration.ZOffsetter, error) {
	name := cfg.GetCalibration()
	if name == "" {
		return nil, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := calibration.ReadMeasurements(f)
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w", name, err)
	}
	if z := cfg.GetCalibrationZero(); z != 0 {
		points = calibration.OffsetFrom(z, points)
	}
	mesh, err := calibration.NewMesh(points)
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w", name, err)
	}
	return mesh, nil
}

// samples reads r according to cfg and returns the samples to evaluate.
func samples(r io.Reader, cfg *config.Config) (*table.Table, []planarity.Sample, bool, error) {
	cols := cfg.GetColumns()
	opt := cfg.GetAggregateOptions()

	if cfg.GetMode() == config.ModeLevels {
		tbl, err := table.ReadLevels(r, cols)
		if err != nil {
			return nil, nil, false, inputError{err}
		}
		levels := tbl.Levels
		if cfg.GetAggregate() {
			levels, err = planarity.AggregateLevels(levels, opt)
			if err != nil {
				return nil, nil, false, inputError{err}
			}
		}
		return tbl, planarity.FromLevels(levels), false, nil
	}

	tbl, err := table.ReadTable(r, cols)
	if err != nil {
		return nil, nil, false, inputError{err}
	}
	if !cfg.GetAggregate() {
		return tbl, tbl.Samples, true, nil
	}
	s, err := planarity.Aggregate(tbl.Samples, opt)
	if err != nil {
		return nil, nil, false, inputError{err}
	}
	return tbl, s, false, nil
}

func analyze(ctx context.Context, r io.Reader, cfg *config.Config, e *planarity.Evaluator) (*analysis, error) {
	tbl, s, direct, err := samples(r, cfg)
	if err != nil {
		return nil, err
	}

	res, err := e.Process(ctx, s)
	if res == nil {
		return nil, err
	}
	return &analysis{table: tbl, results: res, direct: direct}, err
}

// write outputs the augmented table, or the result rows if the
// input was aggregated.
func (a *analysis) write(w io.Writer) error {
	if a.direct {
		return table.WriteTable(w, a.table, a.results)
	}
	return table.WriteResults(w, a.results)
}
