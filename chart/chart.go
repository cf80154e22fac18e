package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/mastercactapus/planarity/planarity"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	Width  = 16 * vg.Inch
	Height = 3 * vg.Inch
)

// Options controls the y-axis tick layout.
type Options struct {
	TickMin, TickMax, TickStep float64
}

var DefaultOptions = Options{TickMin: 0, TickMax: 4, TickStep: 0.5}

func (o Options) ticks() []plot.Tick {
	if o.TickStep <= 0 || o.TickMax < o.TickMin {
		return nil
	}
	n := int(math.Floor((o.TickMax-o.TickMin)/o.TickStep + 1e-9))
	t := make([]plot.Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := o.TickMin + float64(i)*o.TickStep
		t = append(t, plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return t
}

// Lines splits results into runs of valid rows so failed rows show up
// as gaps instead of being drawn as zero.
func Lines(results []planarity.Result) []plotter.XYs {
	var lines []plotter.XYs
	var cur plotter.XYs
	for _, r := range results {
		if !r.Valid() {
			if len(cur) > 0 {
				lines = append(lines, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: r.Travelled, Y: r.Dist})
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// Render plots dist against travelled distance.
func Render(results []planarity.Result, title string, opt Options) (*plot.Plot, error) {
	lines := Lines(results)
	if len(lines) == 0 {
		return nil, errors.New("no valid results to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Travelled"
	p.Y.Label.Text = "dist"
	if t := opt.ticks(); len(t) > 0 {
		p.Y.Tick.Marker = plot.ConstantTicks(t)
	}
	p.Add(plotter.NewGrid())

	for _, pts := range lines {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("create line: %w", err)
		}
		l.Width = vg.Points(1)
		p.Add(l)
	}
	return p, nil
}

// FileName returns the image name for an input file: its base name plus ".png".
func FileName(input string) string {
	return filepath.Base(input) + ".png"
}

// Save renders results and writes the image to path. The format
// follows the file extension.
func Save(path string, results []planarity.Result, title string, opt Options) error {
	p, err := Render(results, title, opt)
	if err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// WriteTo renders results to w in the given format (png, svg, pdf...).
func WriteTo(w io.Writer, format string, results []planarity.Result, title string, opt Options) error {
	p, err := Render(results, title, opt)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
