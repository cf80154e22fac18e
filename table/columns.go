package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mastercactapus/planarity/planarity"
)

// Columns names the input columns to read.
type Columns struct {
	Travelled string `json:"travelled,omitempty"`

	// Index is optional; rows are numbered from 0 when it is missing.
	Index string `json:"index,omitempty"`

	FLH string `json:"flh,omitempty"`
	FRH string `json:"frh,omitempty"`
	RLH string `json:"rlh,omitempty"`
	RRH string `json:"rrh,omitempty"`

	Level1 string `json:"level1,omitempty"`
	Level2 string `json:"level2,omitempty"`
}

var DefaultColumns = Columns{
	Travelled: "Travelled",
	Index:     "Index",
	FLH:       "flh",
	FRH:       "frh",
	RLH:       "rlh",
	RRH:       "rrh",
	Level1:    "Level1",
	Level2:    "Level2",
}

// WithDefaults fills empty names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&c.Travelled, DefaultColumns.Travelled)
	set(&c.Index, DefaultColumns.Index)
	set(&c.FLH, DefaultColumns.FLH)
	set(&c.FRH, DefaultColumns.FRH)
	set(&c.RLH, DefaultColumns.RLH)
	set(&c.RRH, DefaultColumns.RRH)
	set(&c.Level1, DefaultColumns.Level1)
	set(&c.Level2, DefaultColumns.Level2)
	return c
}

func (c Columns) wheel(w planarity.Wheel) string {
	switch w {
	case planarity.FrontLeft:
		return c.FLH
	case planarity.FrontRight:
		return c.FRH
	case planarity.RearLeft:
		return c.RLH
	default:
		return c.RRH
	}
}

// ResultHeader lists the columns appended to each row, in order.
func ResultHeader() []string {
	h := make([]string, 0, 21)
	for _, w := range planarity.Wheels {
		for _, c := range []string{"a", "b", "c", "d"} {
			h = append(h, w.String()+"_coeff_"+c)
		}
	}
	for _, w := range planarity.Wheels {
		h = append(h, w.String()+"_dist")
	}
	return append(h, "dist")
}

// resultRecord formats r's added columns; failed rows are left empty.
func resultRecord(r planarity.Result) []string {
	rec := make([]string, 21)
	if !r.Valid() {
		return rec
	}
	n := 0
	for _, p := range r.Planes {
		for _, v := range []float64{p.A, p.B, p.C, p.D} {
			rec[n] = formatFloat(v)
			n++
		}
	}
	for _, d := range r.Distances {
		rec[n] = formatFloat(d)
		n++
	}
	rec[n] = formatFloat(r.Dist)
	return rec
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type header map[string]int

func newHeader(names []string) header {
	h := make(header, len(names))
	for i, n := range names {
		n = strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
		if _, ok := h[n]; !ok {
			h[n] = i
		}
	}
	return h
}

func (h header) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		col, ok := h[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		idx[i] = col
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseFloat(rec []string, col int, name string, line int) (float64, error) {
	if col >= len(rec) {
		return 0, fmt.Errorf("line %d: missing value for column %s", line, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: invalid number %q", line, name, rec[col])
	}
	return v, nil
}

// parseTravelled is parseFloat for the travelled column, which must be finite
// so rows can be ordered and binned.
func parseTravelled(rec []string, col int, line int) (float64, error) {
	v, err := parseFloat(rec, col, "travelled", line)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("line %d: column travelled: non-finite value %q", line, rec[col])
	}
	return v, nil
}
