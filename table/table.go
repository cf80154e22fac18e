package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mastercactapus/planarity/planarity"
)

// Table is a parsed input file. Header and Records are kept verbatim so
// the output can reproduce every input column.
type Table struct {
	Header  []string
	Records [][]string

	Samples []planarity.Sample
	Levels  []planarity.LevelSample
}

// Reader streams wheel samples from CSV input.
type Reader struct {
	cr   *csv.Reader
	cols []int
	idx  int
	line int
	n    int
	hdr  []string
	last []string
}

var _ planarity.Reader = &Reader{}

// NewReader reads the header line of r and locates the wheel columns.
func NewReader(r io.Reader, c Columns) (*Reader, error) {
	c = c.WithDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty input: no header line")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := newHeader(names)
	want := []string{c.Travelled}
	for _, w := range planarity.Wheels {
		want = append(want, c.wheel(w))
	}
	cols, err := h.require(want...)
	if err != nil {
		return nil, err
	}
	idx, ok := h[c.Index]
	if !ok {
		idx = -1
	}

	return &Reader{cr: cr, cols: cols, idx: idx, line: 1, hdr: names}, nil
}

// Header returns the input header.
func (r *Reader) Header() []string { return r.hdr }

// Record returns the raw fields of the last sample read.
func (r *Reader) Record() []string { return r.last }

func (r *Reader) Read() (planarity.Sample, error) {
	for {
		rec, err := r.cr.Read()
		if err != nil {
			return planarity.Sample{}, err
		}
		r.line, _ = r.cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		s := planarity.Sample{Index: r.n}
		if r.idx >= 0 && r.idx < len(rec) {
			s.Index, err = parseIndex(rec[r.idx], r.line)
			if err != nil {
				return planarity.Sample{}, err
			}
		}
		s.Travelled, err = parseTravelled(rec, r.cols[0], r.line)
		if err != nil {
			return planarity.Sample{}, err
		}
		for _, w := range planarity.Wheels {
			s.Heights[w], err = parseFloat(rec, r.cols[1+int(w)], w.String(), r.line)
			if err != nil {
				return planarity.Sample{}, err
			}
		}

		r.n++
		r.last = rec
		return s, nil
	}
}

func parseIndex(v string, line int) (int, error) {
	v = strings.TrimSpace(v)
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("line %d: invalid index %q", line, v)
	}
	return int(f), nil
}

// ReadTable reads every wheel sample from r.
func ReadTable(r io.Reader, c Columns) (*Table, error) {
	rd, err := NewReader(r, c)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: rd.Header()}
	for {
		s, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Samples = append(t.Samples, s)
		t.Records = append(t.Records, rd.Record())
	}
	return t, nil
}

// ReadLevels reads a two-sensor level table.
func ReadLevels(r io.Reader, c Columns) (*Table, error) {
	c = c.WithDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty input: no header line")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := newHeader(names)
	cols, err := h.require(c.Travelled, c.Level1, c.Level2)
	if err != nil {
		return nil, err
	}
	idx, ok := h[c.Index]
	if !ok {
		idx = -1
	}

	t := &Table{Header: names}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ = cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		l := planarity.LevelSample{Index: len(t.Levels)}
		if idx >= 0 && idx < len(rec) {
			if l.Index, err = parseIndex(rec[idx], line); err != nil {
				return nil, err
			}
		}
		if l.Travelled, err = parseTravelled(rec, cols[0], line); err != nil {
			return nil, err
		}
		if l.Level1, err = parseFloat(rec, cols[1], "level1", line); err != nil {
			return nil, err
		}
		if l.Level2, err = parseFloat(rec, cols[2], "level2", line); err != nil {
			return nil, err
		}
		t.Levels = append(t.Levels, l)
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// WriteTable writes the input columns of t followed by the result columns.
// results must line up with t.Records.
func WriteTable(w io.Writer, t *Table, results []planarity.Result) error {
	if len(results) != len(t.Records) {
		return fmt.Errorf("have %d results for %d rows", len(results), len(t.Records))
	}

	cw := csv.NewWriter(w)
	err := cw.Write(append(append([]string(nil), t.Header...), ResultHeader()...))
	if err != nil {
		return err
	}
	for i, rec := range t.Records {
		row := make([]string, len(t.Header), len(t.Header)+21)
		copy(row, rec)
		err = cw.Write(append(row, resultRecord(results[i])...))
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ResultWriter writes results one row at a time, for aggregated or
// streamed samples that have no source record.
type ResultWriter struct {
	cw          *csv.Writer
	wroteHeader bool
}

func NewResultWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{cw: csv.NewWriter(w)}
}

func (rw *ResultWriter) Write(r planarity.Result) error {
	if !rw.wroteHeader {
		hdr := []string{"Index", "Travelled"}
		for _, wh := range planarity.Wheels {
			hdr = append(hdr, wh.String())
		}
		err := rw.cw.Write(append(hdr, ResultHeader()...))
		if err != nil {
			return err
		}
		rw.wroteHeader = true
	}

	row := []string{strconv.Itoa(r.Index), formatFloat(r.Travelled)}
	for _, h := range r.Heights {
		row = append(row, formatFloat(h))
	}
	return rw.cw.Write(append(row, resultRecord(r)...))
}

// Flush writes any buffered rows.
func (rw *ResultWriter) Flush() error {
	rw.cw.Flush()
	return rw.cw.Error()
}

// WriteResults writes results that have no source record, such as
// aggregated samples.
func WriteResults(w io.Writer, results []planarity.Result) error {
	rw := NewResultWriter(w)
	for _, r := range results {
		err := rw.Write(r)
		if err != nil {
			return err
		}
	}
	return rw.Flush()
}
