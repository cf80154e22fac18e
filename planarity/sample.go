package planarity

import (
	"fmt"
	"io"

	"github.com/mastercactapus/planarity/coord"
)

// Sample is one measurement instant.
type Sample struct {
	Index     int
	Travelled float64
	Heights   [4]float64
}

// Result is a Sample augmented with the four fitted planes,
// the held-out distances and the aggregate metric.
//
// Err is set when the row could not be evaluated; the numeric
// fields are meaningless in that case.
type Result struct {
	Sample

	Planes    [4]coord.Plane
	Distances [4]float64
	Dist      float64

	Err error
}

// Valid reports if the result was computed successfully.
func (r Result) Valid() bool { return r.Err == nil }

// A Reader returns samples one at a time, io.EOF when done.
type Reader interface {
	Read() (Sample, error)
}

type SamplesReader struct {
	Samples []Sample
	n       int
}

func (s *SamplesReader) Read() (Sample, error) {
	if s.n == len(s.Samples) {
		return Sample{}, io.EOF
	}

	s.n++
	return s.Samples[s.n-1], nil
}

// RowError describes a failure evaluating a single row.
type RowError struct {
	Index int
	Wheel Wheel
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.Wheel, e.Err)
}
func (e *RowError) Unwrap() error { return e.Err }
