package feed

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mastercactapus/planarity/planarity"
)

// LineReader parses "travelled,flh,frh,rlh,rrh" lines. Blank lines and
// anything after a ';' are ignored.
type LineReader struct {
	br *bufio.Reader
	n  int
}

var _ planarity.Reader = &LineReader{}

func NewLineReader(r io.Reader) *LineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &LineReader{br: br}
	}

	return &LineReader{br: bufio.NewReader(r)}
}

func (l *LineReader) Read() (planarity.Sample, error) {
	for {
		s, err := l.br.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		if err != nil {
			return planarity.Sample{}, err
		}

		s = strings.SplitN(s, ";", 2)[0]
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		return l.parse(s)
	}
}

func (l *LineReader) parse(s string) (planarity.Sample, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return planarity.Sample{}, fmt.Errorf("invalid line %q: want 5 fields, got %d", s, len(parts))
	}

	var vals [5]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return planarity.Sample{}, fmt.Errorf("invalid line %q: %w", s, err)
		}
		vals[i] = v
	}

	smp := planarity.Sample{
		Index:     l.n,
		Travelled: vals[0],
		Heights:   [4]float64{vals[1], vals[2], vals[3], vals[4]},
	}
	l.n++
	return smp, nil
}
