package feed

import (
	"io"

	"github.com/tarm/serial"
)

// SerialReader reads samples from a measurement unit attached to a serial port.
type SerialReader struct {
	*LineReader
	port io.Closer
}

// OpenSerial opens the named port at baud. Reads block until a line
// arrives, since a read timeout surfaces as io.EOF.
func OpenSerial(name string, baud int) (*SerialReader, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}

	return &SerialReader{LineReader: NewLineReader(port), port: port}, nil
}

func (s *SerialReader) Close() error { return s.port.Close() }
