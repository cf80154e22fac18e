package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/planarity/planarity"
)

const retryDelay = 3 * time.Second

// Frame is a single sample as sent by a measurement bridge. Every
// field except Index is required.
type Frame struct {
	Index     *int     `json:"index,omitempty"`
	Travelled *float64 `json:"travelled"`
	FLH       *float64 `json:"flh"`
	FRH       *float64 `json:"frh"`
	RLH       *float64 `json:"rlh"`
	RRH       *float64 `json:"rrh"`
}

// Validate reports the first missing field of f.
func (f Frame) Validate() error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"travelled", f.Travelled},
		{"flh", f.FLH},
		{"frh", f.FRH},
		{"rlh", f.RLH},
		{"rrh", f.RRH},
	}
	for _, fl := range fields {
		if fl.v == nil {
			return fmt.Errorf("frame is missing %s", fl.name)
		}
	}
	return nil
}

// WSSource receives samples from a websocket bridge, reconnecting
// whenever the connection drops.
type WSSource struct {
	url string

	incomming chan planarity.Sample
	closeCh   chan struct{}
	closeOnce sync.Once

	mx sync.Mutex
	ws *websocket.Conn
	n  int
}

var _ planarity.Reader = &WSSource{}

func NewWSSource(url string) *WSSource {
	ws := &WSSource{
		url:       url,
		incomming: make(chan planarity.Sample, 1000),
		closeCh:   make(chan struct{}),
	}

	go ws.loop()

	return ws
}

// Read blocks until a sample arrives. It returns io.EOF after Close.
func (ws *WSSource) Read() (planarity.Sample, error) {
	select {
	case s := <-ws.incomming:
		return s, nil
	case <-ws.closeCh:
		return planarity.Sample{}, io.EOF
	}
}

func (ws *WSSource) Close() error {
	ws.closeOnce.Do(func() {
		close(ws.closeCh)
		ws.mx.Lock()
		if ws.ws != nil {
			ws.ws.Close()
		}
		ws.mx.Unlock()
	})
	return nil
}

func (ws *WSSource) closed() bool {
	select {
	case <-ws.closeCh:
		return true
	default:
		return false
	}
}

// frameSample converts a validated frame.
func (ws *WSSource) frameSample(f Frame) planarity.Sample {
	s := planarity.Sample{
		Index:     ws.n,
		Travelled: *f.Travelled,
		Heights:   [4]float64{*f.FLH, *f.FRH, *f.RLH, *f.RRH},
	}
	if f.Index != nil {
		s.Index = *f.Index
	}
	ws.n++
	return s
}

func (ws *WSSource) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !ws.closed() {
				log.Println("ERROR: read:", err)
			}
			return
		}
		var f Frame
		err = json.Unmarshal(data, &f)
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			log.Println("ERROR: dropping frame:", err)
			continue
		}
		select {
		case ws.incomming <- ws.frameSample(f):
		case <-ws.closeCh:
			return
		}
	}
}

func (ws *WSSource) loop() {
	for !ws.closed() {
		log.Println("Connecting to", ws.url)
		conn, _, err := websocket.DefaultDialer.Dial(ws.url, nil)
		if err != nil {
			log.Println("ERROR: connect:", err)
			select {
			case <-time.After(retryDelay):
			case <-ws.closeCh:
			}
			continue
		}
		log.Println("Connected.")

		ws.mx.Lock()
		if ws.closed() {
			ws.mx.Unlock()
			conn.Close()
			return
		}
		ws.ws = conn
		ws.mx.Unlock()

		ws.readLoop(conn)
		conn.Close()
	}
}
