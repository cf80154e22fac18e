package feed

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/planarity/planarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"travelled":1.5,"flh":0,"frh":0,"rlh":-10,"rrh":0}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"travelled":1.8,"flh":5,"frh":5,"rlh":5}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"index":42,"travelled":2,"flh":1,"frh":1,"rlh":1,"rrh":1}`))

		// hold the connection until the client goes away
		conn.ReadMessage()
	}))
	defer srv.Close()

	src := NewWSSource("ws" + strings.TrimPrefix(srv.URL, "http"))

	s, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, planarity.Sample{Index: 0, Travelled: 1.5, Heights: [4]float64{0, 0, -10, 0}}, s)

	s, err = src.Read()
	require.NoError(t, err)
	assert.Equal(t, 42, s.Index)
	assert.Equal(t, [4]float64{1, 1, 1, 1}, s.Heights)

	// the frame without rrh is dropped rather than read as 0
	assert.Equal(t, 2.0, s.Travelled)

	require.NoError(t, src.Close())
	_, err = src.Read()
	assert.Equal(t, io.EOF, err)
}

func TestFrame_Validate(t *testing.T) {
	v := 1.0
	f := Frame{Travelled: &v, FLH: &v, FRH: &v, RLH: &v, RRH: &v}
	assert.NoError(t, f.Validate())

	f.RRH = nil
	assert.ErrorContains(t, f.Validate(), "rrh")

	f = Frame{FLH: &v, FRH: &v, RLH: &v, RRH: &v}
	assert.ErrorContains(t, f.Validate(), "travelled")
}
