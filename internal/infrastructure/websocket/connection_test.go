package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Fatal(string, ...interface{}) {}

// dialPair spins up a real websocket pair: the server side wrapped in a
// Connection, the client side raw.
func dialPair(t *testing.T) (*Connection, *gws.Conn) {
	t.Helper()

	connCh := make(chan *Connection, 1)
	up := gws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		connCh <- NewConnection(ws, "u1", testLogger{})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return <-connCh, client
}

func TestWritePumpDelivers(t *testing.T) {
	conn, client := dialPair(t)
	defer conn.Close()
	go conn.writePump()

	require.NoError(t, conn.Send(map[string]interface{}{"type": "song-updated", "songId": "s1"}))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "song-updated", msg["type"])
	assert.Equal(t, "s1", msg["songId"])
}

func TestSendAfterClose(t *testing.T) {
	conn, _ := dialPair(t)
	conn.Close()

	err := conn.Send(map[string]string{"type": "song-updated"})
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	conn, _ := dialPair(t)

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}

func TestSendOverflowDropsInsteadOfBlocking(t *testing.T) {
	conn, _ := dialPair(t)
	defer conn.Close()
	// No write pump running: the queue fills and the overflow is dropped.

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, conn.Send(map[string]int{"i": i}))
	}

	err := conn.Send(map[string]string{"overflow": "yes"})
	assert.ErrorIs(t, err, ErrSendBufferFull)
}
