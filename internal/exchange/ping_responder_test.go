package exchange_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimaJoyti/orderbook-aggregator/internal/exchange"
)

type scriptedFrame struct {
	messageType int
	payload     []byte
}

// fakeConn replays a fixed script of frames and records pongs written back,
// standing in for *websocket.Conn in adapter/ping-responder tests.
type fakeConn struct {
	mu     sync.Mutex
	frames []scriptedFrame
	pos    int
	pongs  [][]byte
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pos >= len(f.frames) {
		return 0, nil, errors.New("fakeConn: script exhausted")
	}
	frame := f.frames[f.pos]
	f.pos++
	return frame.messageType, frame.payload, nil
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }

func (f *fakeConn) WriteControl(messageType int, data []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == websocket.PongMessage {
		f.pongs = append(f.pongs, data)
	}
	return nil
}

func (f *fakeConn) Close() error { return nil }

func TestPingResponder_YieldsTextAndAnswersPings(t *testing.T) {
	conn := &fakeConn{frames: []scriptedFrame{
		{messageType: websocket.TextMessage, payload: []byte("hello")},
		{messageType: websocket.PingMessage, payload: []byte("ping-data")},
		{messageType: websocket.BinaryMessage, payload: []byte("ignored")},
		{messageType: websocket.TextMessage, payload: []byte("world")},
	}}

	out := exchange.PingResponder(conn)

	first := <-out
	require.NoError(t, first.Err)
	assert.Equal(t, "hello", first.Value)

	second := <-out
	require.NoError(t, second.Err)
	assert.Equal(t, "world", second.Value)

	// Exhausting the script makes ReadMessage fail, which the responder
	// reports as one final error item before closing the channel.
	final := <-out
	require.Error(t, final.Err)

	_, open := <-out
	assert.False(t, open, "channel closes once the scripted frames are exhausted")

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.pongs, 1)
	assert.Equal(t, []byte("ping-data"), conn.pongs[0])
}

func TestPingResponder_TerminatesOnTransportError(t *testing.T) {
	conn := &fakeConn{frames: nil}

	out := exchange.PingResponder(conn)

	result := <-out
	require.Error(t, result.Err)

	_, open := <-out
	assert.False(t, open)
}
