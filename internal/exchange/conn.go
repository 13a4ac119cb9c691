// Package exchange implements the websocket ingest adapters (C1) and the
// generic ping/pong responder (C2) shared by both exchanges.
package exchange

import "time"

// Conn is the subset of *websocket.Conn the ping responder and adapters
// depend on. *websocket.Conn satisfies it directly; the interface exists
// so adapters can be driven against a fake connection in tests.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Dialer abstracts websocket.DefaultDialer.Dial so adapters don't depend
// directly on a live network connection in tests.
type Dialer interface {
	Dial(url string) (Conn, error)
}
