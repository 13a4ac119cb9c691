package exchange

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

const pongWriteTimeout = 5 * time.Second

// PingResponder wraps a duplex websocket connection and answers liveness
// pings on the same socket while yielding text frame payloads to the
// caller. It is single-tasked: the goroutine it starts owns both the read
// side and the pong write side, so no external synchronization is needed.
// Binary, Pong, Close, and continuation frames are silently discarded; a
// transport error terminates the returned channel with one final error
// item.
func PingResponder(conn Conn) <-chan model.Result[string] {
	out := make(chan model.Result[string])

	go func() {
		defer close(out)

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				out <- model.ErrResult[string](model.Transport("websocket", err))
				return
			}

			switch messageType {
			case websocket.TextMessage:
				out <- model.Ok(string(payload))
			case websocket.PingMessage:
				// *websocket.Conn's default ping handler already answers
				// pings internally before ReadMessage ever returns one to
				// us, so this branch is a safety net for Conn
				// implementations that don't pre-handle control frames
				// rather than the live path in production.
				deadline := time.Now().Add(pongWriteTimeout)
				if err := conn.WriteControl(websocket.PongMessage, payload, deadline); err != nil {
					out <- model.ErrResult[string](model.Transport("websocket", err))
					return
				}
			default:
				// Binary, Pong, Close, continuation: discard.
			}
		}
	}()

	return out
}
