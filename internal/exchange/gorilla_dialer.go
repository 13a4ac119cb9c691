package exchange

import "github.com/gorilla/websocket"

// GorillaDialer dials real TLS websocket connections via
// github.com/gorilla/websocket, the library both exchange adapters use on
// the wire.
type GorillaDialer struct{}

func (GorillaDialer) Dial(url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
