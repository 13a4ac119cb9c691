package exchange

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/DimaJoyti/orderbook-aggregator/internal/currency"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

const bitstampWebsocketURL = "wss://ws.bitstamp.net"

// ExchangeNameBitstamp tags every Level the Bitstamp adapter produces.
const ExchangeNameBitstamp = "Bitstamp"

// BitstampAdapter connects to Bitstamp's detail order book websocket
// channel for a single currency pair and decodes each message into a
// normalized Summary.
type BitstampAdapter struct {
	dialer Dialer
}

// NewBitstampAdapter builds an adapter using dialer to open the websocket.
// A nil dialer defaults to GorillaDialer.
func NewBitstampAdapter(dialer Dialer) *BitstampAdapter {
	if dialer == nil {
		dialer = GorillaDialer{}
	}
	return &BitstampAdapter{dialer: dialer}
}

type bitstampChannel struct {
	Channel string `json:"channel"`
}

type bitstampSubscribeMessage struct {
	Event string          `json:"event"`
	Data  bitstampChannel `json:"data"`
}

type bitstampRawOrderBook struct {
	Data struct {
		Bids [][3]string `json:"bids"`
		Asks [][3]string `json:"asks"`
	} `json:"data"`
}

// Stream connects, subscribes, and returns a channel of decoded summaries.
// The sequence terminates (after yielding exactly one final error item) on
// the first transport error or decode failure, per the adapter contract.
func (a *BitstampAdapter) Stream(pair currency.Pair) (<-chan model.Result[model.Summary], error) {
	conn, err := a.dialer.Dial(bitstampWebsocketURL)
	if err != nil {
		return nil, model.Transport(ExchangeNameBitstamp, err)
	}

	subscribe := bitstampSubscribeMessage{
		Event: "bts:subscribe",
		Data:  bitstampChannel{Channel: fmt.Sprintf("detail_order_book_%s", pair.Lower())},
	}
	payload, err := json.Marshal(subscribe)
	if err != nil {
		conn.Close()
		return nil, model.WrapError(model.KindInternal, err, "encoding bitstamp subscribe message")
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return nil, model.Transport(ExchangeNameBitstamp, err)
	}

	// Consume and validate the subscription acknowledgement before
	// entering the steady-state loop.
	_, ack, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, model.Transport(ExchangeNameBitstamp, err)
	}
	if err := validateBitstampAck(ack); err != nil {
		conn.Close()
		return nil, err
	}

	out := make(chan model.Result[model.Summary])
	texts := PingResponder(conn)

	go func() {
		defer close(out)
		defer conn.Close()

		for text := range texts {
			if text.Err != nil {
				out <- model.ErrResult[model.Summary](text.Err)
				return
			}

			summary, err := decodeBitstampSummary(text.Value)
			if err != nil {
				out <- model.ErrResult[model.Summary](err)
				return
			}
			out <- model.Ok(summary)
		}
	}()

	return out, nil
}

// validateBitstampAck fails closed only when the ack frame explicitly
// carries Bitstamp's "bts:error" event.
func validateBitstampAck(payload []byte) error {
	var ack struct {
		Event string `json:"event"`
		Data  struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &ack); err != nil {
		return nil
	}
	if ack.Event == "bts:error" {
		return model.NewError(model.KindTransport, "bitstamp rejected subscription: %s", ack.Data.Message)
	}
	return nil
}

func decodeBitstampSummary(text string) (model.Summary, error) {
	var raw bitstampRawOrderBook
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBitstamp, err)
	}

	if len(raw.Data.Bids) < 10 {
		return model.Summary{}, model.NotEnoughOrders(ExchangeNameBitstamp, "bids")
	}
	if len(raw.Data.Asks) < 10 {
		return model.Summary{}, model.NotEnoughOrders(ExchangeNameBitstamp, "asks")
	}

	bids, err := rawTriplesToLevels(raw.Data.Bids[:10], ExchangeNameBitstamp)
	if err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBitstamp, err)
	}
	asks, err := rawTriplesToLevels(raw.Data.Asks[:10], ExchangeNameBitstamp)
	if err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBitstamp, err)
	}

	// Unlike Binance, Bitstamp gives no ordering guarantee, so sort on
	// ingest to preserve the side-ordering invariant.
	sortBidsDescending(bids)
	sortAsksAscending(asks)

	return model.NewSummary(bids, asks), nil
}

func rawTriplesToLevels(raw [][3]string, exchange string) ([]model.Level, error) {
	levels := make([]model.Level, len(raw))
	for i, entry := range raw {
		price, err := decimal.NewFromString(entry[0])
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(entry[1])
		if err != nil {
			return nil, err
		}
		// entry[2] is the exchange order identifier; the normalized
		// Summary carries price/amount/exchange only, so it is dropped.
		levels[i] = model.Level{Price: price, Amount: amount, Exchange: exchange}
	}
	return levels, nil
}
