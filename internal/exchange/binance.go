package exchange

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/DimaJoyti/orderbook-aggregator/internal/currency"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

const binanceWebsocketBaseURL = "wss://stream.binance.com:9443/ws"

// ExchangeNameBinance tags every Level the Binance adapter produces.
const ExchangeNameBinance = "Binance"

// BinanceAdapter connects to Binance's partial-depth websocket feed for a
// single currency pair and decodes each message into a normalized Summary.
type BinanceAdapter struct {
	dialer Dialer
}

// NewBinanceAdapter builds an adapter using dialer to open the websocket.
// A nil dialer defaults to GorillaDialer.
func NewBinanceAdapter(dialer Dialer) *BinanceAdapter {
	if dialer == nil {
		dialer = GorillaDialer{}
	}
	return &BinanceAdapter{dialer: dialer}
}

type binanceSubscribeMessage struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

type binanceRawOrderBook struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// Stream connects, subscribes, and returns a channel of decoded summaries.
// The sequence terminates (after yielding exactly one final error item) on
// the first transport error or decode failure, per the adapter contract.
func (a *BinanceAdapter) Stream(pair currency.Pair) (<-chan model.Result[model.Summary], error) {
	url := fmt.Sprintf("%s/%s", binanceWebsocketBaseURL, pair.Lower())
	conn, err := a.dialer.Dial(url)
	if err != nil {
		return nil, model.Transport(ExchangeNameBinance, err)
	}

	subscribe := binanceSubscribeMessage{
		Method: "SUBSCRIBE",
		Params: []string{fmt.Sprintf("%s@depth10@100ms", pair.Lower())},
		ID:     1,
	}
	payload, err := json.Marshal(subscribe)
	if err != nil {
		conn.Close()
		return nil, model.WrapError(model.KindInternal, err, "encoding binance subscribe message")
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return nil, model.Transport(ExchangeNameBinance, err)
	}

	// Consume and validate the subscription acknowledgement before
	// entering the steady-state loop.
	_, ack, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, model.Transport(ExchangeNameBinance, err)
	}
	if err := validateBinanceAck(ack); err != nil {
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

			summary, err := decodeBinanceSummary(text.Value)
			if err != nil {
				out <- model.ErrResult[model.Summary](err)
				return
			}
			out <- model.Ok(summary)
		}
	}()

	return out, nil
}

// validateBinanceAck fails closed only when the ack frame itself decodes
// into an explicit error shape; Binance's success ack ("{"result":null,
// "id":1}") and any other non-error shape are treated as acceptance.
func validateBinanceAck(payload []byte) error {
	var ack struct {
		Error *struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &ack); err != nil {
		return nil
	}
	if ack.Error != nil {
		return model.NewError(model.KindTransport, "binance rejected subscription: %s", ack.Error.Msg)
	}
	return nil
}

func decodeBinanceSummary(text string) (model.Summary, error) {
	var raw binanceRawOrderBook
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBinance, err)
	}

	if len(raw.Bids) < 10 {
		return model.Summary{}, model.NotEnoughOrders(ExchangeNameBinance, "bids")
	}
	if len(raw.Asks) < 10 {
		return model.Summary{}, model.NotEnoughOrders(ExchangeNameBinance, "asks")
	}

	bids, err := rawPairsToLevels(raw.Bids[:10], ExchangeNameBinance)
	if err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBinance, err)
	}
	asks, err := rawPairsToLevels(raw.Asks[:10], ExchangeNameBinance)
	if err != nil {
		return model.Summary{}, model.DecodeFailure(ExchangeNameBinance, err)
	}

	sortBidsDescending(bids)
	sortAsksAscending(asks)

	return model.NewSummary(bids, asks), nil
}

func rawPairsToLevels(raw [][2]string, exchange string) ([]model.Level, error) {
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
		levels[i] = model.Level{Price: price, Amount: amount, Exchange: exchange}
	}
	return levels, nil
}

func sortBidsDescending(levels []model.Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Price.GreaterThan(levels[j].Price)
	})
}

func sortAsksAscending(levels []model.Level) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Price.LessThan(levels[j].Price)
	})
}
