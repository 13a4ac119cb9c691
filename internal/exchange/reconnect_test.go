package exchange_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/DimaJoyti/orderbook-aggregator/internal/currency"
	"github.com/DimaJoyti/orderbook-aggregator/internal/exchange"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// fakeStreamer replays one scripted channel per call to Stream, in order.
type fakeStreamer struct {
	channels []chan model.Result[model.Summary]
	dialed   int
}

func (f *fakeStreamer) Stream(_ currency.Pair) (<-chan model.Result[model.Summary], error) {
	ch := f.channels[f.dialed]
	f.dialed++
	return ch, nil
}

func fixtureSummary() model.Summary {
	bids := make([]model.Level, 10)
	asks := make([]model.Level, 10)
	for i := 0; i < 10; i++ {
		bids[i] = model.Level{Price: decimal.NewFromInt(int64(100 - i)), Amount: decimal.NewFromInt(1), Exchange: "Binance"}
		asks[i] = model.Level{Price: decimal.NewFromInt(int64(101 + i)), Amount: decimal.NewFromInt(1), Exchange: "Binance"}
	}
	return model.NewSummary(bids, asks)
}

func TestReconnecting_RedialsAfterUpstreamCloses(t *testing.T) {
	first := make(chan model.Result[model.Summary], 1)
	second := make(chan model.Result[model.Summary], 1)
	first <- model.Ok(fixtureSummary())
	close(first)
	second <- model.Ok(fixtureSummary())

	streamer := &fakeStreamer{channels: []chan model.Result[model.Summary]{first, second}}
	limiter := rate.NewLimiter(rate.Inf, 1)
	reconnecting := exchange.NewReconnecting("Binance", streamer, 1, limiter)

	out, err := reconnecting.Stream(mustParse(currency.Default))
	require.NoError(t, err)

	item := <-out
	assert.NoError(t, item.Err)

	item = <-out
	assert.NoError(t, item.Err)
	assert.Equal(t, 2, streamer.dialed)

	close(second)
	_, ok := <-out
	assert.False(t, ok, "channel closes once the upstream closes with no attempts left")
}

func TestReconnecting_GivesUpAfterMaxAttempts(t *testing.T) {
	only := make(chan model.Result[model.Summary])
	close(only)

	streamer := &fakeStreamer{channels: []chan model.Result[model.Summary]{only}}
	reconnecting := exchange.NewReconnecting("Binance", streamer, 0, rate.NewLimiter(rate.Inf, 1))

	out, err := reconnecting.Stream(mustParse(currency.Default))
	require.NoError(t, err)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected channel to close immediately with zero redial attempts")
	}
}

func mustParse(text string) currency.Pair {
	pair, err := currency.Parse(text)
	if err != nil {
		panic(err)
	}
	return pair
}
