package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

func levels(n int, exchange string) []model.Level {
	out := make([]model.Level, n)
	for i := range out {
		out[i] = model.Level{
			Price:    decimal.NewFromInt(int64(100 - i)),
			Amount:   decimal.NewFromInt(1),
			Exchange: exchange,
		}
	}
	return out
}

func TestNewSummary_DerivesSpread(t *testing.T) {
	bids := levels(10, "Binance")
	asks := make([]model.Level, 10)
	for i := range asks {
		asks[i] = model.Level{
			Price:    decimal.NewFromInt(int64(101 + i)),
			Amount:   decimal.NewFromInt(1),
			Exchange: "Binance",
		}
	}

	summary := model.NewSummary(bids, asks)

	want := asks[0].Price.Sub(bids[0].Price)
	assert.True(t, want.Equal(summary.Spread))
}

func TestNewSummary_PanicsOnWrongLength(t *testing.T) {
	require.Panics(t, func() {
		model.NewSummary(levels(9, "Binance"), levels(10, "Binance"))
	})
	require.Panics(t, func() {
		model.NewSummary(levels(10, "Binance"), levels(11, "Binance"))
	})
}
