package model

import "github.com/shopspring/decimal"

// Level is a single price point in an order book side, tagged with the
// exchange it originated from so the merger can trace provenance and the
// broadcast/RPC boundary can report it verbatim.
type Level struct {
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Exchange string
}

// Summary is an ordered top-10 view of both sides of an order book, plus
// the derived spread. It is produced either by a single exchange adapter
// (one summary per upstream depth snapshot) or by the merger (one summary
// per cache update), and is treated as shared-immutable once it reaches the
// broadcast hub.
type Summary struct {
	Bids   []Level
	Asks   []Level
	Spread decimal.Decimal
}

// NewSummary builds a Summary from exactly 10 bids and 10 asks, deriving the
// spread from the best ask and best bid. Producing a Summary with any other
// number of levels is a programming error and panics, matching the
// upstream invariant that depth messages are always truncated/validated to
// exactly 10 entries per side before a Summary is constructed.
func NewSummary(bids, asks []Level) Summary {
	if len(bids) != 10 {
		panic("model: summary requires exactly 10 bids")
	}
	if len(asks) != 10 {
		panic("model: summary requires exactly 10 asks")
	}
	return Summary{
		Bids:   bids,
		Asks:   asks,
		Spread: asks[0].Price.Sub(bids[0].Price),
	}
}
