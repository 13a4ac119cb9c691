// Package currency validates the six-character currency pair tokens
// accepted by both exchange adapters (e.g. "ETHBTC").
package currency

import (
	"strings"

	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// Pair is a validated currency pair token. The zero value is not a valid
// Pair; construct one with Parse.
type Pair struct {
	text string
}

// String returns the pair's canonical (uppercase) text form.
func (p Pair) String() string {
	return p.text
}

// Lower returns the pair's text in lowercase, the form both exchange
// subscription payloads and URL paths expect.
func (p Pair) Lower() string {
	return strings.ToLower(p.text)
}

// supported is the closed set of currency pairs accepted by both Binance
// and Bitstamp. Kept in the same order as the upstream reference so a
// human diff against it stays trivial.
var supported = map[string]struct{}{
	"AAVEBTC": {}, "ADABTC": {}, "ADAEUR": {}, "ALGOBTC": {}, "APEEUR": {},
	"AUDIOBTC": {}, "AVAXEUR": {}, "BCHBTC": {}, "BCHEUR": {}, "BTCEUR": {},
	"BTCGBP": {}, "BTCPAX": {}, "BTCUSDC": {}, "BTCUSDT": {}, "CHZEUR": {},
	"DOTEUR": {}, "ENJEUR": {}, "ETHBTC": {}, "ETHEUR": {}, "ETHGBP": {},
	"ETHPAX": {}, "ETHUSDC": {}, "ETHUSDT": {}, "FTMEUR": {}, "GALAEUR": {},
	"GRTEUR": {}, "LINKBTC": {}, "LINKEUR": {}, "LINKGBP": {}, "LTCBTC": {},
	"LTCEUR": {}, "LTCGBP": {}, "MATICEUR": {}, "NEAREUR": {}, "OMGBTC": {},
	"SHIBEUR": {}, "SOLEUR": {}, "SXPEUR": {}, "UNIBTC": {}, "UNIEUR": {},
	"USDCUSDT": {}, "WBTCBTC": {}, "XLMBTC": {}, "XLMEUR": {}, "XRPBTC": {},
	"XRPEUR": {}, "XRPGBP": {}, "XRPUSDT": {}, "YFIEUR": {},
}

// Default is the pair used when the CLI is invoked with no argument.
const Default = "ETHBTC"

// Parse validates text as a currency pair: it must be pure ASCII, exactly
// six characters, entirely alphabetic, and a member of the closed set
// supported by both exchanges.
func Parse(text string) (Pair, error) {
	if !isASCII(text) || len(text) != 6 || !isAlphabetic(text) {
		return Pair{}, model.CurrencyPairBadFormat(text)
	}

	// The closed set is case-sensitive (all entries are uppercase); a
	// lowercase token that would match after folding is still rejected,
	// matching the reference CLI's case-sensitive allow-list.
	if !Supported(text) {
		return Pair{}, model.CurrencyPairBadFormat(text)
	}

	return Pair{text: text}, nil
}

// Supported reports whether text (case-sensitive) is in the closed set,
// for use by CLI argument validation ahead of Parse.
func Supported(text string) bool {
	_, ok := supported[text]
	return ok
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
