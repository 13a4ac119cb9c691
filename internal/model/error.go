package model

import "fmt"

// Kind classifies an Error so callers can decide whether it is fatal,
// recoverable, or something the RPC layer should translate.
type Kind int

const (
	// KindUnknown is the zero value and should never be produced deliberately.
	KindUnknown Kind = iota
	// KindCurrencyPairBadFormat is raised by the currency pair validator.
	KindCurrencyPairBadFormat
	// KindTransport is raised when an exchange websocket errors or closes.
	KindTransport
	// KindNotEnoughOrders is raised when a depth message has fewer than 10
	// levels on one side.
	KindNotEnoughOrders
	// KindDecodeFailure is raised when a depth message fails to decode.
	KindDecodeFailure
	// KindInternal is a catch-all used at the RPC boundary.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindCurrencyPairBadFormat:
		return "currency_pair_bad_format"
	case KindTransport:
		return "transport"
	case KindNotEnoughOrders:
		return "not_enough_orders"
	case KindDecodeFailure:
		return "decode_failure"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the shared error type for the aggregation pipeline. It carries a
// Kind so components downstream of where it was raised (the merger, the
// broadcast hub, the RPC endpoint) can apply the policy from the error
// handling design without re-inspecting error strings.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind wrapping an underlying cause.
func WrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CurrencyPairBadFormat reports that text is not a valid currency pair.
func CurrencyPairBadFormat(text string) *Error {
	return NewError(KindCurrencyPairBadFormat, "currency pair %q is invalid", text)
}

// NotEnoughOrders reports that an exchange depth message had fewer than 10
// levels on the named side.
func NotEnoughOrders(exchange, side string) *Error {
	return NewError(KindNotEnoughOrders, "%s stream was expected to send at least 10 %s", exchange, side)
}

// Transport wraps a websocket I/O error.
func Transport(exchange string, cause error) *Error {
	return WrapError(KindTransport, cause, "%s websocket error", exchange)
}

// DecodeFailure wraps a JSON or decimal parse error.
func DecodeFailure(exchange string, cause error) *Error {
	return WrapError(KindDecodeFailure, cause, "%s failed to decode message", exchange)
}
