package exchange

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/DimaJoyti/orderbook-aggregator/internal/currency"
	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// Streamer is satisfied by BinanceAdapter and BitstampAdapter. It exists so
// Reconnecting can wrap either without depending on the concrete type.
type Streamer interface {
	Stream(pair currency.Pair) (<-chan model.Result[model.Summary], error)
}

// Reconnecting wraps a Streamer with a bounded, paced redial policy: when
// the wrapped stream terminates (its channel closes after its final error
// item), Reconnecting waits for limiter to allow another attempt and calls
// Stream again, up to maxAttempts additional dials. Once exhausted, the
// last error is forwarded and the returned channel closes for good.
//
// This is opt-in — callers that want the adapter's bare
// terminate-on-unrecoverable-error contract should call the adapter's
// Stream directly instead of wrapping it here.
type Reconnecting struct {
	exchange    string
	streamer    Streamer
	maxAttempts int
	limiter     *rate.Limiter
}

// NewReconnecting wraps streamer with a redial policy of up to maxAttempts
// additional dials after the first, paced by limiter. A nil limiter
// defaults to one redial attempt per second with a burst of 1.
func NewReconnecting(exchange string, streamer Streamer, maxAttempts int, limiter *rate.Limiter) *Reconnecting {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	return &Reconnecting{exchange: exchange, streamer: streamer, maxAttempts: maxAttempts, limiter: limiter}
}

// Stream behaves like the wrapped Streamer's Stream, except the returned
// channel only closes for good once the redial budget is exhausted.
func (r *Reconnecting) Stream(pair currency.Pair) (<-chan model.Result[model.Summary], error) {
	upstream, err := r.streamer.Stream(pair)
	if err != nil {
		return nil, err
	}

	out := make(chan model.Result[model.Summary])
	go r.run(pair, upstream, out)
	return out, nil
}

func (r *Reconnecting) run(pair currency.Pair, first <-chan model.Result[model.Summary], out chan<- model.Result[model.Summary]) {
	defer close(out)

	current := first
	attempts := 0

	for {
		item, ok := <-current
		if ok {
			out <- item
			continue
		}

		if attempts >= r.maxAttempts {
			return
		}
		attempts++

		if err := r.limiter.Wait(context.Background()); err != nil {
			return
		}

		next, dialErr := r.streamer.Stream(pair)
		if dialErr != nil {
			out <- model.ErrResult[model.Summary](model.Transport(r.exchange, dialErr))
			continue
		}
		current = next
	}
}
