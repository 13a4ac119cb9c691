// Package aggregator implements the merging operator (C3): it caches the
// latest per-exchange Summary and recomputes a merged top-10 view on every
// arrival.
package aggregator

import (
	"reflect"
	"sort"

	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// Merger caches the latest Summary seen from each exchange tag (keyed by
// Asks[0].Exchange, since every Level in a Summary shares one tag) and
// recomputes the merged top-10 bid/ask view on every arrival. It owns no
// shared state — the cache belongs to whichever single goroutine calls Run.
type Merger struct {
	cache map[string]model.Summary
	// tags preserves first-seen order so the flatten step has a
	// deterministic iteration order across runs, keeping tie-break
	// behavior deterministic across runs.
	tags []string
}

// Source is one exchange's update stream, tagged with the exchange name
// so the merger can attribute even error items to a cache entry.
type Source struct {
	Exchange string
	Updates  <-chan model.Result[model.Summary]
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{cache: make(map[string]model.Summary)}
}

// Run fairly interleaves sources and emits one merged Summary (or forwarded
// error) per arrival on the returned channel. Fairness comes from Go's
// select, which among multiple ready cases picks pseudo-randomly rather
// than always favoring one source, so no input channel can starve another.
// The returned channel closes once every source has closed.
func (m *Merger) Run(sources ...Source) <-chan model.Result[model.Summary] {
	out := make(chan model.Result[model.Summary])

	go func() {
		defer close(out)

		cases := make([]reflect.SelectCase, len(sources))
		for i, src := range sources {
			cases[i] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(src.Updates)}
		}

		remaining := len(cases)
		for remaining > 0 {
			chosen, value, ok := reflect.Select(cases)
			if !ok {
				// A closed input: disable its case permanently by
				// replacing it with a nil channel, which select never
				// picks, instead of reshuffling the slice.
				cases[chosen].Chan = reflect.ValueOf((chan model.Result[model.Summary])(nil))
				remaining--
				continue
			}

			item := value.Interface().(model.Result[model.Summary])
			merged := m.apply(sources[chosen].Exchange, item)
			out <- merged
		}
	}()

	return out
}

// apply folds one arriving item into the cache and returns the item to
// publish. A successful arrival overwrites its exchange's cache entry and
// produces a freshly recomputed merged Summary. An error forwards
// unchanged, but also evicts that exchange's cache entry: the adapter
// contract terminates a stream on its first error, so the stale entry
// would otherwise linger in every future merge forever; dropping it lets
// later merges reflect only the exchanges still actually reporting.
func (m *Merger) apply(exchange string, result model.Result[model.Summary]) model.Result[model.Summary] {
	if result.Err != nil {
		m.evict(exchange)
		return result
	}

	summary := result.Value
	tag := summary.Asks[0].Exchange
	if _, seen := m.cache[tag]; !seen {
		m.tags = append(m.tags, tag)
	}
	m.cache[tag] = summary

	return model.Ok(m.merge())
}

func (m *Merger) evict(exchange string) {
	if _, ok := m.cache[exchange]; !ok {
		return
	}
	delete(m.cache, exchange)
	for i, tag := range m.tags {
		if tag == exchange {
			m.tags = append(m.tags[:i], m.tags[i+1:]...)
			break
		}
	}
}

// merge flattens every cached per-exchange Summary, sorts stably (bids
// descending, asks ascending) to keep price ties in first-seen-exchange
// order, and takes the best 10 on each side.
func (m *Merger) merge() model.Summary {
	var bids, asks []model.Level
	for _, tag := range m.tags {
		summary := m.cache[tag]
		bids = append(bids, summary.Bids...)
		asks = append(asks, summary.Asks...)
	}

	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Price.GreaterThan(bids[j].Price)
	})
	sort.SliceStable(asks, func(i, j int) bool {
		return asks[i].Price.LessThan(asks[j].Price)
	})

	if len(bids) > 10 {
		bids = bids[:10]
	}
	if len(asks) > 10 {
		asks = asks[:10]
	}

	return model.NewSummary(bids, asks)
}
