// Package candles caches the candle bars of the active instrument and
// interval. Bars arrive from two sources, historical backfill pages and live
// stream ticks, and both merge through the same overwrite-by-timestamp rule,
// so the cache always holds exactly one bar per bar start time.
package candles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
)

// Fetcher pulls one page of historical candles. An empty result with a nil
// error means there is genuinely no data in the window; transport or server
// failures must surface as errors instead.
type Fetcher interface {
	Candlesticks(ctx context.Context, name string, iv interval.Interval, startMs, endMs int64) ([]models.Candlestick, error)
}

// Store is the paginated candle cache for one selection at a time. Backfill
// walks strictly backwards from the newest aligned bar; live ticks revise or
// extend the right edge. All methods are safe for concurrent use.
type Store struct {
	fetch Fetcher
	clock clock.Clock

	mu         sync.Mutex
	name       string
	iv         interval.Interval
	gen        uint64 // bumped on Reset; stale fetch completions are discarded
	bars       map[int64]models.Bar // keyed by bar start, ms epoch
	earliestMs int64                // 0 until the first page lands
	exhausted  bool
	inFlight   bool
}

func New(fetch Fetcher, clk clock.Clock) *Store {
	return &Store{
		fetch: fetch,
		clock: clk,
		bars:  make(map[int64]models.Bar),
	}
}

// Reset clears every bar and cursor and rebinds the store to a new
// selection. Any fetch still in flight for the old selection will find the
// generation changed and drop its result.
func (s *Store) Reset(name string, iv interval.Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.iv = iv
	s.gen++
	s.bars = make(map[int64]models.Bar)
	s.earliestMs = 0
	s.exhausted = false
	s.inFlight = false
}

// ApplyLiveTick merges one streamed candle and reports whether it was
// accepted. The tick must carry the selection the store is bound to; the
// comparison shares the lock with the merge, so a tick racing a Reset either
// lands before the clear or is rejected, never both. Successive accepted
// updates for the same bar start revise the in-progress bar in place.
func (s *Store) ApplyLiveTick(name string, iv interval.Interval, c models.Candlestick) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != s.name || iv != s.iv {
		return false
	}
	s.bars[c.Timestamp] = c.Bar()
	return true
}

// RequestBackfillPage fetches the next page of older bars and merges it,
// reporting whether any bars landed. It is a no-op when the history is
// exhausted or another page is already in flight; only one request may be
// outstanding per selection.
func (s *Store) RequestBackfillPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.exhausted || s.inFlight || !s.iv.Valid() {
		s.mu.Unlock()
		return false, nil
	}
	endMs := s.earliestMs
	if endMs == 0 {
		endMs = s.iv.Align(s.clock.Now())
	}
	startMs := endMs - s.iv.Millis()*int64(s.iv.PageSize()-1)
	name, iv, gen := s.name, s.iv, s.gen
	s.inFlight = true
	s.mu.Unlock()

	page, err := s.fetch.Candlesticks(ctx, name, iv, startMs, endMs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// The selection changed while the request was out; the result
		// belongs to an abandoned instrument/interval pair.
		return false, nil
	}
	s.inFlight = false
	if err != nil {
		// A failed fetch is retryable, not exhaustion.
		return false, fmt.Errorf("candles: backfill %s %s: %w", name, iv, err)
	}
	if len(page) == 0 {
		s.exhausted = true
		return false, nil
	}
	for _, c := range page {
		s.bars[c.Timestamp] = c.Bar()
	}
	s.earliestMs = startMs
	return true, nil
}

// Snapshot returns all bars in ascending time order.
func (s *Store) Snapshot() []models.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]int64, 0, len(s.bars))
	for ts := range s.bars {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]models.Bar, 0, len(keys))
	for _, ts := range keys {
		out = append(out, s.bars[ts])
	}
	return out
}

// Len reports the number of cached bars.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bars)
}

// EarliestLoaded returns the left edge of loaded history in ms, or 0 before
// the first page.
func (s *Store) EarliestLoaded() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.earliestMs
}

// Exhausted reports whether the oldest page came back empty.
func (s *Store) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}
