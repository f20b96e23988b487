// Package positions keeps the local, non-persisted trade ledger. Trades are
// a pure simulation: entries are appended on user action and never sent to
// any venue, mutated, or deleted.
package positions

import (
	"sync"

	"github.com/benbjohnson/clock"

	"deriv_terminal/internal/models"
)

type Ledger struct {
	clock clock.Clock

	mu      sync.Mutex
	entries []models.Position
}

func NewLedger(clk clock.Clock) *Ledger {
	return &Ledger{clock: clk}
}

// Add appends one simulated trade and returns the recorded entry.
func (l *Ledger) Add(name string, side models.Side, price, size float64) models.Position {
	p := models.Position{
		Time:       l.clock.Now().UnixMilli(),
		Instrument: name,
		Side:       side,
		Size:       size,
		Price:      price,
	}
	l.mu.Lock()
	l.entries = append(l.entries, p)
	l.mu.Unlock()
	return p
}

// Entries returns a copy of the ledger in insertion order.
func (l *Ledger) Entries() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Position, len(l.entries))
	copy(out, l.entries)
	return out
}

// Summaries aggregates the ledger per (instrument, side): total size and the
// volume-weighted average open price. Order follows first appearance.
func (l *Ledger) Summaries() []models.PositionSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	type acc struct {
		size  float64
		value float64 // Σ size × price
	}
	totals := make(map[string]*acc)
	var order []models.PositionSummary

	for _, p := range l.entries {
		key := p.Instrument + "-" + string(p.Side)
		a, ok := totals[key]
		if !ok {
			a = &acc{}
			totals[key] = a
			order = append(order, models.PositionSummary{
				Instrument: p.Instrument,
				Side:       p.Side,
			})
		}
		a.size += p.Size
		a.value += p.Size * p.Price
	}

	for i := range order {
		a := totals[order[i].Instrument+"-"+string(order[i].Side)]
		order[i].TotalSize = a.size
		if a.size > 0 {
			order[i].AvgPrice = a.value / a.size
		}
	}
	return order
}
