// Package book turns raw order-book level arrays into a renderable depth
// ladder: the nearest levels per side annotated with running cumulative
// quantity and a per-side maximum used to scale depth bars.
package book

import (
	"strconv"
)

// depthLevels is how many rungs per side the ladder shows.
const depthLevels = 9

// Level is one rung of the ladder.
type Level struct {
	Price    string
	Quantity string
	Orders   string
	Sum      string // running cumulative quantity, 4 decimals
}

// Ladder is the renderable book view. Asks are ordered farthest-from-mid
// first, so the best ask sits last, directly above the mid price in a
// display; bids are ordered best first. The best level of each side carries
// the full side sum on asks, and the sums grow outward on bids.
type Ladder struct {
	Asks   []Level
	Bids   []Level
	MaxAsk float64 // largest single ask-level quantity shown
	MaxBid float64 // largest single bid-level quantity shown
}

// Aggregate builds a ladder from raw feed levels: asks ascending by price,
// bids descending, each level [price, quantity, numOrders]. The book is
// treated as a snapshot; every message replaces the previous ladder.
func Aggregate(asks, bids [][]string) Ladder {
	var l Ladder

	near := clip(asks)
	l.Asks = make([]Level, 0, len(near))
	sum := 0.0
	// Walk the asks from the farthest shown level toward the best ask so
	// the best ask accumulates the whole visible depth. The walk order is
	// also the display order: farthest first, best ask last above the mid.
	for i := len(near) - 1; i >= 0; i-- {
		lvl, qty := makeLevel(near[i])
		if qty > l.MaxAsk {
			l.MaxAsk = qty
		}
		sum += qty
		lvl.Sum = strconv.FormatFloat(sum, 'f', 4, 64)
		l.Asks = append(l.Asks, lvl)
	}

	near = clip(bids)
	l.Bids = make([]Level, 0, len(near))
	sum = 0.0
	for i := 0; i < len(near); i++ {
		lvl, qty := makeLevel(near[i])
		if qty > l.MaxBid {
			l.MaxBid = qty
		}
		sum += qty
		lvl.Sum = strconv.FormatFloat(sum, 'f', 4, 64)
		l.Bids = append(l.Bids, lvl)
	}

	return l
}

// DepthRatio is the relative width of a level's depth bar.
func DepthRatio(quantity string, sideMax float64) float64 {
	if sideMax <= 0 {
		return 0
	}
	qty, err := strconv.ParseFloat(quantity, 64)
	if err != nil || qty <= 0 {
		return 0
	}
	if qty >= sideMax {
		return 1
	}
	return qty / sideMax
}

func clip(levels [][]string) [][]string {
	if len(levels) > depthLevels {
		return levels[:depthLevels]
	}
	return levels
}

func makeLevel(raw []string) (Level, float64) {
	var lvl Level
	if len(raw) > 0 {
		lvl.Price = raw[0]
	}
	if len(raw) > 1 {
		lvl.Quantity = raw[1]
	}
	if len(raw) > 2 {
		lvl.Orders = raw[2]
	}
	qty, err := strconv.ParseFloat(lvl.Quantity, 64)
	if err != nil || qty < 0 {
		qty = 0
	}
	return lvl, qty
}
