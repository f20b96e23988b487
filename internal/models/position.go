package models

// Side of a simulated trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Position is one entry of the local trade ledger. Entries are append-only
// and never leave the process.
type Position struct {
	Time       int64   `json:"time"` // ms epoch
	Instrument string  `json:"instrument"`
	Side       Side    `json:"side"`
	Size       float64 `json:"size"`
	Price      float64 `json:"price"`
}

// PositionSummary aggregates the ledger per (instrument, side).
type PositionSummary struct {
	Instrument string
	Side       Side
	TotalSize  float64
	AvgPrice   float64 // volume-weighted average open price
}
