package models

import "strconv"

// Ticker mirrors the feed's ticker payload. The short field tags are the
// wire names; a ticker is always replaced wholesale, never merged.
type Ticker struct {
	Last         string `json:"a"`  // latest trade price
	Bid          string `json:"b"`  // best bid price
	Change       string `json:"c"`  // 24h change as a fraction
	High         string `json:"h"`  // 24h high
	Instrument   string `json:"i"`  // instrument name
	Ask          string `json:"k"`  // best ask price
	Low          string `json:"l"`  // 24h low
	OpenInterest string `json:"oi"` // open interest
	Timestamp    int64  `json:"t"`  // ms epoch
	Volume       string `json:"v"`  // 24h volume, base units
	QuoteVolume  string `json:"vv"` // 24h volume, quote units
}

// Candlestick is a raw candle record as delivered by both the historical
// endpoint and the live candlestick channel.
type Candlestick struct {
	Close     string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Open      string `json:"o"`
	Timestamp int64  `json:"t"` // bar start, ms epoch
	Volume    string `json:"v"`
}

// Bar is the chart-ready form of a candle. Time is a unix timestamp in
// seconds, UTC.
type Bar struct {
	Time  int64
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Bar converts the raw record. Unparsable prices come out as zero; the feed
// never sends them, and a zero bar is preferable to dropping the timestamp.
func (c Candlestick) Bar() Bar {
	return Bar{
		Time:  c.Timestamp / 1000,
		Open:  parseFloat(c.Open),
		High:  parseFloat(c.High),
		Low:   parseFloat(c.Low),
		Close: parseFloat(c.Close),
	}
}

// IndexValue carries mark, index and funding updates.
type IndexValue struct {
	Value     string `json:"v"`
	Timestamp int64  `json:"t"`
}

// BookDepth is a raw order-book message: per-side level arrays of
// [price, quantity, numOrders], asks ascending and bids descending by price.
type BookDepth struct {
	Asks      [][]string `json:"asks"`
	Bids      [][]string `json:"bids"`
	Timestamp int64      `json:"t"`
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
