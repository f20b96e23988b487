package interval

import (
	"fmt"
	"time"
)

// Interval identifies a candlestick timeframe supported by the feed.
// The string value is the wire name used in channel subscriptions and
// in the historical candlestick endpoint.
type Interval string

const (
	M1  Interval = "1m"
	M5  Interval = "5m"
	M15 Interval = "15m"
	M30 Interval = "30m"
	H1  Interval = "1h"
	H2  Interval = "2h"
	H4  Interval = "4h"
	H12 Interval = "12h"
	D1  Interval = "1D"
)

var durations = map[Interval]time.Duration{
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H2:  2 * time.Hour,
	H4:  4 * time.Hour,
	H12: 12 * time.Hour,
	D1:  24 * time.Hour,
}

// pageSizes is the bar count requested per backfill page. Duration × page
// size bounds the span of a single historical request.
var pageSizes = map[Interval]int{
	M1:  300,
	M5:  300,
	M15: 300,
	M30: 300,
	H1:  300,
	H2:  168,
	H4:  84,
	H12: 28,
	D1:  14,
}

// All returns the supported intervals, shortest first.
func All() []Interval {
	return []Interval{M1, M5, M15, M30, H1, H2, H4, H12, D1}
}

func Parse(s string) (Interval, error) {
	iv := Interval(s)
	if !iv.Valid() {
		return "", fmt.Errorf("interval: unsupported timeframe %q", s)
	}
	return iv, nil
}

func (iv Interval) Valid() bool {
	_, ok := durations[iv]
	return ok
}

func (iv Interval) Duration() time.Duration {
	return durations[iv]
}

// Millis returns the bar duration in milliseconds, the unit the feed uses
// for candle timestamps.
func (iv Interval) Millis() int64 {
	return durations[iv].Milliseconds()
}

func (iv Interval) PageSize() int {
	return pageSizes[iv]
}

// Align truncates now to the backfill page boundary: whole UTC days for the
// daily interval, whole minutes for everything finer. Repeated calls within
// the same minute (or day) therefore produce identical request windows.
// The result is a millisecond epoch timestamp.
func (iv Interval) Align(now time.Time) int64 {
	now = now.UTC()
	if iv == D1 {
		return now.Truncate(24 * time.Hour).UnixMilli()
	}
	return now.Truncate(time.Minute).UnixMilli()
}
