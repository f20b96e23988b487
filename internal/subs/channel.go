// Package subs owns the subscribe/unsubscribe protocol: the typed channel
// variants of the feed and the manager that keeps the server-side
// subscription set in step with the active instrument and interval.
package subs

import (
	"deriv_terminal/internal/instrument"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
)

type kind int

const (
	kindMark kind = iota
	kindIndex
	kindFunding
	kindBook
	kindTicker
	kindCandlestick
)

// Channel is one feed subscription. Channels are built through the
// constructors below and only turned into wire strings by Name, so the
// naming conventions (including the index's PERP→INDEX substitution) live
// in exactly one place.
type Channel struct {
	kind kind
	name string
	iv   interval.Interval
}

func Mark(name string) Channel    { return Channel{kind: kindMark, name: name} }
func Index(name string) Channel   { return Channel{kind: kindIndex, name: name} }
func Funding(name string) Channel { return Channel{kind: kindFunding, name: name} }
func Book(name string) Channel    { return Channel{kind: kindBook, name: name} }
func Ticker(name string) Channel  { return Channel{kind: kindTicker, name: name} }

func Candlestick(iv interval.Interval, name string) Channel {
	return Channel{kind: kindCandlestick, name: name, iv: iv}
}

// Name formats the wire channel string.
func (c Channel) Name() string {
	switch c.kind {
	case kindMark:
		return models.ChannelMark + "." + c.name
	case kindIndex:
		return models.ChannelIndex + "." + instrument.IndexName(c.name)
	case kindFunding:
		return models.ChannelFunding + "." + c.name
	case kindBook:
		return models.ChannelBook + "." + c.name
	case kindTicker:
		return models.ChannelTicker + "." + c.name
	case kindCandlestick:
		return models.ChannelCandlestick + "." + string(c.iv) + "." + c.name
	}
	return ""
}

// ForSelection is the full channel set scoped to one selection.
func ForSelection(name string, iv interval.Interval) []Channel {
	return []Channel{
		Mark(name),
		Index(name),
		Funding(name),
		Book(name),
		Ticker(name),
		Candlestick(iv, name),
	}
}

// Names formats a channel set for the wire.
func Names(channels []Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.Name()
	}
	return out
}
