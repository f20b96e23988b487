package session

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"deriv_terminal/internal/book"
	"deriv_terminal/internal/instrument"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
)

// handle is the stream's single inbound handler. It must stay non-blocking:
// routing only updates in-memory state, never performs a fetch.
func (s *Session) handle(msg models.Inbound) {
	switch m := msg.(type) {
	case models.LivePush:
		s.route(m)
	case models.Response:
		if m.Code != 0 {
			log.Printf("session: request %d (%s) rejected with code %d", m.ForRequestID, m.Method, m.Code)
		}
	}
}

func (s *Session) route(m models.LivePush) {
	pushesTotal.Inc()

	switch m.Channel {
	case models.ChannelTicker:
		var data []models.Ticker
		if !decodeData(m.Data, &data) || len(data) == 0 {
			return
		}
		t := data[0]
		s.mu.Lock()
		if !matchesSelection(m, s.name) {
			s.mu.Unlock()
			staleDropped.Inc()
			return
		}
		s.tick = &t
		s.mu.Unlock()
		s.publish("ticker", t.Instrument, t.Timestamp, t)

	case models.ChannelCandlestick:
		var data []models.Candlestick
		if !decodeData(m.Data, &data) || len(data) == 0 {
			return
		}
		// The store compares the tick's selection against its own binding
		// under its lock, so a Reset racing this push cannot interleave
		// between the check and the merge.
		merged := false
		for _, c := range data {
			if s.store.ApplyLiveTick(m.Instrument, interval.Interval(m.Interval), c) {
				merged = true
			}
		}
		if !merged {
			staleDropped.Inc()
			return
		}
		bar := data[len(data)-1].Bar()
		s.mu.Lock()
		if !matchesSelection(m, s.name) || m.Interval != string(s.iv) {
			s.mu.Unlock()
			staleDropped.Inc()
			return
		}
		s.lastBar = &bar
		name := s.name
		s.mu.Unlock()
		s.publish("bar", name, data[len(data)-1].Timestamp, bar)

	case models.ChannelBook:
		var data []models.BookDepth
		if !decodeData(m.Data, &data) || len(data) == 0 {
			return
		}
		ladder := book.Aggregate(data[0].Asks, data[0].Bids)
		s.mu.Lock()
		if !matchesSelection(m, s.name) {
			s.mu.Unlock()
			staleDropped.Inc()
			return
		}
		s.ladder = &ladder
		name := s.name
		s.mu.Unlock()
		s.publish("book", name, data[0].Timestamp, ladder)

	case models.ChannelMark:
		if v, ok := firstValue(m.Data); ok {
			s.setIfCurrent(m, &s.mark, formatPrice(v))
		}

	case models.ChannelIndex:
		if v, ok := firstValue(m.Data); ok {
			s.setIfCurrent(m, &s.index, formatPrice(v))
		}

	case models.ChannelFunding:
		if v, ok := firstValue(m.Data); ok {
			s.setIfCurrent(m, &s.funding, formatFunding(v))
		}
	}
}

// setIfCurrent writes one display field, verifying the push still matches
// the active selection inside the same critical section as the write.
func (s *Session) setIfCurrent(m models.LivePush, field *string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !matchesSelection(m, s.name) {
		staleDropped.Inc()
		return
	}
	*field = value
}

// matchesSelection checks a push's instrument against the active selection.
// The index channel reports the index name, so it is matched through the
// PERP→INDEX mapping. Pushes without an instrument pass: the subscription
// scope already constrains them.
func matchesSelection(m models.LivePush, name string) bool {
	if m.Instrument == "" {
		return true
	}
	if m.Channel == models.ChannelIndex {
		return m.Instrument == instrument.IndexName(name)
	}
	return m.Instrument == name
}

func instrumentIsPerp(name string) bool {
	return instrument.IsPerpetual(name)
}

func decodeData(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("session: decode push data: %v", err)
		return false
	}
	return true
}

func firstValue(raw json.RawMessage) (float64, bool) {
	var data []models.IndexValue
	if !decodeData(raw, &data) || len(data) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(data[0].Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatFunding(v float64) string {
	return fmt.Sprintf("%.4f%%", v*100)
}

func (s *Session) publish(typ, name string, ts int64, data any) {
	if s.producer == nil {
		return
	}
	b, err := relayEvent(typ, name, ts, data)
	if err != nil {
		return
	}
	if err := s.producer.WriteMessage(nil, b); err != nil {
		log.Printf("session: relay publish: %v", err)
	}
}
