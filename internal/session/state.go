package session

import (
	"deriv_terminal/internal/book"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
	"deriv_terminal/internal/relay"
	"deriv_terminal/internal/stream"
)

// State is the consumer-facing snapshot: everything a rendering layer needs
// to draw the terminal in one read. Slices and pointers are copies; mutating
// a snapshot never touches the session.
type State struct {
	Instrument  string
	Interval    interval.Interval
	Instruments []models.Ticker // perpetual catalog

	Ticker  *models.Ticker
	Mark    string
	Index   string
	Funding string

	Candles []models.Bar
	LastBar *models.Bar // most recent live bar, for incremental chart update
	Book    *book.Ladder

	Positions []models.Position
	Summaries []models.PositionSummary

	Connection stream.State
	Exhausted  bool
}

// Snapshot assembles the current state.
func (s *Session) Snapshot() State {
	st := State{
		Candles:    s.store.Snapshot(),
		Exhausted:  s.store.Exhausted(),
		Positions:  s.ledger.Entries(),
		Summaries:  s.ledger.Summaries(),
		Connection: s.conn.State(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.Instrument = s.name
	st.Interval = s.iv
	st.Instruments = append([]models.Ticker(nil), s.catalog...)
	st.Mark, st.Index, st.Funding = s.mark, s.index, s.funding
	if s.tick != nil {
		t := *s.tick
		st.Ticker = &t
	}
	if s.ladder != nil {
		l := *s.ladder
		st.Book = &l
	}
	if s.lastBar != nil {
		b := *s.lastBar
		st.LastBar = &b
	}
	return st
}

func relayEvent(typ, name string, ts int64, data any) ([]byte, error) {
	return relay.Event{
		Type:       typ,
		Instrument: name,
		Timestamp:  ts,
		Data:       data,
	}.Marshal()
}
