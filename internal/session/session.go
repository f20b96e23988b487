// Package session wires the stream, the subscription protocol, the candle
// cache, the order-book ladder and the position ledger into one market-data
// view scoped to a single (instrument, interval) selection.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"deriv_terminal/internal/book"
	"deriv_terminal/internal/candles"
	"deriv_terminal/internal/eventlog"
	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/metrics"
	"deriv_terminal/internal/models"
	"deriv_terminal/internal/positions"
	"deriv_terminal/internal/relay"
	"deriv_terminal/internal/stream"
	"deriv_terminal/internal/subs"
)

// Transport is the duplex stream the session listens on. *stream.Conn
// satisfies it; tests substitute a loopback.
type Transport interface {
	Connect()
	Close() error
	Send(v any)
	SetHandler(stream.Handler)
	SetOnConnect(func())
	State() stream.State
}

// HistoryClient is the request/response side: candle pages and the
// instrument catalog. *rest.Client satisfies it.
type HistoryClient interface {
	candles.Fetcher
	Tickers(ctx context.Context) ([]models.Ticker, error)
}

type Config struct {
	Instrument   string
	Interval     interval.Interval
	SettleDelay  time.Duration // wait after connect before subscribing
	PageThrottle time.Duration // min spacing between backfill page requests
}

var (
	pushesTotal   = metrics.NewCounter("session_pushes_total", "Live pushes routed")
	staleDropped  = metrics.NewCounter("session_stale_dropped_total", "Live pushes dropped for an abandoned selection")
	pagesTotal    = metrics.NewCounter("session_backfill_pages_total", "Backfill pages merged")
	resetsTotal   = metrics.NewCounter("session_resets_total", "Selection resets")
	exhaustedFlag = metrics.NewGauge("session_backfill_exhausted", "1 when no older history exists for the selection")
)

// Session is the orchestrator and the only market state consumers read.
// It is constructed once at startup and torn down on shutdown; every
// collaborator receives it explicitly.
type Session struct {
	cfg      Config
	clock    clock.Clock
	conn     Transport
	history  HistoryClient
	store    *candles.Store
	subs     *subs.Manager
	ledger   *positions.Ledger
	producer relay.Producer
	events   *eventlog.Logger

	mu        sync.RWMutex
	name      string
	iv        interval.Interval
	catalog   []models.Ticker
	tick      *models.Ticker
	ladder    *book.Ladder
	mark      string
	index     string
	funding   string
	lastBar   *models.Bar
	lastPage  time.Time
	selCtx    context.Context
	selCancel context.CancelFunc
}

type Option func(*Session)

func WithClock(clk clock.Clock) Option {
	return func(s *Session) { s.clock = clk }
}

func WithRelay(p relay.Producer) Option {
	return func(s *Session) { s.producer = p }
}

func WithEventLog(l *eventlog.Logger) Option {
	return func(s *Session) { s.events = l }
}

func New(cfg Config, conn Transport, history HistoryClient, opts ...Option) *Session {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = time.Second
	}
	if cfg.PageThrottle <= 0 {
		cfg.PageThrottle = 100 * time.Millisecond
	}
	s := &Session{
		cfg:     cfg,
		clock:   clock.New(),
		conn:    conn,
		history: history,
		name:    cfg.Instrument,
		iv:      cfg.Interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = candles.New(history, s.clock)
	s.store.Reset(cfg.Instrument, cfg.Interval)
	s.ledger = positions.NewLedger(s.clock)
	s.subs = subs.NewManager(s.sendSubscription, s.clock, cfg.SettleDelay, cfg.Instrument, cfg.Interval)
	s.selCtx, s.selCancel = context.WithCancel(context.Background())

	conn.SetHandler(s.handle)
	conn.SetOnConnect(func() {
		s.events.Log("connected", nil)
		s.subs.OnConnect()
	})
	return s
}

// Start opens the stream and kicks off the initial backfill page and the
// instrument catalog fetch. Both run async; live routing never blocks on
// them.
func (s *Session) Start() {
	s.conn.Connect()
	s.mu.RLock()
	ctx := s.selCtx
	s.mu.RUnlock()
	go s.backfill(ctx)
	go s.loadCatalog()
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.selCancel()
	s.mu.Unlock()
	err := s.conn.Close()
	if s.producer != nil {
		_ = s.producer.Close()
	}
	s.events.Close()
	return err
}

// Reset atomically swaps the active selection: the old selection's fetches
// are cancelled, every per-selection cache is cleared, the subscription set
// is swapped and a fresh backfill page is requested. Anything still in
// flight for the old selection is discarded on arrival.
func (s *Session) Reset(iv interval.Interval, name string) {
	resetsTotal.Inc()
	exhaustedFlag.Set(0)

	s.mu.Lock()
	s.selCancel()
	ctx, cancel := context.WithCancel(context.Background())
	s.selCtx, s.selCancel = ctx, cancel
	s.name = name
	s.iv = iv
	s.tick = nil
	s.ladder = nil
	s.lastBar = nil
	s.mark, s.index, s.funding = "", "", ""
	s.lastPage = time.Time{}
	s.mu.Unlock()

	s.store.Reset(name, iv)
	s.subs.Reset(name, iv)
	s.events.Log("reset", map[string]any{"instrument": name, "interval": string(iv)})
	go s.backfill(ctx)
}

// RequestMoreHistory asks for one older page. Calls are throttled so rapid
// chart scrolling cannot cause a request storm, and the store itself allows
// only one page in flight.
func (s *Session) RequestMoreHistory() {
	s.mu.Lock()
	now := s.clock.Now()
	if !s.lastPage.IsZero() && now.Sub(s.lastPage) < s.cfg.PageThrottle {
		s.mu.Unlock()
		return
	}
	s.lastPage = now
	ctx := s.selCtx
	s.mu.Unlock()
	go s.backfill(ctx)
}

// AddPosition appends a simulated trade against the active instrument.
func (s *Session) AddPosition(side models.Side, price, size string) error {
	if side != models.SideBuy && side != models.SideSell {
		return fmt.Errorf("session: invalid side %q", side)
	}
	p, err := strconv.ParseFloat(price, 64)
	if err != nil || p <= 0 {
		return fmt.Errorf("session: invalid price %q", price)
	}
	sz, err := strconv.ParseFloat(size, 64)
	if err != nil || sz <= 0 {
		return fmt.Errorf("session: invalid size %q", size)
	}
	s.mu.RLock()
	name := s.name
	s.mu.RUnlock()
	s.ledger.Add(name, side, p, sz)
	return nil
}

func (s *Session) backfill(ctx context.Context) {
	merged, err := s.store.RequestBackfillPage(ctx)
	if err != nil {
		log.Printf("session: %v", err)
		return
	}
	if s.store.Exhausted() {
		exhaustedFlag.Set(1)
	}
	if !merged {
		// Exhausted, already in flight, or a stale completion; nothing
		// landed, so nothing to account.
		return
	}
	pagesTotal.Inc()
	s.events.Log("backfill_page", map[string]any{
		"earliest_ms": s.store.EarliestLoaded(),
		"bars":        s.store.Len(),
		"exhausted":   s.store.Exhausted(),
	})
}

func (s *Session) loadCatalog() {
	tickers, err := s.history.Tickers(context.Background())
	if err != nil {
		log.Printf("session: instrument catalog: %v", err)
		return
	}
	perps := tickers[:0:0]
	for _, t := range tickers {
		if instrumentIsPerp(t.Instrument) {
			perps = append(perps, t)
		}
	}
	s.mu.Lock()
	s.catalog = perps
	s.mu.Unlock()
	log.Printf("session: catalog loaded, %d perpetuals", len(perps))
}

func (s *Session) sendSubscription(method string, channels []string) {
	s.conn.Send(models.NewSubscription(method, s.clock.Now().UnixMilli(), channels))
}
