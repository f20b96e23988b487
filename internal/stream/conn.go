// Package stream owns the persistent duplex channel to the market-data feed:
// the websocket lifecycle, unconditional fixed-delay reconnection, inbound
// decode and heartbeat replies.
package stream

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"deriv_terminal/internal/metrics"
	"deriv_terminal/internal/models"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler receives every decoded inbound message except heartbeats, which
// the connection answers itself.
type Handler func(models.Inbound)

type Config struct {
	URL string

	// ReconnectDelay is the fixed pause before every dial retry and after
	// every lost connection. There is no backoff ceiling: the feed is
	// best-effort always-on. Defaults to one second.
	ReconnectDelay time.Duration

	// MaxAttempts caps consecutive failed dials; 0 retries forever.
	// Nonzero values exist for test harnesses.
	MaxAttempts uint64

	Clock clock.Clock
}

var (
	connectsTotal = metrics.NewCounter("stream_connects_total", "Successful websocket connects")
	dropsTotal    = metrics.NewCounter("stream_dropped_sends_total", "Messages dropped because the stream was not connected")
	framesTotal   = metrics.NewCounter("stream_frames_total", "Inbound frames read")
	decodeErrors  = metrics.NewCounter("stream_decode_errors_total", "Inbound frames that failed to decode")
)

var errClosed = errors.New("stream: connection closed")

// Conn is the single live transport. Opening it while already Connecting or
// Connected is a no-op, so at most one websocket exists at a time.
type Conn struct {
	cfg       Config
	clock     clock.Clock
	handler   Handler
	onConnect func()

	mu     sync.Mutex
	ws     *websocket.Conn
	state  State
	closed bool
}

func New(cfg Config) *Conn {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Conn{cfg: cfg, clock: cfg.Clock}
}

// SetHandler registers the single inbound handler. Must be called before
// Connect.
func (c *Conn) SetHandler(h Handler) { c.handler = h }

// SetOnConnect registers a callback fired after every successful connect,
// including reconnects.
func (c *Conn) SetOnConnect(f func()) { c.onConnect = f }

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the transport unless one is already opening or open.
func (c *Conn) Connect() {
	c.mu.Lock()
	if c.closed || c.state != Disconnected {
		c.mu.Unlock()
		return
	}
	c.state = Connecting
	c.mu.Unlock()
	go c.dial()
}

func (c *Conn) dial() {
	var policy backoff.BackOff = backoff.NewConstantBackOff(c.cfg.ReconnectDelay)
	if c.cfg.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, c.cfg.MaxAttempts-1)
	}

	var ws *websocket.Conn
	op := func() error {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return backoff.Permanent(errClosed)
		}
		conn, _, err := websocket.DefaultDialer.Dial(c.cfg.URL, nil)
		if err != nil {
			log.Printf("stream: dial %s: %v (retrying in %v)", c.cfg.URL, err, c.cfg.ReconnectDelay)
			return err
		}
		ws = conn
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		if !errors.Is(err, errClosed) {
			log.Printf("stream: giving up after failed dials: %v", err)
		}
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	c.state = Connected
	c.mu.Unlock()

	connectsTotal.Inc()
	log.Printf("stream: connected to %s", c.cfg.URL)
	if c.onConnect != nil {
		c.onConnect()
	}
	go c.readLoop(ws)
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}
		framesTotal.Inc()

		msg, err := models.DecodeInbound(raw)
		if err != nil {
			decodeErrors.Inc()
			log.Printf("stream: %v", err)
			continue
		}
		if hb, ok := msg.(models.Heartbeat); ok {
			c.Send(models.NewHeartbeatAck(hb.ID))
			continue
		}
		if c.handler != nil {
			c.handler(msg)
		}
	}
	_ = ws.Close()

	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
		c.state = Disconnected
	}
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	log.Printf("stream: connection lost, reconnecting in %v", c.cfg.ReconnectDelay)
	// Fire-and-forget: Connect is idempotent, so a stray timer firing after
	// a manual reconnect does no harm.
	c.clock.AfterFunc(c.cfg.ReconnectDelay, c.Connect)
}

// Send transmits v as JSON when connected. A send on a disconnected stream
// is dropped and logged; callers must not depend on delivery, the reconnect
// path re-subscribes whatever state matters.
func (c *Conn) Send(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected || c.ws == nil {
		dropsTotal.Inc()
		log.Printf("stream: send dropped, stream %s", c.state)
		return
	}
	if err := c.ws.WriteJSON(v); err != nil {
		log.Printf("stream: write error: %v", err)
	}
}

// Close tears the transport down for good; no reconnect follows.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	ws := c.ws
	c.ws = nil
	c.state = Disconnected
	c.mu.Unlock()
	if ws != nil {
		return ws.Close()
	}
	return nil
}
