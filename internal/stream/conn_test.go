package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deriv_terminal/internal/models"
)

// feedServer is a scripted websocket endpoint standing in for the feed.
type feedServer struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	accepted int
	inbound  chan []byte
}

func newFeedServer(t *testing.T) *feedServer {
	f := &feedServer{t: t, inbound: make(chan []byte, 16)}
	upgrader := websocket.Upgrader{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, ws)
		f.accepted++
		f.mu.Unlock()
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				return
			}
			f.inbound <- raw
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *feedServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *feedServer) acceptedConns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted
}

func (f *feedServer) push(raw string) {
	f.mu.Lock()
	ws := f.conns[len(f.conns)-1]
	f.mu.Unlock()
	require.NoError(f.t, ws.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func (f *feedServer) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ws := range f.conns {
		_ = ws.Close()
	}
	f.conns = nil
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, what)
}

func TestConnectDeliversPushes(t *testing.T) {
	f := newFeedServer(t)
	c := New(Config{URL: f.url(), ReconnectDelay: 10 * time.Millisecond})
	defer c.Close()

	var mu sync.Mutex
	var got []models.Inbound
	c.SetHandler(func(m models.Inbound) {
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	})

	c.Connect()
	waitFor(t, func() bool { return c.State() == Connected }, "connect")

	f.push(`{"id":-1,"method":"subscribe","result":{"channel":"ticker","instrument_name":"BTCUSD-PERP","data":[{"a":"65000"}]}}`)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "push delivered")

	mu.Lock()
	push, ok := got[0].(models.LivePush)
	mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "ticker", push.Channel)
}

func TestHeartbeatAnsweredWithoutHandler(t *testing.T) {
	f := newFeedServer(t)
	c := New(Config{URL: f.url(), ReconnectDelay: 10 * time.Millisecond})
	defer c.Close()
	c.SetHandler(func(m models.Inbound) {
		t.Errorf("heartbeat leaked to handler: %#v", m)
	})

	c.Connect()
	waitFor(t, func() bool { return c.State() == Connected }, "connect")

	f.push(`{"id":1755741049113,"method":"public/heartbeat"}`)

	select {
	case raw := <-f.inbound:
		assert.JSONEq(t, `{"id":1755741049113,"method":"public/respond-heartbeat"}`, string(raw))
	case <-time.After(2 * time.Second):
		t.Fatal("no heartbeat reply")
	}
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	c := New(Config{URL: "ws://127.0.0.1:0", ReconnectDelay: 10 * time.Millisecond})
	defer c.Close()

	// Must not panic or block.
	c.Send(models.NewHeartbeatAck(1))
	assert.Equal(t, Disconnected, c.State())
}

func TestReconnectAfterDrop(t *testing.T) {
	f := newFeedServer(t)
	c := New(Config{URL: f.url(), ReconnectDelay: 10 * time.Millisecond})
	defer c.Close()

	var connects int32
	var mu sync.Mutex
	c.SetOnConnect(func() {
		mu.Lock()
		connects++
		mu.Unlock()
	})

	c.Connect()
	waitFor(t, func() bool { return c.State() == Connected }, "first connect")

	f.dropAll()
	waitFor(t, func() bool { return f.acceptedConns() >= 2 }, "reconnect")
	waitFor(t, func() bool { return c.State() == Connected }, "second connect")

	mu.Lock()
	n := connects
	mu.Unlock()
	assert.GreaterOrEqual(t, n, int32(2), "onConnect must fire on every connect")
}

func TestConnectIsIdempotent(t *testing.T) {
	f := newFeedServer(t)
	c := New(Config{URL: f.url(), ReconnectDelay: 10 * time.Millisecond})
	defer c.Close()

	c.Connect()
	waitFor(t, func() bool { return c.State() == Connected }, "connect")
	c.Connect()
	c.Connect()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.acceptedConns())
}

func TestMaxAttemptsStopsRetrying(t *testing.T) {
	// Nothing listens here; the dial fails immediately.
	c := New(Config{URL: "ws://127.0.0.1:1", ReconnectDelay: time.Millisecond, MaxAttempts: 2})
	defer c.Close()

	c.Connect()
	waitFor(t, func() bool { return c.State() == Disconnected }, "give up")

	// The conn stays down; no background retry loop survives.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Disconnected, c.State())
}

func TestCloseStopsReconnect(t *testing.T) {
	f := newFeedServer(t)
	c := New(Config{URL: f.url(), ReconnectDelay: 5 * time.Millisecond})

	c.Connect()
	waitFor(t, func() bool { return c.State() == Connected }, "connect")

	require.NoError(t, c.Close())
	f.dropAll()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, Disconnected, c.State())
	assert.Equal(t, 1, f.acceptedConns())
}
