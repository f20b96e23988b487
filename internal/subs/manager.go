package subs

import (
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"deriv_terminal/internal/interval"
	"deriv_terminal/internal/models"
)

// Sender transmits one subscribe/unsubscribe request. Delivery is best
// effort: a send on a disconnected stream is dropped and the next reconnect
// re-subscribes from scratch, so no acknowledgment is awaited.
type Sender func(method string, channels []string)

// Manager tracks the active selection and issues the matching subscription
// commands on reconnect and on selection change.
type Manager struct {
	send   Sender
	clock  clock.Clock
	settle time.Duration

	mu   sync.Mutex
	name string
	iv   interval.Interval
}

func NewManager(send Sender, clk clock.Clock, settle time.Duration, name string, iv interval.Interval) *Manager {
	return &Manager{
		send:   send,
		clock:  clk,
		settle: settle,
		name:   name,
		iv:     iv,
	}
}

// OnConnect schedules a subscribe for the current selection after the settle
// delay. The selection is read when the timer fires, not when the transport
// opened, so a reset during the delay window wins.
func (m *Manager) OnConnect() {
	m.clock.AfterFunc(m.settle, func() {
		m.mu.Lock()
		channels := ForSelection(m.name, m.iv)
		m.mu.Unlock()
		log.Printf("subs: subscribing %d channels", len(channels))
		m.send(models.MethodSubscribe, Names(channels))
	})
}

// Reset swaps the selection: unsubscribe the old set, then subscribe the new
// one. Either send may be dropped offline; the reconnect path repairs that.
func (m *Manager) Reset(name string, iv interval.Interval) {
	m.mu.Lock()
	old := ForSelection(m.name, m.iv)
	m.name = name
	m.iv = iv
	next := ForSelection(name, iv)
	m.mu.Unlock()

	m.send(models.MethodUnsubscribe, Names(old))
	m.send(models.MethodSubscribe, Names(next))
}

// Selection returns the instrument and interval the manager is bound to.
func (m *Manager) Selection() (string, interval.Interval) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name, m.iv
}
