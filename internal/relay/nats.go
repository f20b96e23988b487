package relay

import (
	"strings"
	"time"

	nats "github.com/nats-io/nats.go"
)

type NATSProducer struct {
	conn    *nats.Conn
	subject string
}

// NewNATSProducer connects once and then leans on the client's own infinite
// reconnect; a broker outage degrades to dropped events, not a dead feed.
func NewNATSProducer(servers []string, subject string) (*NATSProducer, error) {
	conn, err := nats.Connect(
		strings.Join(servers, ","),
		nats.Name("deriv-terminal-relay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return &NATSProducer{conn: conn, subject: subject}, nil
}

func (p *NATSProducer) WriteMessage(key, value []byte) error {
	_ = key
	if p.conn == nil {
		return nats.ErrConnectionClosed
	}
	return p.conn.Publish(p.subject, value)
}

func (p *NATSProducer) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
