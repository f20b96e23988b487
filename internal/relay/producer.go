// Package relay publishes normalized feed events to an external broker so
// other processes can consume the terminal's market view. It is optional;
// the session runs fine with a nil producer.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Producer is the minimal broker surface the session needs.
type Producer interface {
	WriteMessage(key, value []byte) error
	Close() error
}

// Event wraps one published update.
type Event struct {
	Type       string `json:"type"` // ticker, bar, book
	Instrument string `json:"instrument"`
	Timestamp  int64  `json:"ts"` // ms epoch
	Data       any    `json:"data"`
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// New builds a producer for kind "kafka" or "nats"; an empty kind returns
// (nil, nil), meaning the relay is disabled.
func New(kind string, brokers []string, topic string) (Producer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return nil, nil
	case "kafka":
		return NewKafkaProducer(brokers, topic), nil
	case "nats":
		return NewNATSProducer(brokers, topic)
	default:
		return nil, fmt.Errorf("relay: unknown producer kind %q", kind)
	}
}
