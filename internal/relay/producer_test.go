package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshal(t *testing.T) {
	b, err := Event{
		Type:       "ticker",
		Instrument: "BTCUSD-PERP",
		Timestamp:  1755738000000,
		Data:       map[string]string{"a": "65000"},
	}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "ticker",
		"instrument": "BTCUSD-PERP",
		"ts": 1755738000000,
		"data": {"a": "65000"}
	}`, string(b))
}

func TestNewDisabled(t *testing.T) {
	p, err := New("", nil, "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("rabbitmq", []string{"x:1"}, "t")
	assert.Error(t, err)
}

func TestNewKafka(t *testing.T) {
	// The kafka writer dials lazily, so construction needs no broker.
	p, err := New("KAFKA", []string{"localhost:9092"}, "events")
	require.NoError(t, err)
	require.IsType(t, &KafkaProducer{}, p)
	assert.NoError(t, p.Close())
}
