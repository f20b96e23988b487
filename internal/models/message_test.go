package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInboundHeartbeat(t *testing.T) {
	raw := []byte(`{"id":1755741049113,"method":"public/heartbeat","code":0}`)

	msg, err := DecodeInbound(raw)
	require.NoError(t, err)

	hb, ok := msg.(Heartbeat)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, int64(1755741049113), hb.ID)
}

func TestDecodeInboundLivePush(t *testing.T) {
	raw := []byte(`{
		"id": -1,
		"method": "subscribe",
		"code": 0,
		"result": {
			"channel": "candlestick",
			"instrument_name": "BTCUSD-PERP",
			"subscription": "candlestick.1h.BTCUSD-PERP",
			"interval": "1h",
			"data": [{"o":"100","h":"110","l":"95","c":"105","v":"3.2","t":1755738000000}]
		}
	}`)

	msg, err := DecodeInbound(raw)
	require.NoError(t, err)

	push, ok := msg.(LivePush)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "candlestick", push.Channel)
	assert.Equal(t, "BTCUSD-PERP", push.Instrument)
	assert.Equal(t, "candlestick.1h.BTCUSD-PERP", push.Subscription)
	assert.Equal(t, "1h", push.Interval)

	var data []Candlestick
	require.NoError(t, json.Unmarshal(push.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, int64(1755738000000), data[0].Timestamp)
}

func TestDecodeInboundResponse(t *testing.T) {
	raw := []byte(`{"id":42,"method":"subscribe","code":0}`)

	msg, err := DecodeInbound(raw)
	require.NoError(t, err)

	resp, ok := msg.(Response)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, int64(42), resp.ForRequestID)
	assert.Zero(t, resp.Code)
}

func TestDecodeInboundMalformed(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestNewSubscription(t *testing.T) {
	req := NewSubscription(MethodSubscribe, 1700000000000, []string{"ticker.BTCUSD-PERP"})

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1700000000000,
		"nonce": 1700000000000,
		"method": "subscribe",
		"params": {"channels": ["ticker.BTCUSD-PERP"]}
	}`, string(raw))
}

func TestNewHeartbeatAck(t *testing.T) {
	raw, err := json.Marshal(NewHeartbeatAck(77))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":77,"method":"public/respond-heartbeat"}`, string(raw))
}
