package models

import (
	"encoding/json"
	"fmt"
)

// Wire methods and channel names.
const (
	MethodSubscribe        = "subscribe"
	MethodUnsubscribe      = "unsubscribe"
	MethodHeartbeat        = "public/heartbeat"
	MethodRespondHeartbeat = "public/respond-heartbeat"

	ChannelTicker      = "ticker"
	ChannelBook        = "book"
	ChannelCandlestick = "candlestick"
	ChannelMark        = "mark"
	ChannelIndex       = "index"
	ChannelFunding     = "funding"
)

// liveID marks an unsolicited push: the feed reuses the subscribe envelope
// for live data and sets the id to -1 instead of echoing a request id.
const liveID = -1

// Request is an outbound frame.
type Request struct {
	ID     int64          `json:"id"`
	Nonce  int64          `json:"nonce,omitempty"`
	Method string         `json:"method"`
	Params *RequestParams `json:"params,omitempty"`
}

type RequestParams struct {
	Channels []string `json:"channels"`
}

// NewSubscription builds a subscribe or unsubscribe request. nowMs doubles
// as request id and nonce, matching the feed's convention.
func NewSubscription(method string, nowMs int64, channels []string) Request {
	return Request{
		ID:     nowMs,
		Nonce:  nowMs,
		Method: method,
		Params: &RequestParams{Channels: channels},
	}
}

// NewHeartbeatAck answers a server heartbeat; the id must echo the ping's.
func NewHeartbeatAck(id int64) Request {
	return Request{ID: id, Method: MethodRespondHeartbeat}
}

// envelope is the single inbound frame shape the feed uses for everything.
type envelope struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Code   int    `json:"code"`
	Result struct {
		Channel        string          `json:"channel"`
		InstrumentName string          `json:"instrument_name"`
		Subscription   string          `json:"subscription"`
		Interval       string          `json:"interval"`
		Data           json.RawMessage `json:"data"`
	} `json:"result"`
}

// Inbound is a decoded message from the stream. The concrete type tells the
// handler what it is looking at; no caller should ever inspect raw ids.
type Inbound interface {
	inbound()
}

// Heartbeat is a server liveness ping that must be acknowledged promptly.
type Heartbeat struct {
	ID int64
}

// LivePush is an unsolicited data update on a subscribed channel. Data stays
// raw here; the router decodes it according to Channel.
type LivePush struct {
	Channel      string
	Instrument   string
	Subscription string
	Interval     string
	Data         json.RawMessage
}

// Response answers a specific outbound request (subscription acks).
type Response struct {
	ForRequestID int64
	Method       string
	Code         int
}

func (Heartbeat) inbound() {}
func (LivePush) inbound()  {}
func (Response) inbound()  {}

// DecodeInbound classifies a raw frame into one of the Inbound variants.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("models: decode frame: %w", err)
	}
	switch env.Method {
	case MethodHeartbeat:
		return Heartbeat{ID: env.ID}, nil
	case MethodSubscribe:
		if env.ID == liveID {
			return LivePush{
				Channel:      env.Result.Channel,
				Instrument:   env.Result.InstrumentName,
				Subscription: env.Result.Subscription,
				Interval:     env.Result.Interval,
				Data:         env.Result.Data,
			}, nil
		}
		return Response{ForRequestID: env.ID, Method: env.Method, Code: env.Code}, nil
	default:
		return Response{ForRequestID: env.ID, Method: env.Method, Code: env.Code}, nil
	}
}
