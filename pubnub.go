package main

import (
	"fmt"
	"log"
	"strconv"

	pubnub "github.com/pubnub/go/v7"
)

// pubnubTransport implements Transport over the PubNub SDK. A single pump
// goroutine merges the SDK listener's four channels into one event stream,
// so the model sees a FIFO sequence regardless of event kind.
type pubnubTransport struct {
	pn     *pubnub.PubNub
	events chan TransportEvent
	done   chan struct{}
}

func newPubNubTransport(cfg Config, userID string) *pubnubTransport {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey

	t := &pubnubTransport{
		pn:     pubnub.NewPubNub(pnCfg),
		events: make(chan TransportEvent, 64),
		done:   make(chan struct{}),
	}

	listener := pubnub.NewListener()
	t.pn.AddListener(listener)
	go t.pump(listener)

	return t
}

func (t *pubnubTransport) pump(listener *pubnub.Listener) {
	for {
		select {
		case <-t.done:
			return
		case status := <-listener.Status:
			category := categoryName(status.Category)
			if category == "" {
				continue // operation acks, not connection status
			}
			log.Printf("pubnub status: %s", category)
			t.emit(StatusEvent{Category: category})
		case msg := <-listener.Message:
			t.emit(MessageEvent{
				Channel:   msg.Channel,
				Payload:   asPayload(msg.Message),
				Timetoken: strconv.FormatInt(msg.Timetoken, 10),
			})
		case sig := <-listener.Signal:
			t.emit(SignalEvent{Channel: sig.Channel, Payload: asPayload(sig.Message)})
		case pr := <-listener.Presence:
			t.emit(PresenceEvent{
				Channel: pr.Channel,
				Action:  pr.Event,
				UUID:    pr.UUID,
				State:   stateMap(pr.State),
			})
		}
	}
}

func (t *pubnubTransport) emit(ev TransportEvent) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

// asPayload coerces an arbitrary published message into a string-keyed map;
// non-object messages normalize to nil and get dropped downstream.
func asPayload(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stateMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// categoryName translates SDK status categories into the transport-neutral
// strings the status mapper understands. Empty means "not a connection
// status" and is skipped by the pump.
func categoryName(c pubnub.StatusCategory) string {
	switch c {
	case pubnub.PNConnectedCategory:
		return "connected"
	case pubnub.PNReconnectedCategory:
		return "reconnected"
	case pubnub.PNDisconnectedCategory, pubnub.PNCancelledCategory, pubnub.PNLoopStopCategory:
		return "disconnected"
	case pubnub.PNTimeoutCategory:
		return "timeout"
	case pubnub.PNReconnectionAttemptsExhausted:
		return "network-down"
	case pubnub.PNAccessDeniedCategory:
		return "access-denied"
	case pubnub.PNBadRequestCategory:
		return "bad-request"
	case pubnub.PNAcknowledgmentCategory, pubnub.PNRequestMessageCountExceededCategory:
		return ""
	default:
		return "unknown"
	}
}

func (t *pubnubTransport) Subscribe(channel string) {
	t.pn.Subscribe().Channels([]string{channel}).WithPresence(true).Execute()
}

func (t *pubnubTransport) Unsubscribe(channel string) {
	t.pn.Unsubscribe().Channels([]string{channel}).Execute()
}

func (t *pubnubTransport) Publish(channel string, message map[string]any) error {
	_, _, err := t.pn.Publish().Channel(channel).Message(message).Execute()
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (t *pubnubTransport) Signal(channel string, message map[string]any) error {
	_, _, err := t.pn.Signal().Channel(channel).Message(message).Execute()
	if err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	return nil
}

func (t *pubnubTransport) SetState(channel string, state map[string]any) error {
	_, _, err := t.pn.SetState().Channels([]string{channel}).State(state).Execute()
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

func (t *pubnubTransport) History(channel string, count int) ([]HistoryMessage, error) {
	res, _, err := t.pn.Fetch().Channels([]string{channel}).Count(count).Execute()
	if err != nil {
		return nil, fmt.Errorf("history fetch: %w", err)
	}
	var out []HistoryMessage
	for _, item := range res.Messages[channel] {
		out = append(out, HistoryMessage{
			Payload:   asPayload(item.Message),
			Timetoken: tokenString(item.Timetoken),
		})
	}
	return out, nil
}

// tokenString normalizes a timetoken to its decimal-string form; the SDK
// surfaces tokens as strings in fetch responses and int64 in live messages.
func tokenString(v any) string {
	switch tt := v.(type) {
	case string:
		return tt
	case int64:
		return strconv.FormatInt(tt, 10)
	case float64:
		return strconv.FormatInt(int64(tt), 10)
	}
	return ""
}

func (t *pubnubTransport) Occupants(channel string) ([]Occupant, error) {
	res, _, err := t.pn.HereNow().Channels([]string{channel}).IncludeUUIDs(true).IncludeState(true).Execute()
	if err != nil {
		return nil, fmt.Errorf("presence fetch: %w", err)
	}
	var out []Occupant
	for _, ch := range res.Channels {
		if ch.ChannelName != channel {
			continue
		}
		for _, oc := range ch.Occupants {
			out = append(out, Occupant{UUID: oc.UUID, State: stateMap(oc.State)})
		}
	}
	return out, nil
}

func (t *pubnubTransport) Events() <-chan TransportEvent { return t.events }

func (t *pubnubTransport) Close() {
	close(t.done)
	t.pn.UnsubscribeAll()
	t.pn.Destroy()
}
