package main

import "sync"

// fakeCall records one outbound transport call.
type fakeCall struct {
	Channel string
	Payload map[string]any
}

// fakeTransport is an in-process Transport that records outbound calls and
// lets tests feed the inbound event stream directly.
type fakeTransport struct {
	mu sync.Mutex

	events chan TransportEvent

	subscribed   []string
	unsubscribed []string
	published    []fakeCall
	signaled     []fakeCall
	states       []fakeCall

	history     map[string][]HistoryMessage
	occupants   map[string][]Occupant
	historyErr  error
	presenceErr error
	publishErr  error
	signalErr   error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		events:    make(chan TransportEvent, 16),
		history:   make(map[string][]HistoryMessage),
		occupants: make(map[string][]Occupant),
	}
}

func (f *fakeTransport) Subscribe(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, channel)
}

func (f *fakeTransport) Unsubscribe(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, channel)
}

func (f *fakeTransport) Publish(channel string, message map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, fakeCall{Channel: channel, Payload: message})
	return nil
}

func (f *fakeTransport) Signal(channel string, message map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signalErr != nil {
		return f.signalErr
	}
	f.signaled = append(f.signaled, fakeCall{Channel: channel, Payload: message})
	return nil
}

func (f *fakeTransport) SetState(channel string, state map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, fakeCall{Channel: channel, Payload: state})
	return nil
}

func (f *fakeTransport) History(channel string, count int) ([]HistoryMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	items := f.history[channel]
	if len(items) > count {
		items = items[len(items)-count:]
	}
	return items, nil
}

func (f *fakeTransport) Occupants(channel string) ([]Occupant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presenceErr != nil {
		return nil, f.presenceErr
	}
	return f.occupants[channel], nil
}

func (f *fakeTransport) Events() <-chan TransportEvent { return f.events }

func (f *fakeTransport) Close() { close(f.events) }

// emit feeds one event into the inbound stream.
func (f *fakeTransport) emit(ev TransportEvent) { f.events <- ev }

func (f *fakeTransport) publishedCalls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeCall, len(f.published))
	copy(out, f.published)
	return out
}

func (f *fakeTransport) signaledCalls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeCall, len(f.signaled))
	copy(out, f.signaled)
	return out
}

func (f *fakeTransport) subscribedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.subscribed))
	copy(out, f.subscribed)
	return out
}

func (f *fakeTransport) unsubscribedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.unsubscribed))
	copy(out, f.unsubscribed)
	return out
}
