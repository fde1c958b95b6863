package api

import (
	"sync"
)

// Event is one message on the dispatch event stream.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// EventBroker fans dispatch events out to stream subscribers, keyed by
// organization.
type EventBroker interface {
	Subscribe(orgID string) chan Event
	Unsubscribe(orgID string, ch chan Event)
	Publish(orgID string, evt Event)
}

// Broker is the in-process EventBroker used when no Redis is configured.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // orgID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(orgID string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[orgID] == nil {
		b.subs[orgID] = map[chan Event]struct{}{}
	}
	b.subs[orgID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(orgID string, ch chan Event) {
	b.mu.Lock()
	if m := b.subs[orgID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, orgID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish delivers best-effort: a slow subscriber drops events rather than
// blocking the publisher.
func (b *Broker) Publish(orgID string, evt Event) {
	b.mu.Lock()
	for ch := range b.subs[orgID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
