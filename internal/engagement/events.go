package engagement

import "sync"

// Event describes a single engagement change for one track. Every view
// currently rendering that track applies it without re-reading the store.
type Event struct {
	TrackID  string `json:"trackId"`
	Field    string `json:"field"` // "rating" | "liked" | "comments"
	NewValue any    `json:"newValue"`
}

// Bus fans change events out to subscribers. The store publishes after
// each committed mutation; the websocket layer and tests subscribe.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and a cancel func. The
// channel is buffered; a subscriber that stops draining loses events
// rather than blocking publishers.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
