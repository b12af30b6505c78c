package realtime

import (
	"encoding/json"
	"sync"
)

// Handler receives the raw data of one incoming frame.
type Handler func(data json.RawMessage)

// Subscription is one registered handler. Cancel removes only this handler.
type Subscription struct {
	hub   *Hub
	event string
	id    uint64
	once  sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() { s.hub.remove(s.event, s.id) })
}

// Hub fans incoming frames out to any number of subscribers per event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]Handler
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]Handler)}
}

func (h *Hub) Subscribe(event string, fn Handler) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	if h.subs[event] == nil {
		h.subs[event] = make(map[uint64]Handler)
	}
	h.subs[event][h.nextID] = fn
	return &Subscription{hub: h, event: event, id: h.nextID}
}

// Dispatch delivers data to every current subscriber of event and reports
// how many there were.
func (h *Hub) Dispatch(event string, data json.RawMessage) int {
	h.mu.RLock()
	fns := make([]Handler, 0, len(h.subs[event]))
	for _, fn := range h.subs[event] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(data)
	}
	return len(fns)
}

func (h *Hub) Subscribers(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[event])
}

func (h *Hub) remove(event string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[event], id)
	if len(h.subs[event]) == 0 {
		delete(h.subs, event)
	}
}

// On subscribes with a typed decoder. Frames that do not decode into T are
// dropped.
func On[T any](h *Hub, event string, fn func(T)) *Subscription {
	return h.Subscribe(event, func(data json.RawMessage) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return
		}
		fn(v)
	})
}
