package events

import (
	"log"
	"sync"
)

// InMemoryEventStore keeps quote streams in process memory. A long-running
// server bounds the history it retains; versions and positions stay absolute
// after old events are dropped.
type InMemoryEventStore struct {
	mu            sync.RWMutex
	perStream     int // events kept per stream, 0 keeps all
	total         int // events kept in the global log, 0 keeps all
	streams       map[string]*stream
	log           []Event
	logBase       int // position of log[0]
	subscriptions []subscription
}

type stream struct {
	events      []Event
	nextVersion int
}

type subscription struct {
	handler EventHandler
	types   map[string]bool // empty matches every type
}

func (s subscription) matches(eventType string) bool {
	return (len(s.types) == 0 || s.types[eventType]) && s.handler.CanHandle(eventType)
}

// NewInMemoryEventStore creates a store that keeps every event
func NewInMemoryEventStore() *InMemoryEventStore {
	return NewBoundedEventStore(0, 0)
}

// NewBoundedEventStore keeps at most perStream events per quote and total
// events in the global log. Zero means unbounded.
func NewBoundedEventStore(perStream, total int) *InMemoryEventStore {
	return &InMemoryEventStore{
		perStream: perStream,
		total:     total,
		streams:   make(map[string]*stream),
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mu.Lock()
	st, ok := s.streams[streamID]
	if !ok {
		st = &stream{nextVersion: 1}
		s.streams[streamID] = st
	}

	stored := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: st.nextVersion,
	}
	st.nextVersion++

	st.events = append(st.events, stored)
	if s.perStream > 0 && len(st.events) > s.perStream {
		st.events = append([]Event(nil), st.events[len(st.events)-s.perStream:]...)
	}
	s.log = append(s.log, stored)
	if s.total > 0 && len(s.log) > s.total {
		drop := len(s.log) - s.total
		s.log = append([]Event(nil), s.log[drop:]...)
		s.logBase += drop
	}

	var handlers []EventHandler
	for _, sub := range s.subscriptions {
		if sub.matches(stored.EventType) {
			handlers = append(handlers, sub.handler)
		}
	}
	s.mu.Unlock()

	if len(handlers) > 0 {
		go deliver(handlers, stored)
	}
	return nil
}

// ReadEvents returns the retained events of a stream with version >= fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.streams[streamID]
	if !ok {
		return []Event{}, nil
	}
	out := make([]Event, 0, len(st.events))
	for _, e := range st.events {
		if e.Version() >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAllEvents returns the retained global log from fromPosition on.
// Positions count from 0 over every event ever appended.
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := fromPosition - s.logBase
	if start < 0 {
		start = 0
	}
	if start >= len(s.log) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.log[start:]...), nil
}

// Subscribe registers handler for eventTypes; no types subscribes to all
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	sub := subscription{handler: handler, types: make(map[string]bool, len(eventTypes))}
	for _, t := range eventTypes {
		sub.types[t] = true
	}

	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, sub)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.subscriptions[:0]
	for _, sub := range s.subscriptions {
		if sub.handler != handler {
			kept = append(kept, sub)
		}
	}
	s.subscriptions = kept
	return nil
}

func deliver(handlers []EventHandler, event Event) {
	for _, h := range handlers {
		if err := h.Handle(event); err != nil {
			log.Printf("[events] handler failed for %s %s on stream %s: %v", event.Type(), event.ID(), event.StreamID(), err)
		}
	}
}
