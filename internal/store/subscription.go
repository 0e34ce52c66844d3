package store

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charliek/mplog/internal/domain"
)

var subscriptionIDCounter uint64

// subscription delivers ingested records to one consumer over a bounded
// channel. A full channel drops the record rather than stalling ingest.
type subscription struct {
	id     string
	ch     chan domain.Event
	filter *Filter
	closed atomic.Bool
}

func newSubscription(filter domain.EventFilter, bufferSize int) (*subscription, error) {
	f, err := NewFilter(filter)
	if err != nil {
		return nil, err
	}

	id := atomic.AddUint64(&subscriptionIDCounter, 1)

	return &subscription{
		id:     "sub-" + strconv.FormatUint(id, 10),
		ch:     make(chan domain.Event, bufferSize),
		filter: f,
	}, nil
}

// send attempts to deliver an event to the subscriber.
// Returns false if the channel is full or closed.
func (s *subscription) send(ev domain.Event) bool {
	if s.closed.Load() {
		return false
	}

	if !s.filter.Matches(ev) {
		return true // filtered out, but not a failure
	}

	select {
	case s.ch <- ev:
		return true
	default:
		// Channel full, drop the record - log for debugging slow consumers
		log.Printf("subscription %s: dropped record from pid %d (channel full)", s.id, ev.PID)
		return false
	}
}

func (s *subscription) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// subscriptionManager fans ingested records out to all subscribers
type subscriptionManager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	bufferSize    int
}

func newSubscriptionManager(bufferSize int) *subscriptionManager {
	return &subscriptionManager{
		subscriptions: make(map[string]*subscription),
		bufferSize:    bufferSize,
	}
}

// Subscribe creates a new subscription
func (m *subscriptionManager) Subscribe(filter domain.EventFilter) (string, <-chan domain.Event, error) {
	sub, err := newSubscription(filter, m.bufferSize)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.subscriptions[sub.id] = sub
	m.mu.Unlock()

	return sub.id, sub.ch, nil
}

// Unsubscribe removes a subscription
func (m *subscriptionManager) Unsubscribe(id string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[id]
	if ok {
		delete(m.subscriptions, id)
	}
	m.mu.Unlock()

	if ok {
		sub.close()
	}
}

// Broadcast sends an event to all subscribers
func (m *subscriptionManager) Broadcast(ev domain.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscriptions {
		sub.send(ev)
	}
}

// Count returns the number of active subscriptions
func (m *subscriptionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes all subscriptions
func (m *subscriptionManager) Close() {
	m.mu.Lock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.subscriptions = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
