package store

import (
	"sync"
	"sync/atomic"
)

// subscriberBuffer is the channel capacity for each subscriber.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// The current snapshot sits behind an atomic pointer, so reads never take a
// lock and always see a fully built map. Publishers serialise on a mutex to
// compare sequence numbers and swap the pointer as one step.
//
// Subscribers receive snapshots via buffered channels. Sends are
// non-blocking; if a subscriber's buffer is full, the snapshot is dropped
// for that subscriber to prevent blocking the sweep.
type MemoryStore struct {
	current atomic.Pointer[Snapshot]
	latest  atomic.Uint64

	publishMu sync.Mutex

	subscribers map[chan Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Begin allocates the next sequence number. The first call returns 1.
func (m *MemoryStore) Begin() uint64 {
	return m.latest.Add(1)
}

// Publish stores snap if it belongs to the latest started sweep.
//
// The store keeps its own copy of snap.Results, so the caller may reuse the
// map afterwards.
func (m *MemoryStore) Publish(snap Snapshot) bool {
	stored := snap.clone()

	m.publishMu.Lock()
	if snap.Seq == 0 || snap.Seq != m.latest.Load() {
		m.publishMu.Unlock()
		return false
	}
	if prev := m.current.Load(); prev != nil && prev.Seq >= snap.Seq {
		m.publishMu.Unlock()
		return false
	}
	m.current.Store(&stored)
	m.publishMu.Unlock()

	m.notifySubscribers(&stored)
	return true
}

// Current returns a copy of the latest published snapshot.
func (m *MemoryStore) Current() Snapshot {
	p := m.current.Load()
	if p == nil {
		return Snapshot{Results: map[string]string{}}
	}
	return p.clone()
}

// Get returns the label recorded for url by the latest published sweep.
func (m *MemoryStore) Get(url string) (string, bool) {
	p := m.current.Load()
	if p == nil {
		return "", false
	}
	label, ok := p.Results[url]
	return label, ok
}

// Subscribe creates a new subscription and returns a channel for receiving
// snapshots.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// snapshots will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends a copy of snap to every active subscriber.
func (m *MemoryStore) notifySubscribers(snap *Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- snap.clone():
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}
