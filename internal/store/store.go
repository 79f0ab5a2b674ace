package store

import (
	"maps"
	"time"
)

// Snapshot is the complete result of one sweep.
//
// A published Snapshot is never modified. Values handed out by a [Store]
// carry their own copy of Results, so callers may keep or mutate them.
type Snapshot struct {
	// Seq is the sequence number the sweep obtained from [Store.Begin].
	Seq uint64 `json:"seq"`

	// SweepID identifies the sweep in logs.
	SweepID string `json:"sweep_id"`

	// Results maps each swept URL to its status label.
	Results map[string]string `json:"results"`

	// StartedAt is when the sweep began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the sweep finished checking every URL.
	CompletedAt time.Time `json:"completed_at"`
}

// IsZero reports whether no sweep has been published yet.
func (s Snapshot) IsZero() bool {
	return s.Seq == 0
}

// clone returns a copy of s with its own Results map.
func (s Snapshot) clone() Snapshot {
	s.Results = maps.Clone(s.Results)
	if s.Results == nil {
		s.Results = map[string]string{}
	}
	return s
}

// Store defines the interface for publishing and reading sweep results.
//
// Store implementations must be safe for concurrent access. Readers always
// observe one whole snapshot, never a mix of two sweeps.
type Store interface {
	// Begin allocates the next sweep sequence number and records it as the
	// latest started sweep.
	Begin() uint64

	// Publish replaces the current snapshot with snap and notifies
	// subscribers, provided snap.Seq is the latest started sequence.
	// Returns false, leaving the store unchanged, when a newer sweep has
	// begun since snap's.
	Publish(snap Snapshot) bool

	// Current returns a copy of the latest published snapshot, or the zero
	// Snapshot (with an empty Results map) before the first publish.
	Current() Snapshot

	// Get returns the label for url from the latest published snapshot.
	Get(url string) (label string, ok bool)

	// Subscribe returns a channel that receives each published snapshot.
	// The channel is buffered; slow consumers may miss snapshots.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
