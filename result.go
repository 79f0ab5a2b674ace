package sitecheck

import (
	"maps"
	"time"

	"github.com/jpalmerr/sitecheck/internal/checker"
	"github.com/jpalmerr/sitecheck/internal/store"
)

// Status labels recorded for a URL in addition to numeric HTTP codes.
const (
	// LabelUnreachable marks a URL whose host could not be reached: DNS
	// failure, refused or reset connection, TLS failure or timeout.
	LabelUnreachable = checker.LabelUnreachable

	// LabelError marks a URL whose check failed for an unexpected reason.
	// The cause is logged; other URLs in the same sweep are unaffected.
	LabelError = checker.LabelError
)

// SweepResult is the outcome of one sweep over every registered URL.
//
// SweepResult is passed to callbacks registered via [WithSweepCallback]
// and returned by [SiteCheck.CheckAll]. Each receiver gets its own copy of
// Results.
type SweepResult struct {
	// Seq orders sweeps; a later sweep has a higher Seq.
	Seq uint64

	// SweepID is the identifier logged with every event of this sweep.
	SweepID string

	// Results maps each registered URL, exactly as configured, to its
	// label: a three-digit HTTP status, [LabelUnreachable] or [LabelError].
	Results map[string]string

	// StartedAt is when the sweep began.
	StartedAt time.Time

	// CompletedAt is when the last check finished.
	CompletedAt time.Time
}

// Duration returns how long the sweep took.
func (r SweepResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Label returns the label recorded for url and whether url was swept.
func (r SweepResult) Label(url string) (string, bool) {
	label, ok := r.Results[url]
	return label, ok
}

// IsUp reports whether label is an HTTP status code, meaning the URL
// answered. Any status counts, 4xx and 5xx included.
func IsUp(label string) bool {
	if len(label) != 3 {
		return false
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// snapshotToSweepResult converts a store snapshot to the public type.
// Creates a copy of Results so callers cannot reach the store's map.
func snapshotToSweepResult(snap store.Snapshot) SweepResult {
	results := maps.Clone(snap.Results)
	if results == nil {
		results = map[string]string{}
	}
	return SweepResult{
		Seq:         snap.Seq,
		SweepID:     snap.SweepID,
		Results:     results,
		StartedAt:   snap.StartedAt,
		CompletedAt: snap.CompletedAt,
	}
}
