// Package store holds the latest sweep results and publishes them to
// subscribers.
//
// This package is internal to sitecheck. Each sweep's results are published
// as one [Snapshot] that replaces the previous one wholesale; there is no
// merging and no history.
//
// The main components are:
//
//   - [Store]: Interface defining publish, read and subscription operations
//   - [MemoryStore]: In-memory implementation with an atomically swapped snapshot
//   - [Snapshot]: The results of one sweep plus its sequence number and timing
//
// Sweeps may overlap, so every sweep takes a sequence number from
// [Store.Begin] before it starts checking. Only the most recently started
// sweep may publish; a slower, older sweep finishing late is discarded
// rather than overwriting fresher results.
package store
