// Package poller runs the periodic sweep over every registered URL.
//
// This package is internal to sitecheck. A [Scheduler] owns a ticker and a
// cancellation context; each tick runs one sweep that checks every URL
// through a bounded errgroup and publishes the complete result map to the
// store in one step.
//
// The main components are:
//
//   - [Scheduler]: Manages the sweep loop and its lifecycle
//   - [Config]: URL list, interval, concurrency and timeout settings
//   - [Checker]: The single-URL check the scheduler fans out
//
// Users of the sitecheck library should not need to interact with this
// package directly. Configuration is done through the main sitecheck package.
package poller
