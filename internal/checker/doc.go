// Package checker determines the status of a single URL.
//
// This package is internal to sitecheck. A check is two steps: a
// network-level reachability probe of the URL's host (DNS resolution plus a
// TCP connect), followed by an HTTP GET whose status code becomes the
// result. Hosts that fail the probe are reported as [LabelUnreachable]
// without issuing the GET, so a dead host costs one dial rather than a
// hanging request.
//
// The main components are:
//
//   - [Checker]: performs probes and GETs with per-call timeouts
//   - [ErrEmptyURL]: validation error for empty input
//   - [ErrUnreachable]: wraps connectivity failures and timeouts
//
// Any other failure is returned to the caller unclassified.
package checker
