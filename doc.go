// Package sitecheck periodically checks a configured set of URLs and serves
// their latest status through a small web UI and a JSON API.
//
// URLs are organised into named groups. Every sweep checks each URL once and
// records a label: the three-digit HTTP status the URL answered with,
// [LabelUnreachable] when its host could not be reached, or [LabelError]
// when the check failed for an unexpected reason. The whole result set is
// replaced at once, so readers never see two sweeps mixed together.
//
// # Quick Start
//
//	sc, _ := sitecheck.New(sitecheck.WithGroups(
//	    registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.co.uk", "https://www.bbc.co.uk/404"}},
//	    registry.Group{Name: "Google", URLs: []string{"https://www.google.com"}},
//	))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	sc.Start(ctx) // blocks until context is cancelled
//
// For a one-off check without the HTTP server, use [SiteCheck.CheckAll].
//
// # HTTP surface
//
//   - GET /: every group with each URL's current label
//   - GET /api: the current results as a flat JSON object
//   - POST /result: looks up the form field "submitted" against the registry
//   - GET /api/events: Server-Sent Events, one per published sweep
//   - GET /healthz and GET /metrics
//
// # Architecture
//
//   - registry: groups, the flattened URL list and submitted-URL lookup
//   - config: YAML/JSON configuration loading
//   - internal/checker: reachability probe and HTTP status check for one URL
//   - internal/poller: the sweep and its refresh loop
//   - internal/store: atomically swapped snapshots with pub/sub
//   - internal/server: HTTP handlers
//   - internal/metrics: Prometheus collectors
//   - dashboard: embedded page templates
//
// The internal packages are not part of the public API and may change
// without notice.
package sitecheck
