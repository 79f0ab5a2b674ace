// Package server provides the HTTP server for the status pages and API.
//
// This package is internal to sitecheck and handles all HTTP concerns:
//
//   - Status page: every group and URL with its current label at "/"
//   - Lookup: POST "/result" matches a submitted URL against the registry
//   - REST API: flat JSON object of the current results at "/api"
//   - Server-Sent Events: each published sweep at "/api/events"
//   - Operations: "/healthz" and Prometheus "/metrics"
//
// Handlers read the store on every request and never block a sweep.
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the sitecheck library should not need to interact with this
// package directly. The server is started automatically by [sitecheck.SiteCheck.Start].
package server
