// Package dashboard provides the embedded HTML templates for sitecheck.
//
// The templates are compiled into the binary so a single executable serves
// the status pages without external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the page templates.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Every group with each URL's current label
//	  result.html   - Outcome of a submitted URL lookup
//
// Both files are html/template sources executed by the server package.
//
//go:embed assets/*
var Assets embed.FS
