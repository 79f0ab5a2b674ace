package checker

import (
	"net/http"
	"time"
)

// maxDrainSize caps how much of a response body is read before closing, so
// keep-alive connections can be reused without buffering large pages.
const maxDrainSize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion when checking many URLs
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newHTTPClient creates the default client used for status checks.
//
// There is no client-wide timeout; each check bounds its request through
// the context instead, so the checker's timeout covers the reachability
// probe and the GET together.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			MaxConnsPerHost:     defaultMaxConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		},
	}
}

// closeIdle closes idle pooled connections when d is an *http.Client.
func closeIdle(d Doer) {
	c, ok := d.(*http.Client)
	if !ok || c == nil {
		return
	}
	c.CloseIdleConnections()
}
