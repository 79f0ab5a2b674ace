package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// LabelUnreachable is reported for hosts that could not be reached.
	LabelUnreachable = "UNREACHABLE"

	// LabelError is reported when a check failed for a reason other than
	// connectivity. The scheduler assigns it; [Checker.Check] returns the
	// underlying error instead.
	LabelError = "ERROR"

	// DefaultTimeout bounds a single check when no timeout is configured.
	DefaultTimeout = 10 * time.Second
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Resolver resolves host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Checker performs reachability probes and status checks.
//
// A Checker is safe for concurrent use. Every public method bounds its work
// by the configured timeout in addition to any deadline on the context.
type Checker struct {
	client   Doer
	dialer   Dialer
	resolver Resolver
	proxy    func(*http.Request) (*url.URL, error)
	timeout  time.Duration
}

// Option configures a [Checker].
type Option func(*Checker)

// WithHTTPClient replaces the client used for status GETs.
func WithHTTPClient(d Doer) Option {
	return func(c *Checker) {
		if d != nil {
			c.client = d
		}
	}
}

// WithDialer replaces the dialer used by reachability probes.
func WithDialer(d Dialer) Option {
	return func(c *Checker) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithResolver replaces the resolver used by reachability probes.
func WithResolver(r Resolver) Option {
	return func(c *Checker) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithProxy sets how [Checker.Check] learns whether a GET will go through a
// proxy, in which case the direct reachability probe is skipped. It should
// match the proxy setting of the HTTP client. Defaults to
// http.ProxyFromEnvironment; nil means requests are never proxied.
func WithProxy(proxy func(*http.Request) (*url.URL, error)) Option {
	return func(c *Checker) {
		c.proxy = proxy
	}
}

// WithTimeout sets the per-check timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a [Checker] with a pooled HTTP client, the system resolver
// and [DefaultTimeout], overridden by opts.
func New(opts ...Option) *Checker {
	c := &Checker{
		client:   newHTTPClient(),
		dialer:   &net.Dialer{},
		resolver: net.DefaultResolver,
		proxy:    http.ProxyFromEnvironment,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-check timeout.
func (c *Checker) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections held by the default HTTP client.
// The checker remains usable afterwards. Safe on a nil receiver.
func (c *Checker) Close() {
	if c == nil {
		return
	}
	closeIdle(c.client)
}

// IsReachable reports whether the host portion of rawURL accepts TCP
// connections.
//
// rawURL may be a full URL or a bare host ("www.google.com"). The port is
// taken from the URL, else 80 for http and 443 otherwise. An empty string,
// an unparseable URL, a resolution failure or a failed connect all report
// false. The HTTP status of the host plays no part.
//
// The probe always dials directly, so behind a proxy-only network it reports
// false for hosts the proxy could reach. [Checker.Check] skips it for
// proxied requests.
func (c *Checker) IsReachable(ctx context.Context, rawURL string) bool {
	host, port, ok := hostPort(rawURL)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addrs, err := c.resolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		return false
	}

	for _, addr := range addrs {
		conn, err := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(addr, port))
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			continue
		}
		_ = conn.Close()
		return true
	}
	return false
}

// StatusCode issues a GET to rawURL and returns the response status code.
//
// Every status the server sends is a successful result, 4xx and 5xx
// included. Errors:
//   - [ErrEmptyURL] if rawURL is empty or blank
//   - an error wrapping [ErrUnreachable] if the host could not be reached
//     or the request timed out
//   - any other error unchanged in kind, for failures that are not about
//     connectivity
func (c *Checker) StatusCode(ctx context.Context, rawURL string) (int, error) {
	if strings.TrimSpace(rawURL) == "" {
		return 0, ErrEmptyURL
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isConnectivityError(err) {
			return 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// drain so the connection can be reused; read errors don't change the status
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))

	return resp.StatusCode, nil
}

// Check returns the status label for rawURL.
//
// Surrounding whitespace is trimmed and "https://" is assumed when rawURL
// has no scheme. Unless the request goes through a proxy, the host is
// probed first; an unreachable host yields [LabelUnreachable] without a GET. Otherwise the GET's status code is
// returned as a decimal string, or [LabelUnreachable] if the GET itself
// could not reach the host.
//
// Returns [ErrEmptyURL] for blank input and passes through any error from
// [Checker.StatusCode] that is not a connectivity failure.
func (c *Checker) Check(ctx context.Context, rawURL string) (string, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return "", ErrEmptyURL
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if !c.proxied(target) && !c.IsReachable(ctx, target) {
		return LabelUnreachable, nil
	}

	code, err := c.StatusCode(ctx, target)
	switch {
	case errors.Is(err, ErrUnreachable):
		return LabelUnreachable, nil
	case err != nil:
		return "", err
	}
	return strconv.Itoa(code), nil
}

// proxied reports whether a GET to target would be sent through a proxy.
func (c *Checker) proxied(target string) bool {
	if c.proxy == nil {
		return false
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	proxyURL, err := c.proxy(req)
	return err == nil && proxyURL != nil
}

// hostPort extracts the host and port to probe from rawURL.
func hostPort(rawURL string) (host, port string, ok bool) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", "", false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return "", "", false
	}

	port = u.Port()
	if port == "" {
		switch strings.ToLower(u.Scheme) {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return "", "", false
		}
	}
	return u.Hostname(), port, true
}
