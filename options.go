package sitecheck

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/sitecheck/registry"
)

const (
	minRefreshInterval = time.Second
	minCheckTimeout    = 100 * time.Millisecond
)

// scConfig holds mutable state during SiteCheck construction.
type scConfig struct {
	title           string
	registry        *registry.Registry
	groups          []registry.Group
	refreshInterval time.Duration
	checkTimeout    time.Duration
	port            int
	maxConcurrency  int
	logger          *slog.Logger
	sweepCallbacks  []func(SweepResult)
}

// Option is a function that configures a [SiteCheck] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*scConfig) error

// WithRegistry sets the groups and URLs to check from a prebuilt registry.
//
// Use this when the registry comes from configuration; see the config
// package's BuildRegistry. Cannot be combined with [WithGroups].
//
// Returns an error if the registry is nil.
func WithRegistry(reg *registry.Registry) Option {
	return func(cfg *scConfig) error {
		if reg == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithGroups adds groups of URLs to check.
//
// Can be called multiple times; groups keep the order they were added in.
// The groups are validated by [New] as by [registry.New].
//
// Example:
//
//	sc, err := sitecheck.New(
//	    sitecheck.WithGroups(
//	        registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.co.uk"}},
//	        registry.Group{Name: "Google", URLs: []string{"https://www.google.com"}},
//	    ),
//	)
func WithGroups(groups ...registry.Group) Option {
	return func(cfg *scConfig) error {
		cfg.groups = append(cfg.groups, groups...)
		return nil
	}
}

// WithRefreshInterval sets how often every URL is checked.
//
// Defaults to 60 seconds if not specified.
//
// Returns an error if the interval is shorter than one second.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *scConfig) error {
		if d < minRefreshInterval {
			return fmt.Errorf("refresh interval must be at least %s, got %s", minRefreshInterval, d)
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithCheckTimeout bounds how long a single URL check may take, covering
// both the reachability probe and the HTTP request. A URL that does not
// answer in time is labelled [LabelUnreachable].
//
// Defaults to 10 seconds if not specified.
//
// Returns an error if the timeout is shorter than 100ms.
func WithCheckTimeout(d time.Duration) Option {
	return func(cfg *scConfig) error {
		if d < minCheckTimeout {
			return fmt.Errorf("check timeout must be at least %s, got %s", minCheckTimeout, d)
		}
		cfg.checkTimeout = d
		return nil
	}
}

// WithPort sets the HTTP port for the status pages.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *scConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets the maximum number of URLs checked at once.
//
// Defaults to 10 if not specified.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *scConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the SiteCheck instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *scConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSweepCallback registers a function to be called after every
// published sweep.
//
// Multiple callbacks may be registered; they execute in registration order
// and each receives its own copy of the results. Callbacks run on the sweep
// goroutine, so a slow callback delays the next sweep. Panics are recovered
// and logged.
//
// Example:
//
//	sc, err := sitecheck.New(
//	    sitecheck.WithRegistry(reg),
//	    sitecheck.WithSweepCallback(func(r sitecheck.SweepResult) {
//	        for url, label := range r.Results {
//	            if label == sitecheck.LabelUnreachable {
//	                log.Printf("%s is down", url)
//	            }
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSweepCallback(cb func(SweepResult)) Option {
	return func(cfg *scConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.sweepCallbacks = append(cfg.sweepCallbacks, cb)
		return nil
	}
}

// WithTitle sets the title shown on the status pages.
//
// If not specified or empty, defaults to "Site Status".
func WithTitle(title string) Option {
	return func(cfg *scConfig) error {
		if title != "" {
			cfg.title = title
		}
		return nil
	}
}
