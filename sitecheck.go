package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jpalmerr/sitecheck/dashboard"
	"github.com/jpalmerr/sitecheck/internal/checker"
	"github.com/jpalmerr/sitecheck/internal/metrics"
	"github.com/jpalmerr/sitecheck/internal/poller"
	"github.com/jpalmerr/sitecheck/internal/server"
	"github.com/jpalmerr/sitecheck/internal/store"
	"github.com/jpalmerr/sitecheck/registry"
)

const (
	defaultRefreshInterval = 60 * time.Second
	defaultCheckTimeout    = checker.DefaultTimeout
	defaultPort            = 8080
	defaultMaxConcurrency  = 10
	defaultTitle           = "Site Status"
)

// SiteCheck is the main orchestrator for URL sweeps and the status pages.
//
// SiteCheck sweeps every URL in its [registry.Registry] on a fixed interval,
// keeps the latest results in memory, and serves them as HTML and JSON. It is
// created using [New] with functional options and started with
// [SiteCheck.Start].
//
// The typical lifecycle is:
//
//	sc, err := sitecheck.New(sitecheck.WithGroups(
//	    registry.Group{Name: "BBC", URLs: []string{"https://www.bbc.co.uk"}},
//	))
//	if err != nil {
//	    slog.Error("failed to create sitecheck", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	sc.Start(ctx) // blocks until context cancelled
//
// A SiteCheck holds only configuration; every call to Start or CheckAll
// builds its own store and checker, so one value may be started again after
// a previous run returns.
type SiteCheck struct {
	title           string
	registry        *registry.Registry
	refreshInterval time.Duration
	checkTimeout    time.Duration
	port            int
	maxConcurrency  int
	logger          *slog.Logger
	sweepCallbacks  []func(SweepResult)
}

// New creates a new [SiteCheck] instance with the given options.
//
// The URLs to check must be given via [WithRegistry] or [WithGroups].
// Other options have sensible defaults:
//   - Refresh interval: 60 seconds
//   - Check timeout: 10 seconds
//   - Port: 8080
//   - Max concurrency: 10
//   - Title: "Site Status"
//
// Returns an error if no URLs are configured, both [WithRegistry] and
// [WithGroups] are used, or any option is invalid.
func New(opts ...Option) (*SiteCheck, error) {
	cfg := &scConfig{
		title:           defaultTitle,
		refreshInterval: defaultRefreshInterval,
		checkTimeout:    defaultCheckTimeout,
		port:            defaultPort,
		maxConcurrency:  defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	reg := cfg.registry
	switch {
	case reg != nil && len(cfg.groups) > 0:
		return nil, errors.New("use either WithRegistry or WithGroups, not both")
	case reg == nil && len(cfg.groups) == 0:
		return nil, errors.New("at least one group is required")
	case reg == nil:
		var err error
		if reg, err = registry.New(cfg.groups); err != nil {
			return nil, fmt.Errorf("invalid groups: %w", err)
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SiteCheck{
		title:           cfg.title,
		registry:        reg,
		refreshInterval: cfg.refreshInterval,
		checkTimeout:    cfg.checkTimeout,
		port:            cfg.port,
		maxConcurrency:  cfg.maxConcurrency,
		logger:          logger,
		sweepCallbacks:  cfg.sweepCallbacks,
	}, nil
}

// Start begins sweeping URLs and serving the status pages.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - Every registered URL is checked immediately, then once per refresh interval
//   - The HTTP server starts on the configured port
//   - Each published sweep is logged and passed to the sweep callbacks
//   - The status page is available at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails to start.
func (sc *SiteCheck) Start(ctx context.Context) error {
	sc.logger.Info("sitecheck starting",
		"group_count", len(sc.registry.Groups()),
		"url_count", sc.registry.Len(),
	)
	sc.logger.Info("refresh configured",
		"interval", sc.refreshInterval.String(),
		"check_timeout", sc.checkTimeout.String(),
		"max_concurrency", sc.maxConcurrency,
	)
	sc.logger.Info("status page available", "url", fmt.Sprintf("http://localhost:%d", sc.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	promReg := newPrometheusRegistry()
	m := metrics.New(promReg)
	m.SetRegisteredURLs(sc.registry.Len())

	resultStore := store.NewMemoryStore()

	c := checker.New(checker.WithTimeout(sc.checkTimeout))
	defer c.Close()

	scheduler := sc.newScheduler(c, resultStore, m)
	scheduler.Start(ctx)

	httpServer := server.NewServer(resultStore, sc.registry, server.Config{
		Port:     sc.port,
		Title:    sc.title,
		Assets:   dashboard.Assets,
		Gatherer: promReg,
		Logger:   sc.logger,
	})
	if err := httpServer.Start(ctx); err != nil {
		scheduler.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	scheduler.Stop()
	sc.logger.Info("sitecheck stopped")
	return nil
}

// CheckAll runs a single sweep over every registered URL and returns its
// results, without starting the HTTP server.
//
// Sweep callbacks are invoked as they are for a published sweep in
// [SiteCheck.Start]. Returns an error if ctx is cancelled before every URL
// has been checked.
func (sc *SiteCheck) CheckAll(ctx context.Context) (SweepResult, error) {
	c := checker.New(checker.WithTimeout(sc.checkTimeout))
	defer c.Close()

	scheduler := sc.newScheduler(c, store.NewMemoryStore(), nil)
	snap, ok := scheduler.Sweep(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return SweepResult{}, fmt.Errorf("sweep cancelled: %w", err)
		}
		return SweepResult{}, errors.New("sweep was not published")
	}
	return snapshotToSweepResult(snap), nil
}

func (sc *SiteCheck) newScheduler(c poller.Checker, st store.Store, m *metrics.Metrics) *poller.Scheduler {
	return poller.NewScheduler(poller.Config{
		URLs:           sc.registry.URLs(),
		Interval:       sc.refreshInterval,
		MaxConcurrency: sc.maxConcurrency,
		CheckTimeout:   sc.checkTimeout,
		Logger:         sc.logger,
		Metrics:        m,
		OnPublish:      sc.dispatchSweep,
	}, c, st)
}

// dispatchSweep hands a published snapshot to every sweep callback.
func (sc *SiteCheck) dispatchSweep(snap store.Snapshot) {
	for _, cb := range sc.sweepCallbacks {
		// each callback gets its own copy so none can affect another
		invokeCallbackSafe(cb, snapshotToSweepResult(snap), sc.logger)
	}
}

// Registry returns the registry of groups and URLs being checked.
func (sc *SiteCheck) Registry() *registry.Registry {
	return sc.registry
}

// Port returns the configured HTTP port for the status pages.
func (sc *SiteCheck) Port() int {
	return sc.port
}

// RefreshInterval returns the configured interval between sweeps.
func (sc *SiteCheck) RefreshInterval() time.Duration {
	return sc.refreshInterval
}

// CheckTimeout returns the configured per-URL check timeout.
func (sc *SiteCheck) CheckTimeout() time.Duration {
	return sc.checkTimeout
}

// MaxConcurrency returns the configured limit on concurrent checks.
func (sc *SiteCheck) MaxConcurrency() int {
	return sc.maxConcurrency
}

// Title returns the configured page title.
func (sc *SiteCheck) Title() string {
	return sc.title
}

// newPrometheusRegistry returns a registry with the Go runtime and process
// collectors, so each instance exposes its own metrics.
func newPrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// invokeCallbackSafe calls a sweep callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(SweepResult), result SweepResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sweep callback panicked",
				"panic", r,
				"sweep_id", result.SweepID,
			)
		}
	}()
	cb(result)
}
