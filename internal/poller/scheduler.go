package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/sitecheck/internal/checker"
	"github.com/jpalmerr/sitecheck/internal/metrics"
	"github.com/jpalmerr/sitecheck/internal/store"
)

const (
	defaultInterval       = 60 * time.Second
	defaultMaxConcurrency = 10
)

// Checker returns the status label for one URL. *checker.Checker satisfies it.
type Checker interface {
	Check(ctx context.Context, rawURL string) (string, error)
}

// Config holds the settings for a [Scheduler].
type Config struct {
	// URLs is the flattened list of URLs checked by every sweep.
	URLs []string

	// Interval is the time between sweeps. Defaults to 60s.
	Interval time.Duration

	// MaxConcurrency caps how many checks run at once. Defaults to 10.
	MaxConcurrency int

	// CheckTimeout bounds each check. Defaults to [checker.DefaultTimeout].
	CheckTimeout time.Duration

	// Logger receives sweep and check events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records sweep and check collectors. May be nil.
	Metrics *metrics.Metrics

	// OnPublish is called after each sweep the store accepts. May be nil.
	// Panics are recovered and logged.
	OnPublish func(store.Snapshot)
}

// Scheduler runs sweeps over a fixed URL list on a fixed interval.
//
// The scheduler sweeps immediately on start and then once per tick. Ticks
// that fire while a sweep is still running are dropped rather than queued,
// so a slow sweep delays the next one instead of stacking up behind it.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	urls           []string
	interval       time.Duration
	maxConcurrency int
	checkTimeout   time.Duration
	checker        Checker
	store          store.Store
	logger         *slog.Logger
	metrics        *metrics.Metrics
	onPublish      func(store.Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewScheduler creates a new sweep [Scheduler].
//
// Zero values in cfg are replaced by defaults. The scheduler must be
// started with [Scheduler.Start] and stopped with [Scheduler.Stop];
// [Scheduler.Sweep] may also be called directly for a one-off sweep.
func NewScheduler(cfg Config, c Checker, st store.Store) *Scheduler {
	s := &Scheduler{
		urls:           append([]string(nil), cfg.URLs...),
		interval:       cfg.Interval,
		maxConcurrency: cfg.MaxConcurrency,
		checkTimeout:   cfg.CheckTimeout,
		checker:        c,
		store:          st,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		onPublish:      cfg.OnPublish,
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	if s.maxConcurrency <= 0 {
		s.maxConcurrency = defaultMaxConcurrency
	}
	if s.checkTimeout <= 0 {
		s.checkTimeout = checker.DefaultTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start begins the sweep loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The scheduler will:
//  1. Sweep all URLs immediately
//  2. Sweep again on every tick of the configured interval
//  3. Continue until [Scheduler.Stop] is called or the context is cancelled
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	sweepCtx := s.ctx // capture under lock to avoid race

	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		s.Sweep(sweepCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.Sweep(sweepCtx)
			}
		}
	}()
}

// Stop halts the scheduler and waits for the sweep loop to exit.
//
// An in-flight sweep is cancelled; its checks observe the cancelled context
// and its results are not published. Stop is idempotent and safe to call
// multiple times. Calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Sweep checks every URL once and publishes the results to the store.
//
// Checks run concurrently up to the configured limit, each bounded by the
// check timeout. A check that fails for a reason other than connectivity,
// or panics, is recorded as [checker.LabelError] for that URL alone.
//
// Returns the sweep's snapshot and whether the store accepted it. Nothing
// is published if ctx is cancelled before every check finishes, or if a
// newer sweep began while this one was running.
func (s *Scheduler) Sweep(ctx context.Context) (store.Snapshot, bool) {
	snap := store.Snapshot{
		Seq:       s.store.Begin(),
		SweepID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger := s.logger.With("sweep_id", snap.SweepID, "seq", snap.Seq)
	logger.Debug("sweep started", "url_count", len(s.urls))

	labels := make([]string, len(s.urls))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, url := range s.urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			labels[i] = s.checkURL(ctx, logger, url)
			return nil
		})
	}
	_ = g.Wait()

	snap.CompletedAt = time.Now()
	elapsed := snap.CompletedAt.Sub(snap.StartedAt)

	if ctx.Err() != nil {
		s.metrics.ObserveSweep(metrics.OutcomeCancelled, elapsed, snap.CompletedAt, nil)
		logger.Info("sweep cancelled", "duration_ms", elapsed.Milliseconds())
		return snap, false
	}

	snap.Results = make(map[string]string, len(s.urls))
	for i, url := range s.urls {
		snap.Results[url] = labels[i]
	}

	if !s.store.Publish(snap) {
		s.metrics.ObserveSweep(metrics.OutcomeSuperseded, elapsed, snap.CompletedAt, snap.Results)
		logger.Warn("sweep superseded by a newer sweep", "duration_ms", elapsed.Milliseconds())
		return snap, false
	}

	s.metrics.ObserveSweep(metrics.OutcomePublished, elapsed, snap.CompletedAt, snap.Results)
	logger.Info("sweep published",
		"url_count", len(snap.Results),
		"unreachable", countLabel(snap.Results, checker.LabelUnreachable),
		"errors", countLabel(snap.Results, checker.LabelError),
		"duration_ms", elapsed.Milliseconds(),
	)

	if s.onPublish != nil {
		s.invokeOnPublishSafe(snap, logger)
	}
	return snap, true
}

// checkURL runs one check with the per-check timeout and converts failures
// into labels.
func (s *Scheduler) checkURL(ctx context.Context, logger *slog.Logger, url string) (label string) {
	start := time.Now()
	cancelled := false

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			// log full context server-side for debugging
			logger.Error("check panic",
				"correlation_id", correlationID,
				"url", url,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			label = checker.LabelError
		}
		if !cancelled {
			s.metrics.ObserveCheck(label, time.Since(start))
		}
	}()

	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	label, err := s.checker.Check(checkCtx, url)
	if err != nil {
		// the sweep was stopped; its results are discarded anyway
		if ctx.Err() != nil {
			cancelled = true
			logger.Debug("check cancelled", "url", url)
			return checker.LabelError
		}
		logger.Warn("check failed",
			"correlation_id", uuid.NewString(),
			"url", url,
			"error", err.Error(),
		)
		return checker.LabelError
	}

	logger.Debug("check completed",
		"url", url,
		"label", label,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return label
}

// invokeOnPublishSafe calls the publish hook with panic recovery.
// Panics are logged but do not propagate.
func (s *Scheduler) invokeOnPublishSafe(snap store.Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("publish callback panicked", "panic", r)
		}
	}()
	s.onPublish(snap)
}

func countLabel(results map[string]string, label string) int {
	n := 0
	for _, l := range results {
		if l == label {
			n++
		}
	}
	return n
}
