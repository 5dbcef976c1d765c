package component

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/reconcile"
)

// maxFlushPasses bounds how often Flush picks up hosts queued by renders
// of the same flush.
const maxFlushPasses = 16

// RenderHook is called after every render with its result.
type RenderHook func(h *Host, err error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for failed flushes of the worker.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithRegistry registers the scheduler's metrics with reg. Without it the
// metrics are kept in a private registry.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(s *Scheduler) {
		s.registry = reg
	}
}

// WithNamespace sets the metrics namespace (default: "bardfile").
func WithNamespace(namespace string) Option {
	return func(s *Scheduler) {
		s.namespace = namespace
	}
}

// Scheduler renders queued hosts on a single goroutine, the equivalent of
// an animation frame callback. Renders never interleave, whether they run
// on the worker or through Flush.
type Scheduler struct {
	eng       *reconcile.Engine
	logger    *slog.Logger
	registry  prometheus.Registerer
	namespace string
	metrics   *metrics

	mu     sync.Mutex
	queue  []*Host
	hooks  []RenderHook
	cancel context.CancelFunc
	done   chan struct{}

	wake     chan struct{}
	renderMu sync.Mutex
}

// NewScheduler creates a scheduler rendering with eng. Call Start to render
// in the background, or Flush to render on the calling goroutine.
func NewScheduler(eng *reconcile.Engine, opts ...Option) *Scheduler {
	s := &Scheduler{
		eng:       eng,
		namespace: "bardfile",
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry, s.namespace)
	return s
}

// Engine returns the engine hosts are rendered with.
func (s *Scheduler) Engine() *reconcile.Engine { return s.eng }

// Attach binds c to el. The host renders nothing until it is connected.
func (s *Scheduler) Attach(el dom.Element, c Component, opts ...HostOption) *Host {
	h := &Host{
		comp:  c,
		ref:   reconcile.NewHostRef(el, false),
		sched: s,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnRender adds a hook called after every render.
func (s *Scheduler) OnRender(hook RenderHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Start launches the worker goroutine. It stops when ctx is done or Close
// is called. Starting twice does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			if err := s.Flush(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("flush failed", "error", err)
			}
		}
	}
}

// Close stops the worker and waits for it to exit. Pending renders are
// dropped.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Pending returns the number of queued hosts.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) enqueue(h *Host) {
	s.mu.Lock()
	if h.queued || !h.connected {
		s.mu.Unlock()
		return
	}
	h.queued = true
	s.queue = append(s.queue, h)
	s.metrics.queueDepth.Set(float64(len(s.queue)))
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) dequeueLocked(h *Host) {
	if !h.queued {
		return
	}
	h.queued = false
	s.queue = slices.DeleteFunc(s.queue, func(x *Host) bool { return x == h })
	s.metrics.queueDepth.Set(float64(len(s.queue)))
}

// Do runs fn while no render is in progress. Use it to touch the document or
// component state from other goroutines. fn must not call Flush or Do, and
// render hooks must not call Do.
func (s *Scheduler) Do(fn func()) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	fn()
}

// Flush renders every queued host on the calling goroutine, including
// hosts queued by those renders. It returns the joined render errors.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	var errs []error
	for pass := 0; pass < maxFlushPasses; pass++ {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		for _, h := range batch {
			h.queued = false
		}
		hooks := s.hooks
		s.metrics.queueDepth.Set(0)
		s.mu.Unlock()

		if len(batch) == 0 {
			break
		}
		for i, h := range batch {
			if err := ctx.Err(); err != nil {
				s.requeue(batch[i:])
				return errors.Join(append(errs, err)...)
			}
			err := s.render(ctx, h)
			if err != nil {
				errs = append(errs, err)
			}
			for _, hook := range hooks {
				hook(h, err)
			}
		}
	}
	return errors.Join(errs...)
}

// requeue puts hosts a canceled Flush did not reach back at the front of
// the queue.
func (s *Scheduler) requeue(hosts []*Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keep []*Host
	for _, h := range hosts {
		if h.connected && !h.queued {
			h.queued = true
			keep = append(keep, h)
		}
	}
	s.queue = append(keep, s.queue...)
	s.metrics.queueDepth.Set(float64(len(s.queue)))
}

func (s *Scheduler) render(ctx context.Context, h *Host) error {
	tag := strings.ToLower(h.Element().TagName())
	start := time.Now()
	err := h.render(ctx)
	s.metrics.renderDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.rendersTotal.WithLabelValues(tag, status).Inc()
	return err
}
