package action

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Router defaults.
const (
	DefaultQueueSize = 16
	DefaultTimeout   = 10 * time.Second
)

// Outcome is the result of routing one event.
type Outcome struct {
	Event    gesture.Event
	Action   Action
	Result   *Result
	Err      error
	Duration time.Duration
}

// RouterConfig configures a Router. Dispatcher is required.
type RouterConfig struct {
	Dispatcher Dispatcher
	QueueSize  int
	// Timeout bounds a single dispatch.
	Timeout time.Duration
	Logger  *slog.Logger
	// OnOutcome is called after every dispatch, from the Run goroutine.
	OnOutcome func(Outcome)
}

// Router queues events and dispatches them one at a time so that a slow
// player never stalls detection.
type Router struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *slog.Logger
	onOutcome  func(Outcome)

	queue   chan gesture.Event
	dropped atomic.Uint64
}

// NewRouter creates a Router. Call Run to start dispatching.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Router{
		dispatcher: cfg.Dispatcher,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger.With("component", "router"),
		onOutcome:  cfg.OnOutcome,
		queue:      make(chan gesture.Event, cfg.QueueSize),
	}
}

// Submit queues ev without blocking. It returns false and drops the event
// when the queue is full.
func (r *Router) Submit(ev gesture.Event) bool {
	select {
	case r.queue <- ev:
		return true
	default:
		r.dropped.Add(1)
		r.logger.Warn("dispatch queue full, dropping event", "label", ev.Label, "id", ev.ID)
		return false
	}
}

// Dropped returns how many events Submit has dropped.
func (r *Router) Dropped() uint64 {
	return r.dropped.Load()
}

// Run dispatches queued events until ctx is canceled.
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info("router started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("router stopped")
			return ctx.Err()
		case ev := <-r.queue:
			r.Handle(ctx, ev)
		}
	}
}

// Handle dispatches ev synchronously.
func (r *Router) Handle(ctx context.Context, ev gesture.Event) Outcome {
	start := time.Now()
	out := Outcome{Event: ev}

	a, err := ForLabel(ev.Label)
	if err != nil {
		out.Err = err
	} else {
		out.Action = a
		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		out.Result, out.Err = r.dispatcher.Dispatch(dctx, a)
		cancel()
	}
	out.Duration = time.Since(start)

	if out.Err != nil {
		r.logger.Error("dispatch failed", "label", ev.Label, "action", out.Action, "error", out.Err)
	} else {
		r.logger.Info("dispatched", "label", ev.Label, "action", out.Action, "took", out.Duration)
	}

	if r.onOutcome != nil {
		r.onOutcome(out)
	}
	return out
}
