package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultHistoryQueueSize bounds history writes waiting for the database.
const DefaultHistoryQueueSize = 64

type historyOp int

const (
	opCreate historyOp = iota
	opDropped
	opOutcome
)

type historyWrite struct {
	op      historyOp
	event   gesture.Event
	outcome action.Outcome
}

// history applies event history writes from a single goroutine. All writes
// for one event go through the same queue, so an outcome never lands before
// its row exists.
type history struct {
	events *store.EventRepository
	queue  chan historyWrite
	logger *slog.Logger

	done     chan struct{}
	doneOnce sync.Once
}

func newHistory(s *store.Store, size int, logger *slog.Logger) *history {
	if size <= 0 {
		size = DefaultHistoryQueueSize
	}
	return &history{
		events: s.Events(),
		queue:  make(chan historyWrite, size),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// created and dropped are called from the detection goroutine and never wait.
func (h *history) created(ev gesture.Event) {
	h.offer(historyWrite{op: opCreate, event: ev})
}

func (h *history) dropped(ev gesture.Event) {
	h.offer(historyWrite{op: opDropped, event: ev})
}

func (h *history) offer(w historyWrite) {
	select {
	case h.queue <- w:
	default:
		h.logger.Warn("history queue full, event not recorded", "event_id", w.event.ID)
	}
}

// outcome waits for room in the queue; it runs on the router goroutine.
func (h *history) outcome(out action.Outcome) {
	select {
	case h.queue <- historyWrite{op: opOutcome, event: out.Event, outcome: out}:
	case <-h.done:
	}
}

// Run applies writes until ctx is cancelled, then flushes what is queued.
func (h *history) Run(ctx context.Context) {
	defer h.doneOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case w := <-h.queue:
					h.apply(w)
				default:
					return
				}
			}
		case w := <-h.queue:
			h.apply(w)
		}
	}
}

func (h *history) apply(w historyWrite) {
	var err error
	switch w.op {
	case opCreate:
		err = h.events.Create(&store.Event{
			ID:         w.event.ID,
			Label:      string(w.event.Label),
			DetectedAt: w.event.Timestamp,
		})
	case opDropped:
		err = h.events.MarkDropped(w.event.ID)
	case opOutcome:
		err = h.events.RecordOutcome(w.event.ID, store.Outcome{
			Action:   string(w.outcome.Action),
			Err:      w.outcome.Err,
			Duration: w.outcome.Duration,
			At:       time.Now(),
		})
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("failed to record event", "event_id", w.event.ID, "error", err)
	}
}
