package gesture

import (
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// CycleConfig holds the tunables of a detection cycle.
type CycleConfig struct {
	Cooldown       time.Duration
	SwipeThreshold float64
}

// DefaultCycleConfig returns the default cooldown and swipe threshold.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		Cooldown:       DefaultCooldown,
		SwipeThreshold: DefaultSwipeThreshold,
	}
}

// Cycle runs classification and debouncing for one frame at a time. It owns
// the swipe and debounce state of a single detection session and is not safe
// for concurrent use.
type Cycle struct {
	config     CycleConfig
	classifier *Classifier
	gate       *DebounceGate
}

// NewCycle creates a Cycle. Zero values in config fall back to the defaults.
func NewCycle(config CycleConfig) *Cycle {
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultCooldown
	}
	if config.SwipeThreshold <= 0 {
		config.SwipeThreshold = DefaultSwipeThreshold
	}
	return &Cycle{
		config:     config,
		classifier: NewClassifier(config.SwipeThreshold),
		gate:       NewDebounceGate(),
	}
}

// Process classifies the hands detected in one frame and returns the
// confirmed event, if any. Only the first hand is considered; an empty slice
// means no hand.
func (c *Cycle) Process(hands []detector.HandLandmarks, now time.Time) (Event, bool) {
	var hand *detector.HandLandmarks
	if len(hands) > 0 {
		hand = &hands[0]
	}

	candidate := c.classifier.Classify(hand)
	return c.gate.Gate(candidate, now, c.config.Cooldown)
}

// Reset clears swipe and debounce state.
func (c *Cycle) Reset() {
	c.classifier.Reset()
	c.gate.Reset()
}

// Config returns the cycle configuration.
func (c *Cycle) Config() CycleConfig {
	return c.config
}

// Classifier exposes the cycle's classifier.
func (c *Cycle) Classifier() *Classifier {
	return c.classifier
}

// LatestCell holds the most recent event. The detection worker replaces the
// whole value and readers get a snapshot, so a reader never sees a partly
// written event and never blocks the writer.
type LatestCell struct {
	p atomic.Pointer[Event]
}

// Store publishes ev as the latest event.
func (c *LatestCell) Store(ev Event) {
	c.p.Store(&ev)
}

// Load returns the latest event, or false if none has been stored.
func (c *LatestCell) Load() (Event, bool) {
	ev := c.p.Load()
	if ev == nil {
		return Event{}, false
	}
	return *ev, true
}
