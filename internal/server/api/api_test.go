package api

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/spotify"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a Store in a temporary directory.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// fakeSession records calls and returns canned errors.
type fakeSession struct {
	mu       sync.Mutex
	running  bool
	config   gesture.CycleConfig
	latest   *gesture.Event
	startErr error
	stopErr  error
	starts   int
	stops    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{config: gesture.DefaultCycleConfig()}
}

func (f *fakeSession) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
	return f.stopErr
}

func (f *fakeSession) Status() session.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return session.Status{
		Running:        f.running,
		Cooldown:       f.config.Cooldown.String(),
		SwipeThreshold: f.config.SwipeThreshold,
		FPS:            session.DefaultFPS,
		Latest:         f.latest,
	}
}

func (f *fakeSession) Latest() (gesture.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return gesture.Event{}, false
	}
	return *f.latest, true
}

func (f *fakeSession) Configure(cooldown time.Duration, threshold float64) error {
	if cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", cooldown)
	}
	if threshold <= 0 || threshold >= 1 {
		return fmt.Errorf("swipe threshold must be in (0, 1), got %g", threshold)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = gesture.CycleConfig{Cooldown: cooldown, SwipeThreshold: threshold}
	return nil
}

func (f *fakeSession) Settings() gesture.CycleConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

type fakePlayer struct {
	authenticated bool
	track         *spotify.Track
	err           error
}

func (p *fakePlayer) Authenticated(context.Context) bool {
	return p.authenticated
}

func (p *fakePlayer) CurrentTrack(context.Context) (*spotify.Track, error) {
	return p.track, p.err
}
