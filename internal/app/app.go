// Package app wires a detection session to everything that consumes its
// gestures: the action router, the event history, live websocket clients and
// the MQTT publisher.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// Broadcaster pushes events to live viewers.
type Broadcaster interface {
	Broadcast(ev gesture.Event)
}

// Sink accepts events without blocking and reports whether it took them.
type Sink interface {
	Submit(ev gesture.Event) bool
}

// Config holds the application components. Session and Dispatcher are
// required; the rest are optional.
type Config struct {
	Session    *session.Session
	Dispatcher action.Dispatcher
	Store      *store.Store
	Hub        Broadcaster
	Publisher  Sink

	QueueSize       int
	DispatchTimeout time.Duration
	// HistoryQueueSize bounds event history writes waiting for the store.
	HistoryQueueSize int
	Logger           *slog.Logger
}

// App routes every confirmed gesture of one session.
type App struct {
	session   *session.Session
	store     *store.Store
	hub       Broadcaster
	publisher Sink
	router    *action.Router
	history   *history
	logger    *slog.Logger

	mu        sync.RWMutex
	listeners []func(gesture.Event)
}

// New creates an App and subscribes it to the session's events.
func New(config Config) (*App, error) {
	if config.Session == nil {
		return nil, errors.New("app: session is required")
	}
	if config.Dispatcher == nil {
		return nil, errors.New("app: dispatcher is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	a := &App{
		session:   config.Session,
		store:     config.Store,
		hub:       config.Hub,
		publisher: config.Publisher,
		logger:    config.Logger.With("component", "app"),
	}
	if config.Store != nil {
		a.history = newHistory(config.Store, config.HistoryQueueSize, a.logger)
	}
	a.router = action.NewRouter(action.RouterConfig{
		Dispatcher: config.Dispatcher,
		QueueSize:  config.QueueSize,
		Timeout:    config.DispatchTimeout,
		Logger:     config.Logger,
		OnOutcome:  a.recordOutcome,
	})

	config.Session.OnEvent(a.handleEvent)
	return a, nil
}

// LoadSettings applies cooldown and swipe threshold overrides saved in the
// store. Missing or malformed values keep the session's current setting.
func (a *App) LoadSettings() error {
	if a.store == nil {
		return nil
	}

	current := a.session.Settings()
	settings := a.store.Settings()

	cooldown, ok, err := settings.Duration(store.SettingCooldown)
	if err != nil {
		return fmt.Errorf("load cooldown: %w", err)
	}
	if ok {
		current.Cooldown = cooldown
	}

	threshold, ok, err := settings.Float(store.SettingSwipeThreshold)
	if err != nil {
		return fmt.Errorf("load swipe threshold: %w", err)
	}
	if ok {
		current.SwipeThreshold = threshold
	}

	if err := a.session.Configure(current.Cooldown, current.SwipeThreshold); err != nil {
		a.logger.Warn("ignoring stored settings", "error", err)
		return nil
	}
	a.logger.Info("settings loaded", "cooldown", current.Cooldown, "swipe_threshold", current.SwipeThreshold)
	return nil
}

// Run dispatches gestures and records their history until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	if a.history != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.history.Run(ctx)
		}()
	}

	err := a.router.Run(ctx)
	wg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// OnGesture registers fn to be called for every confirmed gesture. fn runs
// on the detection goroutine and must not block.
func (a *App) OnGesture(fn func(gesture.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SetEnabled starts or stops detection.
func (a *App) SetEnabled(enabled bool) error {
	if enabled {
		return a.session.Start()
	}
	return a.session.Stop()
}

// IsEnabled reports whether detection is running.
func (a *App) IsEnabled() bool {
	return a.session.Running()
}

// Router returns the action router.
func (a *App) Router() *action.Router {
	return a.router
}

// handleEvent runs on the detection goroutine, so every step hands off
// without blocking.
func (a *App) handleEvent(ev gesture.Event) {
	if a.history != nil {
		a.history.created(ev)
	}

	if a.hub != nil {
		a.hub.Broadcast(ev)
	}
	if a.publisher != nil {
		a.publisher.Submit(ev)
	}

	if !a.router.Submit(ev) && a.history != nil {
		a.history.dropped(ev)
	}

	a.mu.RLock()
	listeners := a.listeners
	a.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (a *App) recordOutcome(out action.Outcome) {
	if a.history != nil {
		a.history.outcome(out)
	}
}
