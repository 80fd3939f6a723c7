// Package session runs the gesture detection loop: it reads frames from a
// camera, extracts hand landmarks, classifies and debounces them, and hands
// confirmed events to registered listeners.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Defaults for Config fields left zero.
const (
	DefaultFPS         = 15
	DefaultStopTimeout = 2 * time.Second
)

var (
	// ErrStopTimeout is returned by Stop when the worker did not exit in time.
	ErrStopTimeout = errors.New("detection worker did not stop in time")
	// ErrStillStopping is returned by Start while a worker from an earlier
	// timed-out Stop is still running.
	ErrStillStopping = errors.New("previous detection worker is still stopping")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("session is closed")
)

// Config configures a Session. Camera and Detector are required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Frames, when set, receives every captured frame for the preview stream.
	Frames *capture.FrameBuffer

	Cooldown       time.Duration
	SwipeThreshold float64
	FPS            int
	StopTimeout    time.Duration

	Clock  gesture.Clock
	Logger *slog.Logger
}

// Status is a snapshot of a session.
type Status struct {
	Running        bool           `json:"running"`
	Cooldown       string         `json:"cooldown"`
	SwipeThreshold float64        `json:"swipe_threshold"`
	FPS            int            `json:"fps"`
	Latest         *gesture.Event `json:"latest,omitempty"`
}

// Session owns one detection loop. Start and Stop may be called from any
// goroutine; at most one worker runs at a time.
type Session struct {
	camera   capture.Camera
	detector detector.Detector
	frames   *capture.FrameBuffer
	clock    gesture.Clock
	logger   *slog.Logger

	mu          sync.Mutex
	cycleConfig gesture.CycleConfig
	fps         int
	stopTimeout time.Duration
	running     bool
	closed      bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	// lingering is the done channel of a worker that outlived Stop.
	lingering chan struct{}

	latest gesture.LatestCell

	listenersMu sync.RWMutex
	listeners   []func(gesture.Event)
}

// New creates a stopped Session.
func New(cfg Config) (*Session, error) {
	if cfg.Camera == nil {
		return nil, errors.New("session: camera is required")
	}
	if cfg.Detector == nil {
		return nil, errors.New("session: detector is required")
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = gesture.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cycle := gesture.NewCycle(gesture.CycleConfig{
		Cooldown:       cfg.Cooldown,
		SwipeThreshold: cfg.SwipeThreshold,
	})

	return &Session{
		camera:      cfg.Camera,
		detector:    cfg.Detector,
		frames:      cfg.Frames,
		clock:       cfg.Clock,
		logger:      cfg.Logger.With("component", "session"),
		cycleConfig: cycle.Config(),
		fps:         cfg.FPS,
		stopTimeout: cfg.StopTimeout,
	}, nil
}

// OnEvent registers fn to be called with every confirmed event. Listeners run
// on the detection goroutine and must not block.
func (s *Session) OnEvent(fn func(gesture.Event)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Configure changes the cooldown and swipe threshold. The values take effect
// at the next Start.
func (s *Session) Configure(cooldown time.Duration, swipeThreshold float64) error {
	if cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", cooldown)
	}
	if swipeThreshold <= 0 || swipeThreshold >= 1 {
		return fmt.Errorf("swipe threshold must be in (0, 1), got %g", swipeThreshold)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleConfig = gesture.CycleConfig{Cooldown: cooldown, SwipeThreshold: swipeThreshold}
	return nil
}

// Start opens the camera and launches the detection worker with fresh swipe
// and debounce state. Starting a running session is a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.running {
		return nil
	}
	if s.lingering != nil {
		select {
		case <-s.lingering:
			s.lingering = nil
		default:
			return ErrStillStopping
		}
	}

	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.camera.SetFPS(s.fps)

	cycle := gesture.NewCycle(s.cycleConfig)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(cycle, s.stopCh, s.doneCh)

	s.logger.Info("detection started",
		"fps", s.fps,
		"cooldown", s.cycleConfig.Cooldown,
		"swipe_threshold", s.cycleConfig.SwipeThreshold)
	return nil
}

// Stop signals the worker, waits up to the stop timeout for it to finish and
// releases the camera. Stopping a stopped session is a no-op. If the worker
// does not finish in time the camera is still released and ErrStopTimeout is
// returned; Start fails with ErrStillStopping until that worker exits.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Session) stopLocked() error {
	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false

	var stopErr error
	timer := time.NewTimer(s.stopTimeout)
	select {
	case <-s.doneCh:
		timer.Stop()
	case <-timer.C:
		s.lingering = s.doneCh
		stopErr = ErrStopTimeout
		s.logger.Warn("detection worker did not stop in time", "timeout", s.stopTimeout)
	}

	if err := s.camera.Close(); err != nil {
		s.logger.Error("failed to close camera", "error", err)
		stopErr = errors.Join(stopErr, fmt.Errorf("close camera: %w", err))
	}

	s.logger.Info("detection stopped")
	return stopErr
}

// Close stops the session and releases the landmark source. A closed session
// cannot be started again. If a worker is still busy after the stop timeout
// the landmark source is left open and ErrStopTimeout is returned.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stopErr := s.stopLocked()
	lingering := s.lingering
	timeout := s.stopTimeout
	s.mu.Unlock()

	// The worker may be inside Detect, which can hold the detector's lock.
	if lingering != nil {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-lingering:
		case <-timer.C:
			s.logger.Warn("detection worker still busy, leaving landmark source open")
			if stopErr == nil {
				stopErr = ErrStopTimeout
			}
			return stopErr
		}
	}

	if err := s.detector.Close(); err != nil {
		return errors.Join(stopErr, fmt.Errorf("close detector: %w", err))
	}
	return stopErr
}

// Running reports whether a worker has been started and not stopped.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Latest returns the most recent confirmed event.
func (s *Session) Latest() (gesture.Event, bool) {
	return s.latest.Load()
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	st := Status{
		Running:        s.running,
		Cooldown:       s.cycleConfig.Cooldown.String(),
		SwipeThreshold: s.cycleConfig.SwipeThreshold,
		FPS:            s.fps,
	}
	s.mu.Unlock()

	if ev, ok := s.latest.Load(); ok {
		st.Latest = &ev
	}
	return st
}

// Settings returns the cooldown and threshold the next Start will use.
func (s *Session) Settings() gesture.CycleConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycleConfig
}
