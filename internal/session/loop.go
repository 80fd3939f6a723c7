package session

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// run is the detection worker. It checks for stop only between frames, so a
// frame in progress always completes.
func (s *Session) run(cycle *gesture.Cycle, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.processFrame(cycle)
		}
	}
}

// processFrame runs one detection cycle. Camera failures skip the frame;
// detector failures count as a frame without a hand.
func (s *Session) processFrame(cycle *gesture.Cycle) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		s.logger.Debug("frame skipped", "error", err)
		return
	}

	if s.frames != nil {
		if err := s.frames.PublishMat(frame); err != nil {
			s.logger.Debug("preview frame not published", "error", err)
		}
	}

	hands, err := s.detector.Detect(frame)
	frame.Close()
	if err != nil {
		s.logger.Debug("landmark extraction failed", "error", err)
		hands = nil
	}

	ev, ok := cycle.Process(hands, s.clock.Now())
	if !ok {
		return
	}

	s.latest.Store(ev)
	s.logger.Info("gesture detected", "label", ev.Label, "id", ev.ID, "hands", len(hands))
	s.notify(ev)
}

func (s *Session) notify(ev gesture.Event) {
	s.listenersMu.RLock()
	listeners := make([]func(gesture.Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

