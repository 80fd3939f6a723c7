// Package action maps confirmed gestures to music-player actions and
// dispatches them off the detection goroutine.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// Action is a music-player command.
type Action string

const (
	Resume   Action = "resume"
	Pause    Action = "pause"
	Previous Action = "previous"
	Next     Action = "next"
	Increase Action = "increase"
	Decrease Action = "decrease"
)

// ErrUnknownGesture is returned for labels that have no action.
var ErrUnknownGesture = errors.New("unknown gesture")

// ForLabel returns the action bound to label.
func ForLabel(label gesture.Label) (Action, error) {
	switch label {
	case gesture.LabelPlay:
		return Resume, nil
	case gesture.LabelPause:
		return Pause, nil
	case gesture.LabelSwipeLeft:
		return Previous, nil
	case gesture.LabelSwipeRight:
		return Next, nil
	case gesture.LabelVolumeUp:
		return Increase, nil
	case gesture.LabelVolumeDown:
		return Decrease, nil
	default:
		return "", fmt.Errorf("%q: %w", label, ErrUnknownGesture)
	}
}

// Result describes a completed dispatch.
type Result struct {
	Action Action `json:"action"`
	Detail string `json:"detail,omitempty"`
}

// Dispatcher performs actions against a player.
type Dispatcher interface {
	Dispatch(ctx context.Context, a Action) (*Result, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, a Action) (*Result, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, a Action) (*Result, error) {
	return f(ctx, a)
}
