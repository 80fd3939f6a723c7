// Package api provides the HTTP handlers of the mudra control surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/spotify"
)

// Session is the part of a detection session the handlers drive.
type Session interface {
	Start() error
	Stop() error
	Status() session.Status
	Latest() (gesture.Event, bool)
	Configure(cooldown time.Duration, swipeThreshold float64) error
	Settings() gesture.CycleConfig
}

// Player reports what the music player is doing.
type Player interface {
	Authenticated(ctx context.Context) bool
	CurrentTrack(ctx context.Context) (*spotify.Track, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
