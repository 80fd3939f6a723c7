package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayusman/mudra/internal/spotify"
)

// TrackHandler serves GET /api/track.
type TrackHandler struct {
	player Player
	logger *slog.Logger
}

// NewTrackHandler creates a TrackHandler.
func NewTrackHandler(p Player, logger *slog.Logger) *TrackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackHandler{player: p, logger: logger}
}

func (h *TrackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	track, err := h.player.CurrentTrack(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, track)
	case errors.Is(err, spotify.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, spotify.ErrNothingPlaying), errors.Is(err, spotify.ErrNoActiveDevice):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Warn("failed to read current track", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// AuthStatusHandler serves GET /api/auth-status: which dispatcher is in use
// and, for Spotify, whether a usable token is configured.
type AuthStatusHandler struct {
	dispatcher string
	player     Player
}

// NewAuthStatusHandler creates an AuthStatusHandler. p is nil when the
// dispatcher does not talk to a player API.
func NewAuthStatusHandler(dispatcher string, p Player) *AuthStatusHandler {
	return &AuthStatusHandler{dispatcher: dispatcher, player: p}
}

type authStatusResponse struct {
	Dispatcher    string `json:"dispatcher"`
	Authenticated bool   `json:"authenticated"`
}

func (h *AuthStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := authStatusResponse{Dispatcher: h.dispatcher, Authenticated: true}
	if h.player != nil {
		resp.Authenticated = h.player.Authenticated(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}
