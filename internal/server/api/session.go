package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/session"
)

// SessionHandler serves /api/session, /api/session/start and /api/session/stop.
type SessionHandler struct {
	session Session
	logger  *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(s Session, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{session: s, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.session.Status())
	case "start":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.start(w)
	case "stop":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) start(w http.ResponseWriter) {
	err := h.session.Start()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.session.Status())
	case errors.Is(err, session.ErrStillStopping), errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to start session", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type stopResponse struct {
	session.Status
	Warning string `json:"warning,omitempty"`
}

func (h *SessionHandler) stop(w http.ResponseWriter) {
	err := h.session.Stop()
	resp := stopResponse{Status: h.session.Status()}

	// The camera is released even when the worker is slow to exit, so a
	// timeout is reported but the session counts as stopped.
	if err != nil {
		if !errors.Is(err, session.ErrStopTimeout) {
			h.logger.Error("failed to stop session", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GestureHandler serves GET /api/gesture, the most recent confirmed gesture.
type GestureHandler struct {
	session Session
}

// NewGestureHandler creates a GestureHandler.
func NewGestureHandler(s Session) *GestureHandler {
	return &GestureHandler{session: s}
}

type gestureResponse struct {
	Gesture   *string    `json:"gesture"`
	ID        string     `json:"id,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ev, ok := h.session.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, gestureResponse{})
		return
	}

	label := string(ev.Label)
	writeJSON(w, http.StatusOK, gestureResponse{
		Gesture:   &label,
		ID:        ev.ID,
		Timestamp: &ev.Timestamp,
	})
}
