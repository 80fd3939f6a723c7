package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler serves GET and PUT /api/settings. Changes are validated by
// the session, persisted when a store is configured and take effect at the
// next session start.
type SettingsHandler struct {
	session Session
	store   *store.Store
	logger  *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler. s may be nil, in which case
// changes last until the process exits.
func NewSettingsHandler(sess Session, s *store.Store, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{session: sess, store: s, logger: logger}
}

type settingsResponse struct {
	Cooldown       string  `json:"cooldown"`
	SwipeThreshold float64 `json:"swipe_threshold"`
}

// updateSettingsRequest fields are optional; omitted ones keep their value.
type updateSettingsRequest struct {
	Cooldown       *string  `json:"cooldown"`
	SwipeThreshold *float64 `json:"swipe_threshold"`
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter) {
	cfg := h.session.Settings()
	writeJSON(w, http.StatusOK, settingsResponse{
		Cooldown:       cfg.Cooldown.String(),
		SwipeThreshold: cfg.SwipeThreshold,
	})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := h.session.Settings()
	if req.Cooldown != nil {
		d, err := time.ParseDuration(*req.Cooldown)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cooldown must be a duration such as 1s or 750ms")
			return
		}
		cfg.Cooldown = d
	}
	if req.SwipeThreshold != nil {
		cfg.SwipeThreshold = *req.SwipeThreshold
	}

	if err := h.session.Configure(cfg.Cooldown, cfg.SwipeThreshold); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		settings := h.store.Settings()
		if err := settings.Set(store.SettingCooldown, cfg.Cooldown.String()); err != nil {
			h.logger.Error("failed to persist cooldown", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		threshold := strconv.FormatFloat(cfg.SwipeThreshold, 'g', -1, 64)
		if err := settings.Set(store.SettingSwipeThreshold, threshold); err != nil {
			h.logger.Error("failed to persist swipe threshold", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	h.logger.Info("settings updated", "cooldown", cfg.Cooldown, "swipe_threshold", cfg.SwipeThreshold)
	h.get(w)
}
