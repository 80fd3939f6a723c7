package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/spotify"
)

func TestTrackHandler(t *testing.T) {
	track := &spotify.Track{Name: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", IsPlaying: true}

	tests := []struct {
		name   string
		player *fakePlayer
		want   int
	}{
		{"playing", &fakePlayer{track: track}, http.StatusOK},
		{"not authenticated", &fakePlayer{err: spotify.ErrNotAuthenticated}, http.StatusUnauthorized},
		{"nothing playing", &fakePlayer{err: spotify.ErrNothingPlaying}, http.StatusNotFound},
		{"no device", &fakePlayer{err: spotify.ErrNoActiveDevice}, http.StatusNotFound},
		{"upstream failure", &fakePlayer{err: errors.New("connection refused")}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTrackHandler(tt.player, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/track", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
			if tt.want != http.StatusOK {
				var resp errorResponse
				json.NewDecoder(rec.Body).Decode(&resp)
				if resp.Error == "" {
					t.Error("expected error message")
				}
				return
			}

			var got spotify.Track
			json.NewDecoder(rec.Body).Decode(&got)
			if got != *track {
				t.Errorf("got %+v, want %+v", got, *track)
			}
		})
	}
}

func TestAuthStatusHandler(t *testing.T) {
	tests := []struct {
		name       string
		dispatcher string
		player     Player
		want       bool
	}{
		{"spotify with token", "spotify", &fakePlayer{authenticated: true}, true},
		{"spotify without token", "spotify", &fakePlayer{}, false},
		{"local dispatcher", "plugin", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthStatusHandler(tt.dispatcher, tt.player)

			req := httptest.NewRequest(http.MethodGet, "/api/auth-status", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			var resp authStatusResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Dispatcher != tt.dispatcher || resp.Authenticated != tt.want {
				t.Errorf("got %+v", resp)
			}
		})
	}
}
