package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ayusman/mudra/internal/action"
)

// fakeAPI records requests and serves canned responses keyed by
// "METHOD /path".
type fakeAPI struct {
	mu        sync.Mutex
	requests  []string
	queries   []string
	responses map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{responses: make(map[string]func(w http.ResponseWriter))}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, NewClient(StaticToken("test-token"), WithBaseURL(srv.URL+"/v1/"))
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.queries = append(f.queries, r.URL.RawQuery)
	respond := f.responses[key]
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"status":401,"message":"Invalid access token"}}`)
		return
	}
	if respond == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respond(w)
}

func (f *fakeAPI) on(key string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = func(w http.ResponseWriter) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func (f *fakeAPI) last() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return "", ""
	}
	n := len(f.requests) - 1
	return f.requests[n], f.queries[n]
}

func TestClient_Dispatch(t *testing.T) {
	tests := []struct {
		action action.Action
		want   string
	}{
		{action.Resume, "PUT /v1/me/player/play"},
		{action.Pause, "PUT /v1/me/player/pause"},
		{action.Next, "POST /v1/me/player/next"},
		{action.Previous, "POST /v1/me/player/previous"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			api, c := newFakeAPI(t)

			res, err := c.Dispatch(context.Background(), tt.action)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if res.Action != tt.action {
				t.Errorf("Result.Action = %s", res.Action)
			}
			if got, _ := api.last(); got != tt.want {
				t.Errorf("request = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_Volume(t *testing.T) {
	tests := []struct {
		name    string
		action  action.Action
		player  string
		wantVol string
	}{
		{"up", action.Increase, `{"device":{"id":"d","volume_percent":40}}`, "volume_percent=50"},
		{"down", action.Decrease, `{"device":{"id":"d","volume_percent":40}}`, "volume_percent=30"},
		{"up clamps at 100", action.Increase, `{"device":{"id":"d","volume_percent":95}}`, "volume_percent=100"},
		{"down clamps at 0", action.Decrease, `{"device":{"id":"d","volume_percent":5}}`, "volume_percent=0"},
		{"muted device steps from zero", action.Increase, `{"device":{"id":"d","volume_percent":0}}`, "volume_percent=10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, c := newFakeAPI(t)
			api.on("GET /v1/me/player", http.StatusOK, tt.player)

			if _, err := c.Dispatch(context.Background(), tt.action); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}

			req, query := api.last()
			if req != "PUT /v1/me/player/volume" {
				t.Errorf("last request = %q", req)
			}
			if query != tt.wantVol {
				t.Errorf("query = %q, want %q", query, tt.wantVol)
			}
		})
	}
}

func TestClient_Volume_NoActiveDevice(t *testing.T) {
	t.Run("no playback", func(t *testing.T) {
		_, c := newFakeAPI(t)
		if _, err := c.VolumeUp(context.Background()); !errors.Is(err, ErrNoActiveDevice) {
			t.Errorf("error = %v, want ErrNoActiveDevice", err)
		}
	})

	t.Run("no device", func(t *testing.T) {
		api, c := newFakeAPI(t)
		api.on("GET /v1/me/player", http.StatusOK, `{"is_playing":false}`)
		if _, err := c.VolumeDown(context.Background()); !errors.Is(err, ErrNoActiveDevice) {
			t.Errorf("error = %v, want ErrNoActiveDevice", err)
		}
	})
}

func TestClient_SetVolume(t *testing.T) {
	api, c := newFakeAPI(t)

	got, err := c.SetVolume(context.Background(), 150)
	if err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	if got != 100 {
		t.Errorf("SetVolume() = %d, want 100", got)
	}
	if _, q := api.last(); q != "volume_percent=100" {
		t.Errorf("query = %q", q)
	}
}

func TestClient_CurrentTrack(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /v1/me/player", http.StatusOK, `{
		"is_playing": true,
		"progress_ms": 1200,
		"device": {"id": "d", "volume_percent": 30},
		"item": {
			"name": "Song",
			"duration_ms": 180000,
			"artists": [{"name": "A"}, {"name": "B"}],
			"album": {"name": "Album"}
		}
	}`)

	track, err := c.CurrentTrack(context.Background())
	if err != nil {
		t.Fatalf("CurrentTrack() error = %v", err)
	}

	want := Track{Name: "Song", Artist: "A, B", Album: "Album", IsPlaying: true, ProgressMs: 1200, DurationMs: 180000}
	if *track != want {
		t.Errorf("CurrentTrack() = %+v, want %+v", *track, want)
	}
}

func TestClient_CurrentTrack_NothingPlaying(t *testing.T) {
	_, c := newFakeAPI(t)

	if _, err := c.CurrentTrack(context.Background()); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("error = %v, want ErrNothingPlaying", err)
	}
}

func TestClient_Errors(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		c := NewClient(StaticToken(""))
		if c.Authenticated(context.Background()) {
			t.Error("empty token should not be authenticated")
		}
		if err := c.Play(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("nil token source", func(t *testing.T) {
		c := NewClient(nil)
		if err := c.Pause(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(&fakeAPI{responses: map[string]func(http.ResponseWriter){}})
		defer srv.Close()

		c := NewClient(StaticToken("expired"), WithBaseURL(srv.URL))
		err := c.Next(context.Background())
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "Invalid access token" {
			t.Errorf("expected APIError with message, got %v", err)
		}
	})

	t.Run("no active device", func(t *testing.T) {
		api, c := newFakeAPI(t)
		api.on("PUT /v1/me/player/play", http.StatusNotFound,
			`{"error":{"status":404,"message":"Player command failed: No active device found","reason":"NO_ACTIVE_DEVICE"}}`)

		if _, err := c.Dispatch(context.Background(), action.Resume); !errors.Is(err, ErrNoActiveDevice) {
			t.Errorf("error = %v, want ErrNoActiveDevice", err)
		}
	})

	t.Run("premium required", func(t *testing.T) {
		api, c := newFakeAPI(t)
		api.on("POST /v1/me/player/next", http.StatusForbidden,
			`{"error":{"status":403,"message":"Player command failed: Premium required","reason":"PREMIUM_REQUIRED"}}`)

		err := c.Next(context.Background())
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
			t.Errorf("expected a 403 APIError, got %v", err)
		}
		if errors.Is(err, ErrNoActiveDevice) || errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("403 mapped to a sentinel: %v", err)
		}
	})

	t.Run("unsupported action", func(t *testing.T) {
		_, c := newFakeAPI(t)
		if _, err := c.Dispatch(context.Background(), action.Action("shuffle")); err == nil {
			t.Error("expected error for unsupported action")
		}
	})
}

func TestClient_Options(t *testing.T) {
	c := NewClient(StaticToken("x"), WithVolumeStep(25), WithVolumeStep(0), WithHTTPClient(http.DefaultClient))
	if c.volumeStep != 25 {
		t.Errorf("volumeStep = %d, want 25", c.volumeStep)
	}
	if c.httpClient != http.DefaultClient {
		t.Error("WithHTTPClient not applied")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if !c.Authenticated(context.Background()) {
		t.Error("static token should be authenticated")
	}

	c = NewClient(StaticToken("x"), WithBaseURL("http://localhost:9000/v1"))
	if c.baseURL != "http://localhost:9000/v1/" {
		t.Errorf("baseURL = %q, want a trailing slash", c.baseURL)
	}
}
