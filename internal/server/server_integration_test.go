package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// Setup
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	frames := capture.NewFrameBuffer()
	sess, err := session.New(session.Config{
		Camera:   cam,
		Detector: det,
		Frames:   frames,
		FPS:      100,
	})
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	defer sess.Close()

	hub := NewEventHub(nil)
	sess.OnEvent(func(ev gesture.Event) {
		s.Events().Create(&store.Event{ID: ev.ID, Label: string(ev.Label), DetectedAt: ev.Timestamp})
		hub.Broadcast(ev)
	})

	srv := New(Config{Store: s, Session: sess, Frames: frames, Hub: hub, Dispatcher: "log"})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()
	ws := dialHub(t, ts, "/api/events/ws")
	waitClients(t, hub, 1)

	// 1. Lengthen the cooldown so a held pose yields a single event
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", bytes.NewBufferString(`{"cooldown": "1m"}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /api/settings status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 2. Start detection
	resp, err = client.Post(ts.URL+"/api/session/start", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/session/start error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 3. The open palm is pushed to websocket clients
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var pushed eventMessage
	if err := ws.ReadJSON(&pushed); err != nil {
		t.Fatalf("websocket read error = %v", err)
	}
	if pushed.Label != string(gesture.LabelPlay) {
		t.Errorf("pushed label = %s, want PLAY", pushed.Label)
	}

	// 4. And reported as the latest gesture
	resp, _ = client.Get(ts.URL + "/api/gesture")
	var latest struct {
		Gesture string `json:"gesture"`
		ID      string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&latest)
	resp.Body.Close()
	if latest.Gesture != "PLAY" || latest.ID != pushed.ID {
		t.Errorf("latest = %+v, want PLAY %s", latest, pushed.ID)
	}

	// 5. Stop detection
	resp, _ = client.Post(ts.URL+"/api/session/stop", "application/json", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 6. The event is in the history exactly once
	resp, _ = client.Get(ts.URL + "/api/events")
	var listed struct {
		Events []store.Event `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Events) != 1 || listed.Events[0].ID != pushed.ID {
		t.Errorf("events = %+v, want one event %s", listed.Events, pushed.ID)
	}

	if _, seq := frames.Latest(); seq == 0 {
		t.Error("expected preview frames to be published")
	}
}
