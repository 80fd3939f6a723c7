package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/capture"
)

// readPart reads one MJPEG part and returns its body.
func readPart(t *testing.T, r *bufio.Reader) []byte {
	t.Helper()

	var length int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("failed to read part header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" && length > 0 {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, err = strconv.Atoi(v)
			if err != nil {
				t.Fatalf("bad Content-Length %q", v)
			}
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("failed to read part body: %v", err)
	}
	return body
}

func TestStreamHandler_ServesLatestFrame(t *testing.T) {
	frames := capture.NewFrameBuffer()
	frames.Publish([]byte("first-jpeg"))

	ts := httptest.NewServer(NewStreamHandler(frames))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("unexpected Content-Type %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	if got := string(readPart(t, r)); got != "first-jpeg" {
		t.Errorf("first part = %q", got)
	}

	frames.Publish([]byte("second-jpeg"))
	if got := string(readPart(t, r)); got != "second-jpeg" {
		t.Errorf("second part = %q", got)
	}
}

func TestStreamHandler_OnlyGET(t *testing.T) {
	handler := NewStreamHandler(capture.NewFrameBuffer())

	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
