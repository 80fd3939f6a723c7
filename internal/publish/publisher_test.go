package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/mudra/internal/gesture"
)

// fakeToken completes immediately unless pending is set.
type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool { return !t.pending }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mu      sync.Mutex
	sent    []published
	err     error
	pending bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload any) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: c.err, pending: c.pending}
}

func (c *fakeClient) messages() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.sent...)
}

func TestFormatTopic(t *testing.T) {
	tests := []struct {
		pattern string
		label   gesture.Label
		want    string
	}{
		{DefaultTopic, gesture.LabelPlay, "mudra/gesture/play"},
		{DefaultTopic, gesture.LabelSwipeLeft, "mudra/gesture/swipe_left"},
		{"home/{label}/{label}", gesture.LabelPause, "home/pause/pause"},
		{"fixed/topic", gesture.LabelVolumeUp, "fixed/topic"},
	}

	for _, tt := range tests {
		if got := FormatTopic(tt.pattern, tt.label); got != tt.want {
			t.Errorf("FormatTopic(%q, %s) = %q, want %q", tt.pattern, tt.label, got, tt.want)
		}
	}
}

func TestPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, PublisherConfig{})

	ev := gesture.Event{
		ID:        "ev-1",
		Label:     gesture.LabelVolumeDown,
		Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	if err := p.Publish(ev); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	sent := client.messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].topic != "mudra/gesture/volume_down" || sent[0].qos != 1 {
		t.Errorf("topic=%s qos=%d", sent[0].topic, sent[0].qos)
	}

	var msg Message
	if err := json.Unmarshal(sent[0].payload, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.ID != "ev-1" || msg.Label != "VOLUME_DOWN" || !msg.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("payload = %+v", msg)
	}
}

func TestPublisher_Errors(t *testing.T) {
	ev := gesture.Event{ID: "ev-1", Label: gesture.LabelPlay}

	brokerErr := errors.New("not connected")
	p := NewPublisher(&fakeClient{err: brokerErr}, PublisherConfig{})
	if err := p.Publish(ev); !errors.Is(err, brokerErr) {
		t.Errorf("Publish() error = %v, want %v", err, brokerErr)
	}

	p = NewPublisher(&fakeClient{pending: true}, PublisherConfig{Timeout: time.Millisecond})
	if err := p.Publish(ev); !errors.Is(err, ErrPublishTimeout) {
		t.Errorf("Publish() error = %v, want %v", err, ErrPublishTimeout)
	}
}

func TestPublisher_SubmitDropsWhenFull(t *testing.T) {
	p := NewPublisher(&fakeClient{}, PublisherConfig{QueueSize: 1})

	if !p.Submit(gesture.Event{ID: "a", Label: gesture.LabelPlay}) {
		t.Fatal("first submit should be queued")
	}
	if p.Submit(gesture.Event{ID: "b", Label: gesture.LabelPause}) {
		t.Error("submit to a full queue should be dropped")
	}
}

func TestPublisher_Start(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, PublisherConfig{Topic: "test/{label}"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	p.Submit(gesture.Event{ID: "a", Label: gesture.LabelPlay})
	p.Submit(gesture.Event{ID: "b", Label: gesture.LabelSwipeRight})

	deadline := time.Now().Add(2 * time.Second)
	for len(client.messages()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("published %d messages, want 2", len(client.messages()))
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}

	sent := client.messages()
	if sent[0].topic != "test/play" || sent[1].topic != "test/swipe_right" {
		t.Errorf("topics = %s, %s", sent[0].topic, sent[1].topic)
	}
}
