package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/mudra/internal/gesture"
)

// Defaults for PublisherConfig fields left zero.
const (
	DefaultTopic     = "mudra/gesture/{label}"
	DefaultQueueSize = 32
	DefaultTimeout   = 5 * time.Second
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// message in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	// Topic may contain {label}, replaced by the gesture label.
	Topic     string
	QueueSize int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Publisher sends gesture events to MQTT from its own goroutine so the
// detection loop never waits on the network.
type Publisher struct {
	client  Client
	topic   string
	timeout time.Duration
	queue   chan gesture.Event
	logger  *slog.Logger
}

// Message is the JSON payload of a published event.
type Message struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPublisher creates a Publisher writing through client.
func NewPublisher(client Client, config PublisherConfig) *Publisher {
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Publisher{
		client:  client,
		topic:   config.Topic,
		timeout: config.Timeout,
		queue:   make(chan gesture.Event, config.QueueSize),
		logger:  config.Logger.With("component", "publisher"),
	}
}

// Submit queues ev. It returns false, dropping the event, when the queue is
// full.
func (p *Publisher) Submit(ev gesture.Event) bool {
	select {
	case p.queue <- ev:
		return true
	default:
		p.logger.Warn("publish queue full, dropping event", "event_id", ev.ID, "label", ev.Label)
		return false
	}
}

// Start publishes queued events until ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Debug("publisher started", "topic", p.topic)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("publisher stopped")
			return
		case ev := <-p.queue:
			if err := p.Publish(ev); err != nil {
				p.logger.Error("failed to publish event", "event_id", ev.ID, "error", err)
			}
		}
	}
}

// Publish sends ev synchronously at QoS 1.
func (p *Publisher) Publish(ev gesture.Event) error {
	payload, err := json.Marshal(Message{
		ID:        ev.ID,
		Label:     string(ev.Label),
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := FormatTopic(p.topic, ev.Label)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("event published", "topic", topic, "event_id", ev.ID)
	return nil
}

// FormatTopic replaces the {label} placeholder with the lower-case label.
func FormatTopic(pattern string, label gesture.Label) string {
	return strings.ReplaceAll(pattern, "{label}", strings.ToLower(string(label)))
}
