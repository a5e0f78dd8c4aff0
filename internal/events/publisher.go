// Package events publishes session lifecycle events for downstream
// consumers (security analytics, workforce dashboards).
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/kafka"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

const (
	EventSessionOpened = "session.opened"
	EventSessionClosed = "session.closed"
	EventSessionPurged = "session.purged"
)

// SessionEvent is the wire shape of one lifecycle event.
type SessionEvent struct {
	Type       string   `json:"type"`
	Subject    string   `json:"subject"`
	DeviceID   string   `json:"device_id,omitempty"`
	Roles      []string `json:"roles"`
	OccurredAt string   `json:"occurred_at"`
}

// Publisher emits session lifecycle events. Publishing is best-effort:
// failures are logged, never surfaced to the request that triggered them.
type Publisher interface {
	SessionOpened(ctx context.Context, record *domain.SessionRecord, deviceID string)
	SessionClosed(ctx context.Context, record *domain.SessionRecord, deviceID string)
	Close()
}

// KafkaPublisher publishes session events to a Kafka topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher creates a publisher over an established producer.
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger.Get(),
	}
}

func (p *KafkaPublisher) SessionOpened(ctx context.Context, record *domain.SessionRecord, deviceID string) {
	p.publish(ctx, EventSessionOpened, record, deviceID)
}

func (p *KafkaPublisher) SessionClosed(ctx context.Context, record *domain.SessionRecord, deviceID string) {
	p.publish(ctx, EventSessionClosed, record, deviceID)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, record *domain.SessionRecord, deviceID string) {
	event := SessionEvent{
		Type:       eventType,
		DeviceID:   deviceID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Roles:      []string{},
	}
	if record != nil {
		event.Subject = record.Subject
		for _, role := range record.Roles {
			event.Roles = append(event.Roles, string(role))
		}
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, event.Subject, event, map[string]string{"event_type": eventType}); err != nil {
		p.log.Warn("failed to publish session event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

// Close flushes the underlying producer.
func (p *KafkaPublisher) Close() {
	p.producer.Close()
}

// NoopPublisher is used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) SessionOpened(context.Context, *domain.SessionRecord, string) {}
func (NoopPublisher) SessionClosed(context.Context, *domain.SessionRecord, string) {}
func (NoopPublisher) Close()                                                       {}
