package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"betroom/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// EventStreamName is the JetStream stream all domain events are written to
	EventStreamName = "BETROOM_EVENTS"
	subjectPrefix   = "betroom.events."
	sourceService   = "betroom"
)

// MessagePublisher sends raw payloads to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every event published outside the process
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor returns the subject an event type is published on
func SubjectFor(eventType events.EventType) string {
	return subjectPrefix + string(eventType)
}

// StreamSubjects returns the subjects the event stream must capture
func StreamSubjects() []string {
	return []string{subjectPrefix + ">"}
}

// NATSEventPublisher forwards committed domain events from the in-process bus to NATS
type NATSEventPublisher struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewNATSEventPublisher creates a forwarder using publisher for delivery
func NewNATSEventPublisher(publisher MessagePublisher) *NATSEventPublisher {
	return &NATSEventPublisher{publisher: publisher, now: time.Now}
}

// Attach subscribes the forwarder to every event type on bus
func (p *NATSEventPublisher) Attach(bus *events.Bus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, p.handle)
	}
}

func (p *NATSEventPublisher) handle(ctx context.Context, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Publish wraps event in an envelope and sends it on its subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	data, err := p.encode(event)
	if err != nil {
		return err
	}

	subject := SubjectFor(event.Type())
	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}

func (p *NATSEventPublisher) encode(event events.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}
