package sms

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// Publisher pushes SMS events onto the Pub/Sub topic. Delivery to the phone
// happens asynchronously in the worker, so API handlers never block on the
// provider.
type Publisher struct {
	topic *pubsub.Publisher
	logg  *logger.Logger
	now   func() time.Time
}

// NewPublisher wires a publisher around the SMS topic handle.
func NewPublisher(topic *pubsub.Publisher, logg *logger.Logger) (*Publisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("sms topic publisher required")
	}
	return &Publisher{topic: topic, logg: logg, now: time.Now}, nil
}

// PublishOTP enqueues a one-time code message of the given kind.
func (p *Publisher) PublishOTP(ctx context.Context, kind, phone, code string) error {
	event := Event{
		Kind:      kind,
		Phone:     phone,
		Body:      OTPBody(code),
		CreatedAt: p.now().UTC(),
	}
	return p.publish(ctx, event)
}

// PublishStatusUpdate enqueues a request status notification.
func (p *Publisher) PublishStatusUpdate(ctx context.Context, phone, status string) error {
	event := Event{
		Kind:      KindStatusUpdate,
		Phone:     phone,
		Body:      StatusBody(status),
		CreatedAt: p.now().UTC(),
	}
	return p.publish(ctx, event)
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encoding sms event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{kindAttribute: event.Kind},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing sms event: %w", err)
	}

	if p.logg != nil {
		p.logg.Debug(p.logg.WithField(ctx, "sms_kind", event.Kind), "sms event published")
	}
	return nil
}
