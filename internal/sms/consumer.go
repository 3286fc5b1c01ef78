package sms

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/metrics"
)

// Consumer drains the SMS subscription and hands each event to the provider.
type Consumer struct {
	sub     *pubsub.Subscriber
	sender  Sender
	metrics *metrics.SMSMetrics
	logg    *logger.Logger
}

// NewConsumer wires a consumer around the subscription and sender.
func NewConsumer(sub *pubsub.Subscriber, sender Sender, smsMetrics *metrics.SMSMetrics, logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, fmt.Errorf("sms subscription required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	return &Consumer{sub: sub, sender: sender, metrics: smsMetrics, logg: logg}, nil
}

// Run blocks on the subscription until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := c.handle(ctx, msg.Data); err != nil {
			// Nack only transient failures. A payload that cannot decode will
			// never decode, so it is acked and dropped.
			if _, decodeErr := DecodeEvent(msg.Data); decodeErr != nil {
				if c.logg != nil {
					c.logg.Error(ctx, "dropping undecodable sms event", decodeErr)
				}
				msg.Ack()
				return
			}
			if c.logg != nil {
				c.logg.Error(ctx, "sms delivery failed", err)
			}
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// handle decodes and delivers one event, recording delivery metrics.
func (c *Consumer) handle(ctx context.Context, data []byte) error {
	event, err := DecodeEvent(data)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.sender.Send(ctx, event.Phone, event.Body)
	c.metrics.ObserveDuration(event.Kind, time.Since(start))

	if err != nil {
		c.metrics.IncFailure(event.Kind)
		return fmt.Errorf("sending %s sms: %w", event.Kind, err)
	}

	c.metrics.IncSuccess(event.Kind)
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "sms_kind", event.Kind), "sms delivered")
	}
	return nil
}
