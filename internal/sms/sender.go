package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/mechanix-app/mechanix-backend/pkg/config"
)

// Sender delivers a rendered message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// TwilioSender delivers messages through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender from provider credentials.
func NewTwilioSender(cfg config.SMSConfig) (*TwilioSender, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, fmt.Errorf("sms account sid is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, fmt.Errorf("sms auth token is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("sms from number is required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{client: client, from: cfg.From}, nil
}

// Send posts the message to Twilio.
func (s *TwilioSender) Send(_ context.Context, phone, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}
