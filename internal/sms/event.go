package sms

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event kinds carried on the SMS topic. The kind doubles as the metrics label.
const (
	KindSignupOTP    = "signup_otp"
	KindResetOTP     = "reset_otp"
	KindStatusUpdate = "status_update"
)

// kindAttribute names the Pub/Sub message attribute carrying the event kind so
// consumers can route without decoding the payload.
const kindAttribute = "kind"

// Event is the message published for every outbound SMS.
type Event struct {
	Kind      string    `json:"kind"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the event carries everything the sender needs.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Kind) == "" {
		return fmt.Errorf("event kind is required")
	}
	if strings.TrimSpace(e.Phone) == "" {
		return fmt.Errorf("event phone is required")
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Errorf("event body is required")
	}
	return nil
}

// Encode serializes the event for the wire.
func (e Event) Encode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DecodeEvent parses and validates a wire payload.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decoding sms event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// OTPBody renders the text message for a one-time code.
func OTPBody(code string) string {
	return fmt.Sprintf("Your Mechanix verification code is %s. It expires shortly.", code)
}

// StatusBody renders the text message sent to a car owner when the workshop
// moves their request to a new status.
func StatusBody(status string) string {
	return fmt.Sprintf("Your repair request is now %s.", strings.ReplaceAll(status, "_", " "))
}
