package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/mechanix-app/mechanix-backend/pkg/config"
)

func TestNewClientRejectsMissingProjectID(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{
		SMSTopic:        "mx-sms-events",
		SMSSubscription: "mx-sms-events-sub",
	}, nil)
	if !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error, got %v", err)
	}

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "   "}, config.PubSubConfig{}, nil)
	if !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error for blank id, got %v", err)
	}
}
