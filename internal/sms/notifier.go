package sms

import (
	"context"
	"fmt"

	"github.com/mechanix-app/mechanix-backend/pkg/db/models"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

type carFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Car, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type statusPublisher interface {
	PublishStatusUpdate(ctx context.Context, phone, status string) error
}

// StatusNotifier texts a car owner when the workshop moves their request to a
// new status. The recipient is resolved at publish time and failures never
// reach the caller; a lost notification is logged, not surfaced.
type StatusNotifier struct {
	cars      carFinder
	users     userFinder
	publisher statusPublisher
	logg      *logger.Logger
}

// NewStatusNotifier wires the notifier around the SMS publisher.
func NewStatusNotifier(cars carFinder, users userFinder, publisher statusPublisher, logg *logger.Logger) (*StatusNotifier, error) {
	if cars == nil {
		return nil, fmt.Errorf("car finder required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("sms publisher required")
	}
	return &StatusNotifier{cars: cars, users: users, publisher: publisher, logg: logg}, nil
}

// NotifyStatusChange looks up the car owner's phone and queues the status text.
func (n *StatusNotifier) NotifyStatusChange(ctx context.Context, carID int64, status enums.RequestStatus) {
	car, err := n.cars.FindByID(ctx, carID)
	if err != nil {
		n.warn(ctx, "status sms: car lookup failed", err)
		return
	}
	owner, err := n.users.FindByID(ctx, car.UserID)
	if err != nil {
		n.warn(ctx, "status sms: owner lookup failed", err)
		return
	}
	if err := n.publisher.PublishStatusUpdate(ctx, owner.PhoneNumber, string(status)); err != nil {
		n.warn(ctx, "status sms: publish failed", err)
	}
}

func (n *StatusNotifier) warn(ctx context.Context, msg string, err error) {
	if n.logg == nil {
		return
	}
	n.logg.Warn(n.logg.WithField(ctx, "error", err.Error()), msg)
}
