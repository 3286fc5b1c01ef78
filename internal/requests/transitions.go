package requests

import (
	"fmt"

	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
)

// transitionTable is the single linear repair lifecycle. Every status except
// delivered has exactly one successor; anything else is rejected.
var transitionTable = map[enums.RequestStatus]enums.RequestStatus{
	enums.RequestStatusPending:     enums.RequestStatusConfirmed,
	enums.RequestStatusConfirmed:   enums.RequestStatusUnderRepair,
	enums.RequestStatusUnderRepair: enums.RequestStatusRepaired,
	enums.RequestStatusRepaired:    enums.RequestStatusDelivered,
}

// ValidateTransition enforces the repair status state machine. Staying in
// place, skipping a stage, and moving backward all fail.
func ValidateTransition(current, requested enums.RequestStatus) error {
	if !current.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid current status %q", current))
	}
	if !requested.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid requested status %q", requested))
	}

	next, ok := transitionTable[current]
	if !ok || next != requested {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition from %q to %q", current, requested),
		)
	}
	return nil
}
