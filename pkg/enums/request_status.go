package enums

import "fmt"

// RequestStatus tracks the lifecycle of a mechanic car request.
type RequestStatus string

const (
	RequestStatusPending     RequestStatus = "pending"
	RequestStatusConfirmed   RequestStatus = "confirmed"
	RequestStatusUnderRepair RequestStatus = "under_repair"
	RequestStatusRepaired    RequestStatus = "repaired"
	RequestStatusDelivered   RequestStatus = "delivered"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusConfirmed,
	RequestStatusUnderRepair,
	RequestStatusRepaired,
	RequestStatusDelivered,
}

// String implements fmt.Stringer.
func (r RequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestStatus.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the request lifecycle.
func (r RequestStatus) IsTerminal() bool {
	return r == RequestStatusDelivered
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// RequestStatuses returns every known status in lifecycle order.
func RequestStatuses() []RequestStatus {
	out := make([]RequestStatus, len(validRequestStatuses))
	copy(out, validRequestStatuses)
	return out
}
