package enums

import "fmt"

// RequestIssue categorizes what a car owner believes is broken.
type RequestIssue string

const (
	RequestIssueMotor      RequestIssue = "motor"
	RequestIssueGearBox    RequestIssue = "gear_box"
	RequestIssueElectronic RequestIssue = "electronic"
	RequestIssueSuspension RequestIssue = "suspension"
	RequestIssueOther      RequestIssue = "other"
)

var validRequestIssues = []RequestIssue{
	RequestIssueMotor,
	RequestIssueGearBox,
	RequestIssueElectronic,
	RequestIssueSuspension,
	RequestIssueOther,
}

// String implements fmt.Stringer.
func (r RequestIssue) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestIssue.
func (r RequestIssue) IsValid() bool {
	for _, candidate := range validRequestIssues {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRequestIssue converts raw input into a RequestIssue.
func ParseRequestIssue(value string) (RequestIssue, error) {
	for _, candidate := range validRequestIssues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request issue %q", value)
}
