package enums

import "fmt"

// AssignmentStatus tracks the lifecycle of a truck assignment.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusAccepted  AssignmentStatus = "accepted"
	AssignmentStatusDelivered AssignmentStatus = "delivered"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusActive,
	AssignmentStatusAccepted,
	AssignmentStatusDelivered,
	AssignmentStatusCancelled,
}

// String implements fmt.Stringer.
func (a AssignmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssignmentStatus.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsLive reports whether the assignment still occupies its (order, date) slot.
// Cancelled assignments free the slot for a fresh upsert.
func (a AssignmentStatus) IsLive() bool {
	switch a {
	case AssignmentStatusActive, AssignmentStatusAccepted, AssignmentStatusDelivered:
		return true
	}
	return false
}

// ParseAssignmentStatus converts raw input into an AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
