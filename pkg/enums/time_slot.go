package enums

import (
	"fmt"
	"strings"
)

// TimeSlot is the coarse delivery window label used by dispatch and production.
type TimeSlot string

const (
	TimeSlotMorning TimeSlot = "Утро"
	TimeSlotDay     TimeSlot = "День"
	TimeSlotEvening TimeSlot = "Вечер"
)

var validTimeSlots = []TimeSlot{
	TimeSlotMorning,
	TimeSlotDay,
	TimeSlotEvening,
}

// String implements fmt.Stringer.
func (t TimeSlot) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TimeSlot.
func (t TimeSlot) IsValid() bool {
	for _, candidate := range validTimeSlots {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeSlot converts raw input into a TimeSlot, tolerating surrounding whitespace.
func ParseTimeSlot(value string) (TimeSlot, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validTimeSlots {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid time slot %q", value)
}
