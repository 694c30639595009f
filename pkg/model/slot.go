package model

// TimeSlot is the start of a one-hour booking window, formatted "HH:00".
type TimeSlot string

// TimeSlots is the fixed 13:00-18:00 booking window in display order.
var TimeSlots = []TimeSlot{"13:00", "14:00", "15:00", "16:00", "17:00"}

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// AllTimeSlots returns a copy of TimeSlots so callers cannot mutate the catalog.
func AllTimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(TimeSlots))
	copy(out, TimeSlots)
	return out
}

func IsTimeSlot(s string) bool {
	for _, slot := range TimeSlots {
		if string(slot) == s {
			return true
		}
	}
	return false
}
