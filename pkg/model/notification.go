package model

import "time"

const (
	NotificationBookingCreated       = "booking_created"
	NotificationBookingStatusChanged = "booking_status_changed"
)

type Notification struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	EventID       string    `json:"-" bson:"event_id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	Type          string    `json:"type" bson:"type"`
	Message       string    `json:"message" bson:"message"`
	BookingID     string    `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	FacilityID    string    `json:"facility_id,omitempty" bson:"facility_id,omitempty"`
	SubfacilityID string    `json:"subfacility_id,omitempty" bson:"subfacility_id,omitempty"`
	Read          bool      `json:"read" bson:"read"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// BookingEvent is the payload published on the booking events topic.
type BookingEvent struct {
	Type           string        `json:"type"`
	BookingID      string        `json:"booking_id"`
	FacilityID     string        `json:"facility_id"`
	SubfacilityID  string        `json:"subfacility_id,omitempty"`
	UserID         string        `json:"user_id"`
	Date           string        `json:"date"`
	Time           TimeSlot      `json:"time"`
	Status         BookingStatus `json:"status"`
	PreviousStatus BookingStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

const (
	BookingEventCreated       = "booking.created"
	BookingEventStatusChanged = "booking.status_changed"
)
