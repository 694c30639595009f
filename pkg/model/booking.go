package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

// Blocks reports whether a booking in this status occupies its slot.
func (s BookingStatus) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// CanTransitionTo allows only the admin decision on a pending booking.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// Booking is embedded in the bookings array of a Facility or Subfacility document.
type Booking struct {
	ID        string        `json:"id" bson:"id"`
	Date      string        `json:"date" bson:"date"`
	Time      TimeSlot      `json:"time" bson:"time"`
	Status    BookingStatus `json:"status" bson:"status"`
	Attendees int           `json:"attendees" bson:"attendees"`
	UserID    string        `json:"user_id" bson:"user_id"`
	BookedAt  time.Time     `json:"booked_at" bson:"booked_at"`
}

type BookingRequest struct {
	FacilityID    string `json:"facility_id" validate:"required,mongodb"`
	SubfacilityID string `json:"subfacility_id,omitempty" validate:"omitempty,mongodb"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,time_slot"`
	Attendees     int    `json:"attendees" validate:"required,min=1,max=500"`
	UserID        string `json:"user_id" validate:"required,min=1,max=128"`
}

type BookingStatusUpdate struct {
	FacilityID    string        `json:"facility_id" validate:"required,mongodb"`
	SubfacilityID string        `json:"subfacility_id,omitempty" validate:"omitempty,mongodb"`
	Status        BookingStatus `json:"status" validate:"required,oneof=approved rejected"`
}

type AvailabilityCheck struct {
	FacilityID    string `json:"facility_id"`
	SubfacilityID string `json:"subfacility_id,omitempty"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type AvailabilityResponse struct {
	FacilityID    string     `json:"facility_id"`
	SubfacilityID string     `json:"subfacility_id,omitempty"`
	Date          string     `json:"date"`
	Slots         []TimeSlot `json:"slots"`
}

type AvailabilityCheckResponse struct {
	Available bool       `json:"available"`
	Slots     []TimeSlot `json:"slots"`
}
