package model

import "time"

// Event is an externally scheduled occupation, such as a tournament, that
// blocks slots regardless of bookings.
//
// Start and End keep whatever representation the document was written with:
// a BSON date, an ISO string, or a {seconds, nanoseconds} document exported
// from the previous backend. availability.NormalizeTimestamp reads all of them.
type Event struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	FacilityID    string    `json:"facility_id" bson:"facility_id"`
	SubfacilityID string    `json:"subfacility_id,omitempty" bson:"subfacility_id,omitempty"`
	Title         string    `json:"title,omitempty" bson:"title,omitempty"`
	Start         any       `json:"start" bson:"start"`
	End           any       `json:"end" bson:"end"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// SecondsNanos is the {seconds, nanoseconds} timestamp shape.
type SecondsNanos struct {
	Seconds     int64 `json:"seconds" bson:"seconds"`
	Nanoseconds int64 `json:"nanoseconds" bson:"nanoseconds"`
}

type EventRequest struct {
	FacilityID    string `json:"facility_id" validate:"required,mongodb"`
	SubfacilityID string `json:"subfacility_id,omitempty" validate:"omitempty,mongodb"`
	Title         string `json:"title" validate:"required,min=2,max=200"`
	Start         string `json:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End           string `json:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}
