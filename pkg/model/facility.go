package model

import "time"

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" validate:"longitude"`
}

type Facility struct {
	ID           string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Capacity     int          `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	Coordinates  *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty" validate:"omitempty"`
	ContactPhone string       `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
	WebsiteURL   string       `json:"website_url,omitempty" bson:"website_url,omitempty" validate:"omitempty,url"`
	Bookings     []Booking    `json:"bookings" bson:"bookings"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
}

type FacilityUpdate struct {
	Name         string       `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description  *string      `json:"description,omitempty" validate:"omitempty,max=1000"`
	Capacity     *int         `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	Coordinates  *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
	ContactPhone *string      `json:"contact_phone,omitempty" validate:"omitempty,e164"`
	WebsiteURL   *string      `json:"website_url,omitempty" validate:"omitempty,url"`
}

// Subfacility is a bookable unit of a Facility with its own bookings.
type Subfacility struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FacilityID  string    `json:"facility_id" bson:"facility_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	Bookings    []Booking `json:"bookings" bson:"bookings"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type SubfacilityUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
}
