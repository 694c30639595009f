// Package availability computes which of the fixed daily slots of a facility
// or subfacility are free on a given date.
package availability

import (
	"errors"
	"fmt"
	"time"

	"facilio/pkg/logger"
	"facilio/pkg/model"
)

var ErrMissingParameters = errors.New("missing required parameters")

// Query identifies the booking target. An empty SubfacilityID targets the
// facility itself.
type Query struct {
	FacilityID    string
	SubfacilityID string
	Date          string
}

// Resolver holds no per-request state; the location only fixes how event
// timestamps map to calendar dates and hours.
type Resolver struct {
	log *logger.Logger
	loc *time.Location
}

func NewResolver(log *logger.Logger, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{log: log, loc: loc}
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the slots of model.TimeSlots, in order, that are neither
// held by a pending or approved booking on q.Date nor covered by an event
// applying to the target. bookings must be the bookings array of the target
// document.
func (r *Resolver) Resolve(q Query, bookings []model.Booking, events []model.Event) ([]model.TimeSlot, error) {
	if q.FacilityID == "" || q.Date == "" {
		return nil, ErrMissingParameters
	}

	booked := BookedTimes(q.Date, bookings)
	blocked := r.EventTimes(q, events)

	free := make([]model.TimeSlot, 0, len(model.TimeSlots))
	for _, slot := range model.TimeSlots {
		if _, ok := booked[slot]; ok {
			continue
		}
		if _, ok := blocked[slot]; ok {
			continue
		}
		free = append(free, slot)
	}
	return free, nil
}

func BookedTimes(date string, bookings []model.Booking) map[model.TimeSlot]struct{} {
	booked := make(map[model.TimeSlot]struct{})
	for _, b := range bookings {
		if b.Date == date && b.Status.Blocks() {
			booked[b.Time] = struct{}{}
		}
	}
	return booked
}

// EventTimes collects the whole-hour slots blocked by events for the query.
// Hours run from the start hour up to, not including, the end hour; minutes
// are ignored on both ends.
func (r *Resolver) EventTimes(q Query, events []model.Event) map[model.TimeSlot]struct{} {
	blocked := make(map[model.TimeSlot]struct{})
	for _, ev := range events {
		start, okStart := NormalizeTimestamp(ev.Start, r.loc)
		end, okEnd := NormalizeTimestamp(ev.End, r.loc)
		if !okStart || !okEnd {
			r.log.Warn("Skipping event with unreadable time range",
				"event_id", ev.ID,
				"facility_id", ev.FacilityID,
				"start_ok", okStart,
				"end_ok", okEnd,
			)
			continue
		}

		start = start.In(r.loc)
		end = end.In(r.loc)
		if start.Format(model.DateFormat) != q.Date {
			continue
		}
		if !appliesTo(q, ev) {
			continue
		}

		for h := start.Hour(); h < end.Hour(); h++ {
			blocked[model.TimeSlot(fmt.Sprintf("%02d:00", h))] = struct{}{}
		}
	}
	return blocked
}

func appliesTo(q Query, ev model.Event) bool {
	if q.SubfacilityID != "" {
		return ev.SubfacilityID == q.SubfacilityID
	}
	return ev.SubfacilityID == "" && ev.FacilityID == q.FacilityID
}
