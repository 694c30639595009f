package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "facilio/internal/bookings/errors"
	"facilio/pkg/config"
	mongodb "facilio/pkg/db/mongo"
	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Target addresses the document whose bookings array is read or written:
// the subfacility when SubfacilityID is set, the facility otherwise.
type Target struct {
	FacilityID    string
	SubfacilityID string
}

func (t Target) IsSubfacility() bool {
	return t.SubfacilityID != ""
}

// BookableUnit is the common projection of Facility and Subfacility documents.
type BookableUnit struct {
	ID       string          `bson:"_id"`
	Name     string          `bson:"name"`
	Capacity int             `bson:"capacity"`
	Bookings []model.Booking `bson:"bookings"`
}

type BookingRepository interface {
	FindUnit(ctx context.Context, target Target) (*BookableUnit, error)
	FindEvents(ctx context.Context, target Target) ([]model.Event, error)
	AddBooking(ctx context.Context, target Target, booking *model.Booking) error
	UpdateStatus(ctx context.Context, target Target, bookingID string, from, to model.BookingStatus) error
}

type mongoBookingRepository struct {
	cfg           *config.Config
	facilities    *mongo.Collection
	subfacilities *mongo.Collection
	events        *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:           cfg,
		facilities:    db.Collection(mongodb.FacilitiesCollection),
		subfacilities: db.Collection(mongodb.SubfacilitiesCollection),
		events:        db.Collection(mongodb.EventsCollection),
	}
}

// unitFilter selects the target document. A subfacility must belong to the
// given facility.
func (r *mongoBookingRepository) unitFilter(target Target) (*mongo.Collection, bson.M, error) {
	facilityOID, err := primitive.ObjectIDFromHex(target.FacilityID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, target.FacilityID)
	}
	if !target.IsSubfacility() {
		return r.facilities, bson.M{"_id": facilityOID}, nil
	}

	subOID, err := primitive.ObjectIDFromHex(target.SubfacilityID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, target.SubfacilityID)
	}
	return r.subfacilities, bson.M{"_id": subOID, "facility_id": target.FacilityID}, nil
}

func notFoundFor(target Target) error {
	if target.IsSubfacility() {
		return bookingserrors.ErrSubfacilityNotFound
	}
	return bookingserrors.ErrFacilityNotFound
}

func (r *mongoBookingRepository) FindUnit(ctx context.Context, target Target) (*BookableUnit, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	coll, filter, err := r.unitFilter(target)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().SetProjection(bson.M{"name": 1, "capacity": 1, "bookings": 1})
	var unit BookableUnit
	if err := coll.FindOne(ctx, filter, opts).Decode(&unit); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundFor(target)
		}
		return nil, fmt.Errorf("failed to find %s: %w", coll.Name(), err)
	}
	return &unit, nil
}

// FindEvents returns every event that could concern the target: those of the
// facility plus, for a subfacility, those naming it. Final applicability is
// decided by the availability resolver.
func (r *mongoBookingRepository) FindEvents(ctx context.Context, target Target) ([]model.Event, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"facility_id": target.FacilityID}
	if target.IsSubfacility() {
		filter = bson.M{"$or": bson.A{
			bson.M{"facility_id": target.FacilityID},
			bson.M{"subfacility_id": target.SubfacilityID},
		}}
	}

	cursor, err := r.events.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []model.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoBookingRepository) AddBooking(ctx context.Context, target Target, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, filter, err := r.unitFilter(target)
	if err != nil {
		return err
	}

	result, err := coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"bookings": booking}})
	if err != nil {
		return fmt.Errorf("failed to add booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return notFoundFor(target)
	}
	return nil
}

// UpdateStatus moves one embedded booking from status from to status to. The
// status is part of the filter, so a concurrent decision makes this a no-op
// reported as ErrStatusConflict.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, target Target, bookingID string, from, to model.BookingStatus) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	coll, filter, err := r.unitFilter(target)
	if err != nil {
		return err
	}
	filter["bookings"] = bson.M{"$elemMatch": bson.M{"id": bookingID, "status": from}}

	result, err := coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"bookings.$.status": to}})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrStatusConflict
	}
	return nil
}
