package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventserrors "facilio/internal/events/errors"
	"facilio/pkg/config"
	mongodb "facilio/pkg/db/mongo"
	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository interface {
	Create(ctx context.Context, ev *model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindByFacility(ctx context.Context, facilityID, subfacilityID string) ([]model.Event, error)
	Delete(ctx context.Context, id string) error
	// EnsureTarget checks that the facility exists and, when given, that the
	// subfacility belongs to it.
	EnsureTarget(ctx context.Context, facilityID, subfacilityID string) error
}

type mongoEventRepository struct {
	cfg           *config.Config
	collection    *mongo.Collection
	facilities    *mongo.Collection
	subfacilities *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:           cfg,
		collection:    db.Collection(mongodb.EventsCollection),
		facilities:    db.Collection(mongodb.FacilitiesCollection),
		subfacilities: db.Collection(mongodb.SubfacilitiesCollection),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoEventRepository) Create(ctx context.Context, ev *model.Event) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ev.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, ev)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ev.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var ev model.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&ev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", eventserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &ev, nil
}

// FindByFacility returns the events of the facility, narrowed to one
// subfacility when subfacilityID is set. Start values are stored in mixed
// representations, so date filtering happens in the caller.
func (r *mongoEventRepository) FindByFacility(ctx context.Context, facilityID, subfacilityID string) ([]model.Event, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"facility_id": facilityID}
	if subfacilityID != "" {
		filter["subfacility_id"] = subfacilityID
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []model.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", eventserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoEventRepository) EnsureTarget(ctx context.Context, facilityID, subfacilityID string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	facilityOID, err := objectID(facilityID)
	if err != nil {
		return err
	}
	if err := r.exists(ctx, r.facilities, bson.M{"_id": facilityOID}, eventserrors.ErrFacilityNotFound); err != nil {
		return err
	}
	if subfacilityID == "" {
		return nil
	}

	subOID, err := objectID(subfacilityID)
	if err != nil {
		return err
	}
	return r.exists(ctx, r.subfacilities, bson.M{"_id": subOID, "facility_id": facilityID}, eventserrors.ErrSubfacilityNotFound)
}

func (r *mongoEventRepository) exists(ctx context.Context, coll *mongo.Collection, filter bson.M, notFound error) error {
	err := coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", coll.Name(), err)
	}
	return nil
}
