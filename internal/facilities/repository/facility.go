package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	facilitieserrors "facilio/internal/facilities/errors"
	"facilio/pkg/config"
	mongodb "facilio/pkg/db/mongo"
	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FacilityRepository interface {
	Create(ctx context.Context, f *model.Facility) error
	FindByID(ctx context.Context, id string) (*model.Facility, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, f *model.Facility) error
	Delete(ctx context.Context, id string) error
	DeleteEvents(ctx context.Context, facilityID string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoFacilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	events     *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoFacilityRepository(cfg *config.Config) FacilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFacilityRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.FacilitiesCollection),
		events:     db.Collection(mongodb.EventsCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", facilitieserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoFacilityRepository) Create(ctx context.Context, f *model.Facility) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	f.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if f.Bookings == nil {
		f.Bookings = []model.Booking{}
	}

	result, err := r.collection.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid.Hex()
	}
	return nil
}

func (r *mongoFacilityRepository) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var f model.Facility
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}
	return &f, nil
}

// FindAll lists facilities by name without their bookings arrays.
func (r *mongoFacilityRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"bookings": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer cursor.Close(ctx)

	facilities := []*model.Facility{}
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, fmt.Errorf("failed to decode facilities: %w", err)
	}
	return facilities, nil
}

func (r *mongoFacilityRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count facilities: %w", err)
	}
	return count, nil
}

// Update replaces the descriptive fields. Bookings are owned by the bookings
// service and never written here.
func (r *mongoFacilityRepository) Update(ctx context.Context, id string, f *model.Facility) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"name":          f.Name,
		"description":   f.Description,
		"capacity":      f.Capacity,
		"coordinates":   f.Coordinates,
		"contact_phone": f.ContactPhone,
		"website_url":   f.WebsiteURL,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoFacilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", facilitieserrors.ErrNotFound, id)
	}
	return nil
}

// DeleteEvents removes every event scheduled on the facility or any of its
// subfacilities.
func (r *mongoFacilityRepository) DeleteEvents(ctx context.Context, facilityID string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.events.DeleteMany(ctx, bson.M{"facility_id": facilityID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete events of facility %s: %w", facilityID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoFacilityRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
