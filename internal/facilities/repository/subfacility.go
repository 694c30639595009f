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

type SubfacilityRepository interface {
	Create(ctx context.Context, sub *model.Subfacility) error
	FindByID(ctx context.Context, id string) (*model.Subfacility, error)
	FindByFacility(ctx context.Context, facilityID string) ([]*model.Subfacility, error)
	Update(ctx context.Context, id string, sub *model.Subfacility) error
	Delete(ctx context.Context, id string) error
	DeleteByFacility(ctx context.Context, facilityID string) (int64, error)
	DeleteEvents(ctx context.Context, subfacilityID string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoSubfacilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	events     *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoSubfacilityRepository(cfg *config.Config) SubfacilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSubfacilityRepository{
		cfg:        cfg,
		collection: db.Collection(mongodb.SubfacilitiesCollection),
		events:     db.Collection(mongodb.EventsCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func subfacilityNotFound(id string) error {
	return fmt.Errorf("%w: %s", facilitieserrors.ErrSubfacilityNotFound, id)
}

func (r *mongoSubfacilityRepository) Create(ctx context.Context, sub *model.Subfacility) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	sub.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if sub.Bookings == nil {
		sub.Bookings = []model.Booking{}
	}

	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to create subfacility: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSubfacilityRepository) FindByID(ctx context.Context, id string) (*model.Subfacility, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var sub model.Subfacility
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, subfacilityNotFound(id)
		}
		return nil, fmt.Errorf("failed to find subfacility: %w", err)
	}
	return &sub, nil
}

func (r *mongoSubfacilityRepository) FindByFacility(ctx context.Context, facilityID string) ([]*model.Subfacility, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"bookings": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"facility_id": facilityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query subfacilities: %w", err)
	}
	defer cursor.Close(ctx)

	subs := []*model.Subfacility{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode subfacilities: %w", err)
	}
	return subs, nil
}

func (r *mongoSubfacilityRepository) Update(ctx context.Context, id string, sub *model.Subfacility) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"name":        sub.Name,
		"description": sub.Description,
		"capacity":    sub.Capacity,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update subfacility: %w", err)
	}
	if result.MatchedCount == 0 {
		return subfacilityNotFound(id)
	}
	return nil
}

func (r *mongoSubfacilityRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete subfacility: %w", err)
	}
	if result.DeletedCount == 0 {
		return subfacilityNotFound(id)
	}
	return nil
}

func (r *mongoSubfacilityRepository) DeleteByFacility(ctx context.Context, facilityID string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"facility_id": facilityID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete subfacilities of facility %s: %w", facilityID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoSubfacilityRepository) DeleteEvents(ctx context.Context, subfacilityID string) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.events.DeleteMany(ctx, bson.M{"subfacility_id": subfacilityID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete events of subfacility %s: %w", subfacilityID, err)
	}
	return result.DeletedCount, nil
}

func (r *mongoSubfacilityRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
