package mongo

import (
	"context"
	"fmt"

	"facilio/internal/migrations/mongo/validators"
	mongodb "facilio/pkg/db/mongo"
	"facilio/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	FacilitiesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "bookings.id", Value: 1}}},
	}

	SubfacilitiesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "facility_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "bookings.id", Value: 1}}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "facility_id", Value: 1}, {Key: "subfacility_id", Value: 1}}},
		{Keys: bson.D{{Key: "subfacility_id", Value: 1}}},
	}

	NotificationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("event_id_unique"),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the services rely on, in creation order.
func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: mongodb.FacilitiesCollection, Indexes: FacilitiesIndexes, Validator: validators.FacilityValidator},
		{Name: mongodb.SubfacilitiesCollection, Indexes: SubfacilitiesIndexes, Validator: validators.SubfacilityValidator},
		{Name: mongodb.EventsCollection, Indexes: EventsIndexes, Validator: validators.EventValidator},
		{Name: mongodb.NotificationsCollection, Indexes: NotificationsIndexes, Validator: validators.NotificationValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
