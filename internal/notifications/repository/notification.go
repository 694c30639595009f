package repository

import (
	"context"
	"errors"
	"fmt"

	notificationserrors "facilio/internal/notifications/errors"
	"facilio/pkg/config"
	mongodb "facilio/pkg/db/mongo"
	"facilio/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListQuery struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int64
}

type NotificationRepository interface {
	// InsertOnce stores n unless a notification with the same event id exists.
	// It reports whether a document was inserted.
	InsertOnce(ctx context.Context, n *model.Notification) (bool, error)
	FindByUser(ctx context.Context, q ListQuery) ([]*model.Notification, error)
	CountByUser(ctx context.Context, q ListQuery) (int64, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
}

type mongoNotificationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	return &mongoNotificationRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(mongodb.NotificationsCollection),
	}
}

func (r *mongoNotificationRepository) InsertOnce(ctx context.Context, n *model.Notification) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":    n.UserID,
		"type":       n.Type,
		"message":    n.Message,
		"read":       n.Read,
		"created_at": n.CreatedAt,
	}
	if n.BookingID != "" {
		doc["booking_id"] = n.BookingID
	}
	if n.FacilityID != "" {
		doc["facility_id"] = n.FacilityID
	}
	if n.SubfacilityID != "" {
		doc["subfacility_id"] = n.SubfacilityID
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"event_id": n.EventID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two concurrent upserts on the unique index: the other one won.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}

	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		n.ID = oid.Hex()
	}
	return result.UpsertedCount == 1, nil
}

func userFilter(q ListQuery) bson.M {
	filter := bson.M{"user_id": q.UserID}
	if q.UnreadOnly {
		filter["read"] = false
	}
	return filter
}

func (r *mongoNotificationRepository) FindByUser(ctx context.Context, q ListQuery) ([]*model.Notification, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(q.Offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, userFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []*model.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) CountByUser(ctx context.Context, q ListQuery) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, userFilter(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", notificationserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n model.Notification
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"read": true}}, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", notificationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &n, nil
}
