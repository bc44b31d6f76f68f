package notification

import (
	"context"
	"fmt"
	"time"

	"OCLAdmin/internal/config"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Create(ctx context.Context, n *Notification) error
	// Pending returns pending notifications with fewer than maxAttempts
	// attempts, oldest first.
	Pending(ctx context.Context, maxAttempts, limit int) ([]*Notification, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// MarkAttemptFailed records a failed delivery. When exhausted is set the
	// notification leaves the pending queue for good.
	MarkAttemptFailed(ctx context.Context, id primitive.ObjectID, reason string, exhausted bool, at time.Time) error
	List(ctx context.Context, status Status, page pagination.Page) ([]*Notification, int64, error)
}

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection(config.NotificationsCollection)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Pending(ctx context.Context, maxAttempts, limit int) ([]*Notification, error) {
	filter := bson.M{"status": StatusPending, "attempts": bson.M{"$lt": maxAttempts}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding pending notifications: %w", err)
	}
	notifications := []*Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": StatusSent, "sentAt": at, "updatedAt": at, "lastError": ""},
		"$inc": bson.M{"attempts": 1},
	})
	if err != nil {
		return fmt.Errorf("marking notification sent: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkAttemptFailed(ctx context.Context, id primitive.ObjectID, reason string, exhausted bool, at time.Time) error {
	set := bson.M{"lastError": reason, "updatedAt": at}
	if exhausted {
		set["status"] = StatusFailed
	}
	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": set, "$inc": bson.M{"attempts": 1}})
	if err != nil {
		return fmt.Errorf("recording notification failure: %w", err)
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, status Status, page pagination.Page) ([]*Notification, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, store.PageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("listing notifications: %w", err)
	}
	notifications := []*Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("decoding notifications: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting notifications: %w", err)
	}
	return notifications, total, nil
}
