package addressform

import (
	"context"
	"errors"
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
	List(ctx context.Context, f Filter, page pagination.Page) ([]*Form, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Form, error)
	// Update applies set to the form and returns the stored result, or nil
	// when no form has id.
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}, at time.Time) (*Form, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*Form, error)
}

type FormRepository struct {
	collection *mongo.Collection
}

func NewFormRepository(db *mongo.Database) *FormRepository {
	return &FormRepository{collection: db.Collection(config.AddressFormsCollection)}
}

var searchFields = []string{
	"senderName", "senderEmail", "senderPhone", "senderPincode",
	"receiverName", "receiverEmail", "receiverPhone", "receiverPincode",
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = store.AnyField(f.Search, searchFields...)
	}
	if f.Completed != nil {
		filter["formCompleted"] = *f.Completed
	}
	if f.State != "" {
		filter["senderState"] = store.Contains(f.State)
	}
	return filter
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *FormRepository) List(ctx context.Context, f Filter, page pagination.Page) ([]*Form, int64, error) {
	filter := buildFilter(f)
	cursor, err := r.collection.Find(ctx, filter, store.PageOptions(page, newestFirst))
	if err != nil {
		return nil, 0, fmt.Errorf("listing address forms: %w", err)
	}
	forms := []*Form{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, 0, fmt.Errorf("decoding address forms: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting address forms: %w", err)
	}
	return forms, total, nil
}

func (r *FormRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Form, error) {
	var form Form
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&form); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding address form: %w", err)
	}
	return &form, nil
}

func (r *FormRepository) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}, at time.Time) (*Form, error) {
	fields := bson.M{"updatedAt": at}
	for k, v := range set {
		fields[k] = v
	}
	var form Form
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&form)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating address form: %w", err)
	}
	return &form, nil
}

func (r *FormRepository) Delete(ctx context.Context, id primitive.ObjectID) (*Form, error) {
	var form Form
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&form); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting address form: %w", err)
	}
	return &form, nil
}
