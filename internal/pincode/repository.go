package pincode

import (
	"context"
	"errors"
	"fmt"

	"OCLAdmin/internal/config"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate pincode")

// MaxExportRows bounds a single export.
const MaxExportRows = 100000

type Store interface {
	List(ctx context.Context, f Filter, page pagination.Page) ([]*PincodeArea, int64, error)
	Export(ctx context.Context, f Filter) ([]*PincodeArea, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*PincodeArea, error)
	// FindTriple looks up the record holding (pincode, area, city), ignoring
	// exclude when it is set.
	FindTriple(ctx context.Context, pincode int, area, city string, exclude primitive.ObjectID) (*PincodeArea, error)
	Create(ctx context.Context, p *PincodeArea) error
	Replace(ctx context.Context, p *PincodeArea) (*PincodeArea, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*PincodeArea, error)
}

type PincodeRepository struct {
	collection *mongo.Collection
}

func NewPincodeRepository(db *mongo.Database) *PincodeRepository {
	return &PincodeRepository{collection: db.Collection(config.PincodesCollection)}
}

func buildFilter(f Filter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		clauses := store.AnyField(f.Search, "areaname", "cityname", "statename", "distrcitname")
		if n, ok := ParseNumber(f.Search); ok {
			clauses = append(clauses, bson.M{"pincode": n})
		}
		filter["$or"] = clauses
	}
	if f.State != "" {
		filter["statename"] = store.Contains(f.State)
	}
	if f.City != "" {
		filter["cityname"] = store.Contains(f.City)
	}
	return filter
}

var byPincode = bson.D{{Key: "pincode", Value: 1}}

func (r *PincodeRepository) List(ctx context.Context, f Filter, page pagination.Page) ([]*PincodeArea, int64, error) {
	filter := buildFilter(f)
	cursor, err := r.collection.Find(ctx, filter, store.PageOptions(page, byPincode))
	if err != nil {
		return nil, 0, fmt.Errorf("listing pincodes: %w", err)
	}
	items := []*PincodeArea{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decoding pincodes: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting pincodes: %w", err)
	}
	return items, total, nil
}

func (r *PincodeRepository) Export(ctx context.Context, f Filter) ([]*PincodeArea, error) {
	opts := options.Find().SetSort(byPincode).SetLimit(MaxExportRows)
	cursor, err := r.collection.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("exporting pincodes: %w", err)
	}
	items := []*PincodeArea{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decoding pincodes: %w", err)
	}
	return items, nil
}

func (r *PincodeRepository) findOne(ctx context.Context, filter bson.M) (*PincodeArea, error) {
	var p PincodeArea
	if err := r.collection.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding pincode: %w", err)
	}
	return &p, nil
}

func (r *PincodeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*PincodeArea, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PincodeRepository) FindTriple(ctx context.Context, pincode int, area, city string, exclude primitive.ObjectID) (*PincodeArea, error) {
	filter := bson.M{"pincode": pincode, "areaname": area, "cityname": city}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return r.findOne(ctx, filter)
}

func (r *PincodeRepository) Create(ctx context.Context, p *PincodeArea) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if store.IsDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting pincode: %w", err)
	}
	return nil
}

func (r *PincodeRepository) Replace(ctx context.Context, p *PincodeArea) (*PincodeArea, error) {
	var updated PincodeArea
	err := r.collection.FindOneAndReplace(ctx,
		bson.M{"_id": p.ID},
		p,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if store.IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("updating pincode: %w", err)
	}
	return &updated, nil
}

func (r *PincodeRepository) Delete(ctx context.Context, id primitive.ObjectID) (*PincodeArea, error) {
	var p PincodeArea
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting pincode: %w", err)
	}
	return &p, nil
}
