package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OCLAdmin/internal/authz"
	"OCLAdmin/internal/config"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OfficeUserFilter narrows a listing. ExcludeEmails hides office users that
// also hold an admin record.
type OfficeUserFilter struct {
	Search        string
	ExcludeEmails []string
}

// OfficeUserChanges carries the profile fields a caller wants to set; nil
// fields are left untouched.
type OfficeUserChanges struct {
	Name       *string
	Department *string
}

type OfficeUserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*OfficeUser, error)
	FindByEmail(ctx context.Context, email string) (*OfficeUser, error)
	List(ctx context.Context, filter OfficeUserFilter, page pagination.Page) ([]*OfficeUser, int64, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, changes OfficeUserChanges, at time.Time) (*OfficeUser, error)
	UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, at time.Time) (*OfficeUser, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) (*OfficeUser, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*OfficeUser, error)
	RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type OfficeUserRepository struct {
	collection *mongo.Collection
}

func NewOfficeUserRepository(db *mongo.Database) *OfficeUserRepository {
	return &OfficeUserRepository{collection: db.Collection(config.OfficeUsersCollection)}
}

func (r *OfficeUserRepository) findOne(ctx context.Context, filter bson.M) (*OfficeUser, error) {
	var user OfficeUser
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding office user: %w", err)
	}
	return &user, nil
}

func (r *OfficeUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*OfficeUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OfficeUserRepository) FindByEmail(ctx context.Context, email string) (*OfficeUser, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func officeUserQuery(f OfficeUserFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = store.AnyField(f.Search, "name", "email", "department")
	}
	if len(f.ExcludeEmails) > 0 {
		filter["email"] = bson.M{"$nin": f.ExcludeEmails}
	}
	return filter
}

func (r *OfficeUserRepository) List(ctx context.Context, f OfficeUserFilter, page pagination.Page) ([]*OfficeUser, int64, error) {
	filter := officeUserQuery(f)
	cursor, err := r.collection.Find(ctx, filter, store.PageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("listing office users: %w", err)
	}
	users := []*OfficeUser{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decoding office users: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting office users: %w", err)
	}
	return users, total, nil
}

func (r *OfficeUserRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*OfficeUser, error) {
	var user OfficeUser
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating office user: %w", err)
	}
	return &user, nil
}

func (r *OfficeUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, changes OfficeUserChanges, at time.Time) (*OfficeUser, error) {
	set := bson.M{"updatedAt": at}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Department != nil {
		set["department"] = *changes.Department
	}
	return r.update(ctx, id, set)
}

func (r *OfficeUserRepository) UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, at time.Time) (*OfficeUser, error) {
	return r.update(ctx, id, bson.M{"permissions": perms, "updatedAt": at})
}

func (r *OfficeUserRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) (*OfficeUser, error) {
	return r.update(ctx, id, bson.M{"isActive": active, "updatedAt": at})
}

func (r *OfficeUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (*OfficeUser, error) {
	var user OfficeUser
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("deleting office user: %w", err)
	}
	return &user, nil
}

func (r *OfficeUserRepository) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if _, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"lastLogin": at}}); err != nil {
		return fmt.Errorf("recording office login: %w", err)
	}
	return nil
}
