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

// ErrDuplicateEmail is returned when an insert hits the unique email index.
var ErrDuplicateEmail = errors.New("email already exists")

// AdminStore is the credential store for admins. Find methods return
// (nil, nil) when nothing matches.
type AdminStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Admin, error)
	List(ctx context.Context, search string, page pagination.Page) ([]*Admin, int64, error)
	Emails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, admin *Admin) error
	// UpdatePermissions and Delete never touch super_admin records; both
	// report (nil/false) when no eligible record matched.
	UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, canAssign *bool, at time.Time) (*Admin, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{collection: db.Collection(config.AdminsCollection)}
}

var notSuperAdmin = bson.M{"$ne": authz.RoleSuperAdmin}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M) (*Admin, error) {
	var admin Admin
	err := r.collection.FindOne(ctx, filter).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *AdminRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Admin, error) {
	if len(ids) == 0 {
		return []*Admin{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("finding admins by id: %w", err)
	}
	admins := []*Admin{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("decoding admins: %w", err)
	}
	return admins, nil
}

func adminFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	return bson.M{"$or": store.AnyField(search, "name", "email")}
}

func (r *AdminRepository) List(ctx context.Context, search string, page pagination.Page) ([]*Admin, int64, error) {
	filter := adminFilter(search)
	cursor, err := r.collection.Find(ctx, filter, store.PageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("listing admins: %w", err)
	}
	admins := []*Admin{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, 0, fmt.Errorf("decoding admins: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting admins: %w", err)
	}
	return admins, total, nil
}

func (r *AdminRepository) Emails(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "email", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing admin emails: %w", err)
	}
	emails := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			emails = append(emails, s)
		}
	}
	return emails, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *Admin) error {
	admin.Email = NormalizeEmail(admin.Email)
	_, err := r.collection.InsertOne(ctx, admin)
	if err != nil {
		if store.IsDuplicate(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePermissions(ctx context.Context, id primitive.ObjectID, perms authz.Permissions, canAssign *bool, at time.Time) (*Admin, error) {
	set := bson.M{"permissions": perms, "updatedAt": at}
	if canAssign != nil {
		set["canAssignPermissions"] = *canAssign
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var admin Admin
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "role": notSuperAdmin},
		bson.M{"$set": set},
		opts,
	).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating admin permissions: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "role": notSuperAdmin})
	if err != nil {
		return false, fmt.Errorf("deleting admin: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *AdminRepository) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"lastLogin": at},
		"$inc": bson.M{"loginCount": 1},
	})
	if err != nil {
		return fmt.Errorf("recording admin login: %w", err)
	}
	return nil
}
