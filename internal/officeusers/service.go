package officeusers

import (
	"context"
	"strings"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OfficeUserService struct {
	offices auth.OfficeUserStore
	admins  auth.AdminStore
	log     *zap.Logger
	now     func() time.Time
}

func NewOfficeUserService(offices auth.OfficeUserStore, admins auth.AdminStore, log *zap.Logger) *OfficeUserService {
	return &OfficeUserService{offices: offices, admins: admins, log: log, now: time.Now}
}

func userID(raw string) (primitive.ObjectID, error) {
	return store.ObjectID(raw, "user")
}

func notFound() error {
	return apperr.NotFound("User not found.")
}

// List pages office users. Anyone holding an admin record, active or not, is
// listed under admin management instead.
func (s *OfficeUserService) List(ctx context.Context, search string, page pagination.Page) ([]*auth.OfficeUser, int64, error) {
	emails, err := s.admins.Emails(ctx)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get office users.")
	}
	users, total, err := s.offices.List(ctx, auth.OfficeUserFilter{Search: search, ExcludeEmails: emails}, page)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get office users.")
	}
	return users, total, nil
}

func (s *OfficeUserService) Get(ctx context.Context, rawID string) (*auth.OfficeUser, error) {
	id, err := userID(rawID)
	if err != nil {
		return nil, err
	}
	user, err := s.offices.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to get user.")
	}
	if user == nil {
		return nil, notFound()
	}
	return user, nil
}

func (s *OfficeUserService) UpdateProfile(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdateProfileCommand) (*auth.OfficeUser, error) {
	id, err := userID(rawID)
	if err != nil {
		return nil, err
	}
	var changes auth.OfficeUserChanges
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperr.Validation("Validation failed", "name must not be empty")
		}
		changes.Name = &name
	}
	if cmd.Department != nil {
		department := strings.TrimSpace(*cmd.Department)
		changes.Department = &department
	}
	if changes.Name == nil && changes.Department == nil {
		return nil, apperr.Validation("Nothing to update.", "provide name or department")
	}

	user, err := s.offices.UpdateProfile(ctx, id, changes, s.now())
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to update user.")
	}
	if user == nil {
		return nil, notFound()
	}
	s.log.Info("office user updated", zap.String("by", actor.Email), zap.String("email", user.Email))
	return user, nil
}

func (s *OfficeUserService) UpdatePermissions(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdatePermissionsCommand) (*auth.OfficeUser, error) {
	id, err := userID(rawID)
	if err != nil {
		return nil, err
	}
	user, err := s.offices.UpdatePermissions(ctx, id, *cmd.Permissions, s.now())
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to update user permissions.")
	}
	if user == nil {
		return nil, notFound()
	}
	s.log.Info("office user permissions updated", zap.String("by", actor.Email), zap.String("email", user.Email))
	return user, nil
}

func (s *OfficeUserService) SetStatus(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdateStatusCommand) (*auth.OfficeUser, error) {
	id, err := userID(rawID)
	if err != nil {
		return nil, err
	}
	if cmd.IsActive == nil {
		return nil, apperr.Validation("isActive must be a boolean value.")
	}
	user, err := s.offices.SetActive(ctx, id, *cmd.IsActive, s.now())
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to update user status.")
	}
	if user == nil {
		return nil, notFound()
	}
	s.log.Info("office user status changed",
		zap.String("by", actor.Email),
		zap.String("email", user.Email),
		zap.Bool("active", user.IsActive),
	)
	return user, nil
}

func (s *OfficeUserService) Delete(ctx context.Context, actor *auth.Admin, rawID string) (*Deleted, error) {
	id, err := userID(rawID)
	if err != nil {
		return nil, err
	}
	user, err := s.offices.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to delete user.")
	}
	if user == nil {
		return nil, notFound()
	}
	s.log.Info("office user deleted", zap.String("by", actor.Email), zap.String("email", user.Email))
	return &Deleted{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
