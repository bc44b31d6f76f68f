package admins

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"
	"OCLAdmin/internal/store"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier queues an email to the person whose admin role changed.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

type AdminService struct {
	admins   auth.AdminStore
	offices  auth.OfficeUserStore
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewAdminService(admins auth.AdminStore, offices auth.OfficeUserStore, notifier Notifier, log *zap.Logger) *AdminService {
	return &AdminService{admins: admins, offices: offices, notifier: notifier, log: log, now: time.Now}
}

func (s *AdminService) List(ctx context.Context, search string, page pagination.Page) ([]*AdminView, int64, error) {
	records, total, err := s.admins.List(ctx, search, page)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get admins.")
	}

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, a := range records {
		if a.AssignedBy != nil && !seen[*a.AssignedBy] {
			seen[*a.AssignedBy] = true
			ids = append(ids, *a.AssignedBy)
		}
	}
	assigners, err := s.admins.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, apperr.Unexpected(err, "Failed to get admins.")
	}
	refs := make(map[primitive.ObjectID]*AdminRef, len(assigners))
	for _, a := range assigners {
		refs[a.ID] = refOf(a)
	}

	views := make([]*AdminView, 0, len(records))
	for _, a := range records {
		var ref *AdminRef
		if a.AssignedBy != nil {
			ref = refs[*a.AssignedBy]
		}
		views = append(views, newView(a, ref))
	}
	return views, total, nil
}

// Promote gives an office user an admin record carrying the same email and
// password hash.
func (s *AdminService) Promote(ctx context.Context, actor *auth.Admin, cmd PromoteCommand) (*AdminView, error) {
	userID, err := store.ObjectID(cmd.UserID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.offices.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to assign admin role.")
	}
	if user == nil {
		return nil, apperr.NotFound("Office user not found.")
	}
	existing, err := s.admins.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to assign admin role.")
	}
	if existing != nil {
		return nil, apperr.Conflict("This user is already an admin.")
	}

	at := s.now()
	assignedBy := actor.ID
	admin := &auth.Admin{
		ID:                   primitive.NewObjectID(),
		Email:                user.Email,
		PasswordHash:         user.PasswordHash,
		Name:                 user.Name,
		Role:                 authz.RoleAdmin,
		Permissions:          cmd.Permissions.Grant().Permissions(),
		CanAssignPermissions: cmd.CanAssignPermissions,
		AssignedBy:           &assignedBy,
		IsActive:             true,
		CreatedAt:            at,
		UpdatedAt:            at,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return nil, apperr.Conflict("Admin with this email already exists.")
		}
		return nil, apperr.Unexpected(err, "Failed to assign admin role.")
	}

	s.log.Info("admin role assigned",
		zap.String("by", actor.Email),
		zap.String("email", admin.Email),
	)
	s.notify(ctx, admin.Email, "You have been granted admin access", assignedBody(admin))
	return newView(admin, refOf(actor)), nil
}

// editable loads an admin that management routes may change. super_admin
// records are refused with message.
func (s *AdminService) editable(ctx context.Context, id primitive.ObjectID, message, failure string) (*auth.Admin, error) {
	target, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, failure)
	}
	if target == nil {
		return nil, apperr.NotFound("Admin not found.")
	}
	if target.SuperAdmin() {
		return nil, apperr.Authorization(message)
	}
	return target, nil
}

func (s *AdminService) UpdatePermissions(ctx context.Context, actor *auth.Admin, rawID string, cmd UpdatePermissionsCommand) (*AdminView, error) {
	const failure = "Failed to update admin permissions."
	id, err := store.ObjectID(rawID, "admin")
	if err != nil {
		return nil, err
	}
	if _, err := s.editable(ctx, id, "Cannot modify super admin permissions.", failure); err != nil {
		return nil, err
	}

	updated, err := s.admins.UpdatePermissions(ctx, id, cmd.Permissions.Grant().Permissions(), cmd.CanAssignPermissions, s.now())
	if err != nil {
		return nil, apperr.Unexpected(err, failure)
	}
	if updated == nil {
		// removed or promoted between the read and the write
		return nil, apperr.NotFound("Admin not found.")
	}

	s.log.Info("admin permissions updated",
		zap.String("by", actor.Email),
		zap.String("email", updated.Email),
	)
	return newView(updated, nil), nil
}

// Remove deletes the admin record. The office user account is untouched.
func (s *AdminService) Remove(ctx context.Context, actor *auth.Admin, rawID string) (*Removed, error) {
	const failure = "Failed to remove admin role."
	id, err := store.ObjectID(rawID, "admin")
	if err != nil {
		return nil, err
	}
	target, err := s.editable(ctx, id, "Cannot remove super admin role.", failure)
	if err != nil {
		return nil, err
	}
	deleted, err := s.admins.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, failure)
	}
	if !deleted {
		return nil, apperr.NotFound("Admin not found.")
	}

	s.log.Info("admin role removed",
		zap.String("by", actor.Email),
		zap.String("email", target.Email),
	)
	s.notify(ctx, target.Email, "Your admin access has been removed", removedBody(target))
	return &Removed{ID: target.ID, Name: target.Name, Email: target.Email}, nil
}

// notify never fails the request; a lost email is only logged.
func (s *AdminService) notify(ctx context.Context, to, subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, to, subject, body); err != nil {
		s.log.Warn("queueing admin notification", zap.String("to", to), zap.Error(err))
	}
}

func assignedBody(a *auth.Admin) string {
	var granted []string
	for _, c := range authz.Capabilities() {
		if a.Permissions.Has(c) {
			granted = append(granted, html.EscapeString(c.Label()))
		}
	}
	return fmt.Sprintf("<p>Hello %s,</p><p>You now have admin access to the OCL console with: %s.</p>",
		html.EscapeString(a.Name), strings.Join(granted, ", "))
}

func removedBody(a *auth.Admin) string {
	return fmt.Sprintf("<p>Hello %s,</p><p>Your admin access to the OCL console has been removed. Your office account is unchanged.</p>",
		html.EscapeString(a.Name))
}
