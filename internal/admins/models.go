package admins

import (
	"time"

	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PermissionsInput is the permissions object clients send. The baseline keys
// are accepted so the console can echo a full map back, but they never
// influence what is stored.
type PermissionsInput struct {
	Dashboard         bool `json:"dashboard"`
	UserManagement    bool `json:"userManagement"`
	PincodeManagement bool `json:"pincodeManagement"`
	AddressForms      bool `json:"addressForms"`
	Reports           bool `json:"reports"`
	Settings          bool `json:"settings"`
}

func (p *PermissionsInput) Grant() authz.Grant {
	if p == nil {
		return authz.Grant{}
	}
	return authz.Grant{
		UserManagement:    p.UserManagement,
		PincodeManagement: p.PincodeManagement,
		AddressForms:      p.AddressForms,
	}
}

type PromoteCommand struct {
	UserID               string            `json:"userId" validate:"required"`
	Permissions          *PermissionsInput `json:"permissions"`
	CanAssignPermissions bool              `json:"canAssignPermissions"`
}

type UpdatePermissionsCommand struct {
	Permissions          *PermissionsInput `json:"permissions" validate:"required"`
	CanAssignPermissions *bool             `json:"canAssignPermissions"`
}

// AdminRef is the populated form of assignedBy.
type AdminRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// AdminView is an admin record as returned by the management routes.
type AdminView struct {
	ID                   primitive.ObjectID `json:"_id"`
	Email                string             `json:"email"`
	Name                 string             `json:"name"`
	Role                 authz.Role         `json:"role"`
	Permissions          authz.Permissions  `json:"permissions"`
	CanAssignPermissions bool               `json:"canAssignPermissions"`
	AssignedBy           *AdminRef          `json:"assignedBy"`
	IsActive             bool               `json:"isActive"`
	LastLogin            *time.Time         `json:"lastLogin"`
	LoginCount           int                `json:"loginCount"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func newView(a *auth.Admin, assignedBy *AdminRef) *AdminView {
	return &AdminView{
		ID:                   a.ID,
		Email:                a.Email,
		Name:                 a.Name,
		Role:                 a.Role,
		Permissions:          a.Permissions,
		CanAssignPermissions: a.CanAssignPermissions,
		AssignedBy:           assignedBy,
		IsActive:             a.IsActive,
		LastLogin:            a.LastLogin,
		LoginCount:           a.LoginCount,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func refOf(a *auth.Admin) *AdminRef {
	return &AdminRef{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Removed identifies the admin record a removal deleted.
type Removed struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}
