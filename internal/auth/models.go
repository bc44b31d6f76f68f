package auth

import (
	"strings"
	"time"

	"OCLAdmin/internal/authz"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Admin struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Email                string              `bson:"email" json:"email"`
	PasswordHash         string              `bson:"password" json:"-"`
	Name                 string              `bson:"name" json:"name"`
	Role                 authz.Role          `bson:"role" json:"role"`
	Permissions          authz.Permissions   `bson:"permissions" json:"permissions"`
	CanAssignPermissions bool                `bson:"canAssignPermissions" json:"canAssignPermissions"`
	AssignedBy           *primitive.ObjectID `bson:"assignedBy" json:"assignedBy"` // audit only
	IsActive             bool                `bson:"isActive" json:"isActive"`
	LastLogin            *time.Time          `bson:"lastLogin" json:"lastLogin"`
	LoginCount           int                 `bson:"loginCount" json:"loginCount"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Subject is the privilege view the authorization evaluator works on.
func (a *Admin) Subject() authz.Subject {
	return authz.Subject{
		Role:                 a.Role,
		Permissions:          a.Permissions,
		CanAssignPermissions: a.CanAssignPermissions,
	}
}

func (a *Admin) SuperAdmin() bool {
	return a.Role == authz.RoleSuperAdmin
}

// OfficeUser is a back-office account. Sharing an email with an Admin means
// the same person also holds admin capabilities.
type OfficeUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Role         string             `bson:"role" json:"role"`
	Department   string             `bson:"department" json:"department"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Permissions  authz.Permissions  `bson:"permissions" json:"permissions"`
	LastLogin    *time.Time         `bson:"lastLogin" json:"lastLogin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Credential struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminProfile is the admin summary returned on login.
type AdminProfile struct {
	ID                   primitive.ObjectID `json:"id"`
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	Role                 authz.Role         `json:"role"`
	LastLogin            *time.Time         `json:"lastLogin"`
	Permissions          authz.Permissions  `json:"permissions"`
	CanAssignPermissions bool               `json:"canAssignPermissions"`
}

type LoginResult struct {
	Token string       `json:"token"`
	Admin AdminProfile `json:"admin"`
}

type OfficeProfile struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	Department  string             `json:"department"`
	Permissions authz.Permissions  `json:"permissions"`
	IsAdmin     bool               `json:"isAdmin"`
}

type OfficeLoginResult struct {
	Token string        `json:"token"`
	User  OfficeProfile `json:"user"`
}

// NormalizeEmail is the canonical form emails are stored and joined in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
