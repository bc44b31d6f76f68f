package officeusers

import (
	"OCLAdmin/internal/authz"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UpdateProfileCommand struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

// UpdatePermissionsCommand stores the given flags as-is; office users have no
// baseline forcing.
type UpdatePermissionsCommand struct {
	Permissions *authz.Permissions `json:"permissions" validate:"required"`
}

type UpdateStatusCommand struct {
	IsActive *bool `json:"isActive"`
}

type Deleted struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}
