package auth

import (
	"context"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/authz"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the resolved identity behind a request. Admin always holds the
// record whose permissions govern; OfficeUser is set when the session was
// opened with an office token.
type Principal struct {
	Claims     *TokenClaims
	Admin      *Admin
	OfficeUser *OfficeUser
}

func (p *Principal) Subject() authz.Subject {
	return p.Admin.Subject()
}

const principalKey = "principal"

func WithPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
}

func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil && p.Admin != nil
}

// ActorFrom returns the admin governing the request, or a 401 when no
// authenticator ran.
func ActorFrom(c echo.Context) (*Admin, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return nil, TokenFailure(ErrTokenMissing)
	}
	return p.Admin, nil
}

// Resolver turns verified token claims into a Principal. It is the one place
// that joins office users to admins by email.
type Resolver struct {
	admins  AdminStore
	offices OfficeUserStore
}

func NewResolver(admins AdminStore, offices OfficeUserStore) *Resolver {
	return &Resolver{admins: admins, offices: offices}
}

// Admin resolves an admin token.
func (r *Resolver) Admin(ctx context.Context, claims *TokenClaims) (*Principal, error) {
	if claims.Type != SubjectAdmin {
		return nil, TokenFailure(ErrTokenWrongSubjectType)
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, TokenFailure(ErrTokenMalformed)
	}
	admin, err := r.admins.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Authentication error.")
	}
	if admin == nil {
		return nil, apperr.Authentication(CodeAccountNotFound, "Invalid token. Admin not found.")
	}
	if !admin.IsActive {
		return nil, apperr.Authentication(CodeAccountInactive, "Admin account is deactivated.")
	}
	return &Principal{Claims: claims, Admin: admin}, nil
}

// AdminOrOfficeAdmin resolves either an admin token or an office token whose
// user also holds an active admin record with the same email. A valid office
// identity without such a record is an authorization failure, not an
// authentication one.
func (r *Resolver) AdminOrOfficeAdmin(ctx context.Context, claims *TokenClaims) (*Principal, error) {
	switch claims.Type {
	case SubjectAdmin:
		return r.Admin(ctx, claims)
	case SubjectOffice:
	default:
		return nil, TokenFailure(ErrTokenWrongSubjectType)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, TokenFailure(ErrTokenMalformed)
	}
	user, err := r.offices.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Unexpected(err, "Authentication error.")
	}
	if user == nil {
		return nil, apperr.Authentication(CodeAccountNotFound, "Invalid token. User not found.")
	}
	if !user.IsActive {
		return nil, apperr.Authentication(CodeAccountInactive, "User account is deactivated.")
	}

	admin, err := r.admins.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Unexpected(err, "Authentication error.")
	}
	if admin == nil || !admin.IsActive {
		return nil, apperr.Authorization("Access denied. Admin privileges required.")
	}
	return &Principal{Claims: claims, Admin: admin, OfficeUser: user}, nil
}
