package auth

import (
	"context"
	"errors"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/authz"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuthService struct {
	admins  AdminStore
	offices OfficeUserStore
	tokens  *TokenIssuer
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(admins AdminStore, offices OfficeUserStore, tokens *TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{admins: admins, offices: offices, tokens: tokens, log: log, now: time.Now}
}

func invalidCredentials() *apperr.Error {
	return apperr.Authentication(CodeInvalidCredentials, "Invalid email or password.")
}

func (s *AuthService) LoginAdmin(ctx context.Context, cred Credential) (*LoginResult, error) {
	email := NormalizeEmail(cred.Email)
	s.log.Info("admin login attempt", zap.String("email", email))

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}
	if admin == nil {
		return nil, invalidCredentials()
	}
	if !admin.IsActive {
		return nil, apperr.Authentication(CodeAccountInactive, "Admin account is deactivated.")
	}
	if !CheckPasswordHash(cred.Password, admin.PasswordHash) {
		return nil, invalidCredentials()
	}

	at := s.now()
	if err := s.admins.RecordLogin(ctx, admin.ID, at); err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}
	admin.LastLogin = &at
	admin.LoginCount++

	token, err := s.tokens.Issue(admin.ID.Hex(), SubjectAdmin)
	if err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}

	s.log.Info("admin login successful", zap.String("email", admin.Email), zap.String("role", string(admin.Role)))
	return &LoginResult{
		Token: token,
		Admin: AdminProfile{
			ID:                   admin.ID,
			Name:                 admin.Name,
			Email:                admin.Email,
			Role:                 admin.Role,
			LastLogin:            admin.LastLogin,
			Permissions:          admin.Permissions,
			CanAssignPermissions: admin.CanAssignPermissions,
		},
	}, nil
}

func (s *AuthService) LoginOffice(ctx context.Context, cred Credential) (*OfficeLoginResult, error) {
	email := NormalizeEmail(cred.Email)
	user, err := s.offices.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}
	if user == nil {
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		return nil, apperr.Authentication(CodeAccountInactive, "User account is deactivated.")
	}
	if !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return nil, invalidCredentials()
	}

	at := s.now()
	if err := s.offices.RecordLogin(ctx, user.ID, at); err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}

	token, err := s.tokens.Issue(user.ID.Hex(), SubjectOffice)
	if err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}

	admin, err := s.admins.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, apperr.Unexpected(err, "Login failed. Please try again.")
	}
	return &OfficeLoginResult{
		Token: token,
		User: OfficeProfile{
			ID:          user.ID,
			Name:        user.Name,
			Email:       user.Email,
			Role:        user.Role,
			Department:  user.Department,
			Permissions: user.Permissions,
			IsAdmin:     admin != nil && admin.IsActive,
		},
	}, nil
}

// SeedAdmin describes the super admin created on an empty store.
type SeedAdmin struct {
	Email    string
	Name     string
	Password string
}

// EnsureDefaultAdmin creates a super admin when no admin exists. Without a
// configured password nothing is seeded.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, seed SeedAdmin) (*Admin, error) {
	if seed.Password == "" {
		return nil, nil
	}
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	hash, err := HashPassword(seed.Password)
	if err != nil {
		return nil, err
	}
	at := s.now()
	admin := &Admin{
		ID:                   primitive.NewObjectID(),
		Email:                NormalizeEmail(seed.Email),
		PasswordHash:         hash,
		Name:                 seed.Name,
		Role:                 authz.RoleSuperAdmin,
		Permissions:          authz.FullGrant().Permissions(),
		CanAssignPermissions: true,
		IsActive:             true,
		CreatedAt:            at,
		UpdatedAt:            at,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		// another instance seeded first
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, nil
		}
		return nil, err
	}
	s.log.Info("default super admin created", zap.String("email", admin.Email))
	return admin, nil
}
