package auth_test

import (
	"context"
	"errors"
	"testing"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/auth/authtest"
	"OCLAdmin/internal/authz"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func claims(id primitive.ObjectID, t auth.SubjectType) *auth.TokenClaims {
	return &auth.TokenClaims{UserID: id.Hex(), Type: t}
}

func TestResolveAdminToken(t *testing.T) {
	admins := authtest.NewAdmins()
	active := admins.Add(&auth.Admin{Email: "a@ocl.com", Role: authz.RoleAdmin, IsActive: true})
	inactive := admins.Add(&auth.Admin{Email: "b@ocl.com", Role: authz.RoleAdmin})
	r := auth.NewResolver(admins, authtest.NewOfficeUsers())
	ctx := context.Background()

	p, err := r.Admin(ctx, claims(active.ID, auth.SubjectAdmin))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Admin.ID != active.ID || p.OfficeUser != nil {
		t.Fatalf("unexpected principal %+v", p)
	}

	_, err = r.Admin(ctx, claims(inactive.ID, auth.SubjectAdmin))
	assertAuthFailure(t, err, auth.CodeAccountInactive)

	_, err = r.Admin(ctx, claims(primitive.NewObjectID(), auth.SubjectAdmin))
	assertAuthFailure(t, err, auth.CodeAccountNotFound)

	_, err = r.Admin(ctx, claims(active.ID, auth.SubjectOffice))
	assertAuthFailure(t, err, auth.CodeTokenWrongSubjectType)

	_, err = r.Admin(ctx, &auth.TokenClaims{UserID: "nope", Type: auth.SubjectAdmin})
	assertAuthFailure(t, err, auth.CodeTokenMalformed)
}

func TestResolveOfficeTokenThroughMatchingAdmin(t *testing.T) {
	admins := authtest.NewAdmins()
	offices := authtest.NewOfficeUsers()
	admin := admins.Add(&auth.Admin{
		Email:       "shared@ocl.com",
		Role:        authz.RoleAdmin,
		IsActive:    true,
		Permissions: authz.Grant{PincodeManagement: true}.Permissions(),
	})
	office := offices.Add(&auth.OfficeUser{Email: "Shared@OCL.com ", IsActive: true})
	r := auth.NewResolver(admins, offices)

	p, err := r.AdminOrOfficeAdmin(context.Background(), claims(office.ID, auth.SubjectOffice))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Admin.ID != admin.ID {
		t.Fatalf("expected admin %s to govern, got %s", admin.ID.Hex(), p.Admin.ID.Hex())
	}
	if p.OfficeUser == nil || p.OfficeUser.ID != office.ID {
		t.Fatal("expected office user on principal")
	}
	if !authz.CanAccess(p.Subject(), authz.PincodeManagement) {
		t.Fatal("expected admin permissions to govern")
	}
}

func TestResolveOfficeTokenFailures(t *testing.T) {
	admins := authtest.NewAdmins()
	offices := authtest.NewOfficeUsers()
	admins.Add(&auth.Admin{Email: "dormant@ocl.com", Role: authz.RoleAdmin})
	dormantAdmin := offices.Add(&auth.OfficeUser{Email: "dormant@ocl.com", IsActive: true})
	noAdmin := offices.Add(&auth.OfficeUser{Email: "plain@ocl.com", IsActive: true})
	inactive := offices.Add(&auth.OfficeUser{Email: "gone@ocl.com"})
	r := auth.NewResolver(admins, offices)
	ctx := context.Background()

	_, err := r.AdminOrOfficeAdmin(ctx, claims(dormantAdmin.ID, auth.SubjectOffice))
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("inactive matching admin: expected authorization failure, got %v", err)
	}
	_, err = r.AdminOrOfficeAdmin(ctx, claims(noAdmin.ID, auth.SubjectOffice))
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("no matching admin: expected authorization failure, got %v", err)
	}
	_, err = r.AdminOrOfficeAdmin(ctx, claims(primitive.NewObjectID(), auth.SubjectOffice))
	assertAuthFailure(t, err, auth.CodeAccountNotFound)

	_, err = r.AdminOrOfficeAdmin(ctx, claims(inactive.ID, auth.SubjectOffice))
	assertAuthFailure(t, err, auth.CodeAccountInactive)
}

func TestResolveStoreErrorIsUnexpected(t *testing.T) {
	admins := authtest.NewAdmins()
	admins.Err = errors.New("connection reset")
	r := auth.NewResolver(admins, authtest.NewOfficeUsers())

	_, err := r.Admin(context.Background(), claims(primitive.NewObjectID(), auth.SubjectAdmin))
	if !apperr.IsKind(err, apperr.KindUnexpected) {
		t.Fatalf("expected unexpected kind, got %v", err)
	}
}

func assertAuthFailure(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if appErr.Kind != apperr.KindAuthentication || appErr.Code != code {
		t.Fatalf("expected authentication/%s, got %s/%s", code, appErr.Kind, appErr.Code)
	}
}
