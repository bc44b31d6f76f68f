package admins

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"OCLAdmin/internal/apitest"
	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/auth/authtest"
	"OCLAdmin/internal/authz"
	"OCLAdmin/pkg/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotifier) Notify(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to)
	return nil
}

type env struct {
	admins   *authtest.Admins
	offices  *authtest.OfficeUsers
	notifier *recordingNotifier
	service  *AdminService
	super    *auth.Admin
}

func newEnv() *env {
	admins := authtest.NewAdmins()
	offices := authtest.NewOfficeUsers()
	notifier := &recordingNotifier{}
	super := admins.Add(&auth.Admin{
		Email:                "admin@ocl.com",
		Name:                 "Super Admin",
		Role:                 authz.RoleSuperAdmin,
		Permissions:          authz.FullGrant().Permissions(),
		CanAssignPermissions: true,
		IsActive:             true,
	})
	return &env{
		admins:   admins,
		offices:  offices,
		notifier: notifier,
		service:  NewAdminService(admins, offices, notifier, zap.NewNop()),
		super:    super,
	}
}

func TestPromote(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := e.offices.Add(&auth.OfficeUser{Email: "staff@ocl.com", Name: "Staff", PasswordHash: "hash-from-office", IsActive: true})

	view, err := e.service.Promote(ctx, e.super, PromoteCommand{
		UserID:      user.ID.Hex(),
		Permissions: &PermissionsInput{PincodeManagement: true, Dashboard: false},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := authz.Permissions{Dashboard: true, PincodeManagement: true, Reports: true, Settings: true}
	if view.Permissions != want {
		t.Fatalf("expected %+v, got %+v", want, view.Permissions)
	}
	if view.Role != authz.RoleAdmin || view.AssignedBy == nil || view.AssignedBy.ID != e.super.ID {
		t.Fatalf("unexpected view %+v", view)
	}
	stored := e.admins.Get(view.ID)
	if stored.PasswordHash != "hash-from-office" {
		t.Fatal("expected office password hash to be copied")
	}
	if len(e.notifier.sent) != 1 || e.notifier.sent[0] != "staff@ocl.com" {
		t.Fatalf("expected one notification to staff, got %v", e.notifier.sent)
	}

	_, err = e.service.Promote(ctx, e.super, PromoteCommand{UserID: user.ID.Hex()})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("second promotion: expected conflict, got %v", err)
	}

	_, err = e.service.Promote(ctx, e.super, PromoteCommand{UserID: primitive.NewObjectID().Hex()})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}

	_, err = e.service.Promote(ctx, e.super, PromoteCommand{UserID: "xyz"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("bad id: expected validation, got %v", err)
	}
}

func TestUpdatePermissionsForcesBaseline(t *testing.T) {
	e := newEnv()
	target := e.admins.Add(&auth.Admin{Email: "a@ocl.com", Role: authz.RoleAdmin, IsActive: true})
	yes := true

	view, err := e.service.UpdatePermissions(context.Background(), e.super, target.ID.Hex(), UpdatePermissionsCommand{
		Permissions:          &PermissionsInput{Dashboard: false, UserManagement: true, Reports: false},
		CanAssignPermissions: &yes,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := e.admins.Get(target.ID)
	if !stored.Permissions.Dashboard || !stored.Permissions.UserManagement || !stored.Permissions.Reports || !stored.Permissions.Settings {
		t.Fatalf("expected baseline plus userManagement, got %+v", stored.Permissions)
	}
	if stored.Permissions.PincodeManagement || stored.Permissions.AddressForms {
		t.Fatalf("unexpected grants %+v", stored.Permissions)
	}
	if !stored.CanAssignPermissions || !view.CanAssignPermissions {
		t.Fatal("expected canAssignPermissions to be set")
	}
}

func TestSuperAdminIsImmutable(t *testing.T) {
	e := newEnv()
	other := e.admins.Add(&auth.Admin{Email: "root2@ocl.com", Role: authz.RoleSuperAdmin, IsActive: true})
	ctx := context.Background()

	_, err := e.service.UpdatePermissions(ctx, e.super, other.ID.Hex(), UpdatePermissionsCommand{Permissions: &PermissionsInput{}})
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("update: expected authorization failure, got %v", err)
	}
	_, err = e.service.Remove(ctx, e.super, other.ID.Hex())
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("remove: expected authorization failure, got %v", err)
	}
	if e.admins.Writes != 0 {
		t.Fatalf("expected no store mutation, got %d writes", e.admins.Writes)
	}
	if e.admins.Get(other.ID) == nil {
		t.Fatal("super admin must survive")
	}
}

func TestRemove(t *testing.T) {
	e := newEnv()
	target := e.admins.Add(&auth.Admin{Email: "a@ocl.com", Name: "A", Role: authz.RoleAdmin, IsActive: true})
	office := e.offices.Add(&auth.OfficeUser{Email: "a@ocl.com", IsActive: true})

	removed, err := e.service.Remove(context.Background(), e.super, target.ID.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Email != "a@ocl.com" {
		t.Fatalf("unexpected removal %+v", removed)
	}
	if e.admins.Get(target.ID) != nil {
		t.Fatal("admin record should be gone")
	}
	if e.offices.Get(office.ID) == nil {
		t.Fatal("office user must persist")
	}

	_, err = e.service.Remove(context.Background(), e.super, target.ID.Hex())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListResolvesAssignedBy(t *testing.T) {
	e := newEnv()
	by := e.super.ID
	e.admins.Add(&auth.Admin{Email: "a@ocl.com", Name: "Alpha", Role: authz.RoleAdmin, AssignedBy: &by})
	e.admins.Add(&auth.Admin{Email: "b@ocl.com", Name: "Beta", Role: authz.RoleAdmin})

	views, total, err := e.service.List(context.Background(), "alpha", pagination.Page{Number: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected one match, got %d", total)
	}
	if views[0].AssignedBy == nil || views[0].AssignedBy.Email != "admin@ocl.com" {
		t.Fatalf("expected assignedBy populated, got %+v", views[0].AssignedBy)
	}
}

func TestHandlers(t *testing.T) {
	e := newEnv()
	target := e.admins.Add(&auth.Admin{Email: "a@ocl.com", Role: authz.RoleAdmin, IsActive: true})
	h := NewAdminHandler(e.service)

	srv := apitest.NewEcho()
	as := apitest.As(&auth.Principal{Admin: e.super})
	srv.GET("/api/admin/admins", h.List, as)
	srv.PUT("/api/admin/admins/:id/permissions", h.UpdatePermissions, as)
	srv.DELETE("/api/admin/admins/:id", h.Delete, as)

	rr, body := apitest.Do(t, srv, apitest.Request{Method: http.MethodGet, Path: "/api/admin/admins?limit=1"})
	apitest.Expect(t, rr, http.StatusOK)
	if body.Pagination == nil || body.Pagination.TotalCount != 2 || !body.Pagination.HasNext {
		t.Fatalf("unexpected pagination %+v", body.Pagination)
	}

	rr, body = apitest.Do(t, srv, apitest.Request{
		Method: http.MethodPut,
		Path:   "/api/admin/admins/" + target.ID.Hex() + "/permissions",
		Body:   map[string]interface{}{"permissions": map[string]bool{"dashboard": false, "userManagement": true}},
	})
	apitest.Expect(t, rr, http.StatusOK)
	var view AdminView
	body.DecodeData(t, &view)
	if !view.Permissions.Dashboard || !view.Permissions.UserManagement {
		t.Fatalf("expected dashboard forced and userManagement granted, got %+v", view.Permissions)
	}

	rr, _ = apitest.Do(t, srv, apitest.Request{
		Method: http.MethodPut,
		Path:   "/api/admin/admins/" + target.ID.Hex() + "/permissions",
		Body:   map[string]interface{}{},
	})
	apitest.Expect(t, rr, http.StatusBadRequest)

	rr, body = apitest.Do(t, srv, apitest.Request{Method: http.MethodDelete, Path: "/api/admin/admins/" + e.super.ID.Hex()})
	apitest.Expect(t, rr, http.StatusForbidden)
	if body.Error != "Cannot remove super admin role." {
		t.Fatalf("unexpected error %q", body.Error)
	}

	rr, _ = apitest.Do(t, srv, apitest.Request{Method: http.MethodDelete, Path: "/api/admin/admins/not-an-id"})
	apitest.Expect(t, rr, http.StatusBadRequest)
}
