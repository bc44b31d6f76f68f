package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"OCLAdmin/internal/apitest"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/auth/authtest"
	"OCLAdmin/internal/authz"
	"OCLAdmin/internal/config"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type fixture struct {
	tokens  *auth.TokenIssuer
	admins  *authtest.Admins
	offices *authtest.OfficeUsers
	authn   *Authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenIssuer("middleware-test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	admins := authtest.NewAdmins()
	offices := authtest.NewOfficeUsers()
	return &fixture{
		tokens:  tokens,
		admins:  admins,
		offices: offices,
		authn:   NewAuthenticator(tokens, auth.NewResolver(admins, offices)),
	}
}

func (f *fixture) token(t *testing.T, id string, typ auth.SubjectType) string {
	t.Helper()
	token, err := f.tokens.Issue(id, typ)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func ok(c echo.Context) error {
	p, _ := auth.PrincipalFrom(c)
	return response.OK(c, p.Admin.Email)
}

func TestAuthenticatorAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.admins.Add(&auth.Admin{Email: "a@ocl.com", Role: authz.RoleAdmin, IsActive: true})
	office := f.offices.Add(&auth.OfficeUser{Email: "a@ocl.com", IsActive: true})

	e := apitest.NewEcho()
	e.GET("/admin", ok, f.authn.Admin())

	cases := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"valid", f.token(t, admin.ID.Hex(), auth.SubjectAdmin), http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, auth.CodeTokenMissing},
		{"garbage", "not.a.jwt", http.StatusUnauthorized, auth.CodeTokenMalformed},
		{"office token", f.token(t, office.ID.Hex(), auth.SubjectOffice), http.StatusUnauthorized, auth.CodeTokenWrongSubjectType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/admin", Token: tc.token})
			apitest.Expect(t, rr, tc.status)
			if body.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Code)
			}
		})
	}
}

func TestAuthenticatorOfficeAdmin(t *testing.T) {
	f := newFixture(t)
	f.admins.Add(&auth.Admin{Email: "both@ocl.com", Role: authz.RoleAdmin, IsActive: true})
	f.admins.Add(&auth.Admin{Email: "dormant@ocl.com", Role: authz.RoleAdmin})
	both := f.offices.Add(&auth.OfficeUser{Email: "both@ocl.com", IsActive: true})
	dormant := f.offices.Add(&auth.OfficeUser{Email: "dormant@ocl.com", IsActive: true})
	staff := f.offices.Add(&auth.OfficeUser{Email: "staff@ocl.com", IsActive: true})

	e := apitest.NewEcho()
	e.GET("/shared", ok, f.authn.AdminOrOfficeAdmin())

	rr, body := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/shared", Token: f.token(t, both.ID.Hex(), auth.SubjectOffice)})
	apitest.Expect(t, rr, http.StatusOK)
	if string(body.Data) != `"both@ocl.com"` {
		t.Fatalf("expected admin record to govern, got %s", body.Data)
	}

	for _, id := range []string{dormant.ID.Hex(), staff.ID.Hex()} {
		rr, _ := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/shared", Token: f.token(t, id, auth.SubjectOffice)})
		apitest.Expect(t, rr, http.StatusForbidden)
	}
}

func TestRoleGate(t *testing.T) {
	gate, err := NewRoleGate(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		role   authz.Role
		path   string
		method string
		want   bool
	}{
		{authz.RoleSuperAdmin, "/api/admin/admins", http.MethodGet, true},
		{authz.RoleSuperAdmin, "/api/admin/admins", http.MethodPost, true},
		{authz.RoleSuperAdmin, "/api/admin/admins/:id/permissions", http.MethodPut, true},
		{authz.RoleSuperAdmin, "/api/admin/admins/:id", http.MethodDelete, true},
		{authz.RoleSuperAdmin, "/api/admin/admins", http.MethodDelete, false},
		{authz.RoleSuperAdmin, "/api/admin/notifications", http.MethodGet, true},
		{authz.RoleAdmin, "/api/admin/notifications", http.MethodGet, false},
		{authz.RoleAdmin, "/api/admin/admins", http.MethodGet, false},
		{authz.RoleAdmin, "/api/admin/admins/:id", http.MethodDelete, false},
		{authz.Role("root"), "/api/admin/admins", http.MethodGet, false},
	}
	for _, tc := range cases {
		got, err := gate.Allowed(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("%s %s %s: %v", tc.role, tc.method, tc.path, err)
		}
		if got != tc.want {
			t.Errorf("%s %s %s: expected %v, got %v", tc.role, tc.method, tc.path, tc.want, got)
		}
	}
}

func TestRoleGateMiddleware(t *testing.T) {
	gate, err := NewRoleGate(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	super := &auth.Principal{Admin: &auth.Admin{Email: "s@ocl.com", Role: authz.RoleSuperAdmin, IsActive: true}}
	plain := &auth.Principal{Admin: &auth.Admin{Email: "p@ocl.com", Role: authz.RoleAdmin, IsActive: true}}

	for _, tc := range []struct {
		principal *auth.Principal
		status    int
	}{{super, http.StatusOK}, {plain, http.StatusForbidden}} {
		e := apitest.NewEcho()
		e.DELETE("/api/admin/admins/:id", ok, apitest.As(tc.principal), gate.Middleware())
		rr, _ := apitest.Do(t, e, apitest.Request{Method: http.MethodDelete, Path: "/api/admin/admins/abc"})
		apitest.Expect(t, rr, tc.status)
	}
}

func TestRequireCapability(t *testing.T) {
	limited := &auth.Principal{Admin: &auth.Admin{
		Email:       "l@ocl.com",
		Role:        authz.RoleAdmin,
		Permissions: authz.Grant{AddressForms: true}.Permissions(),
	}}
	super := &auth.Principal{Admin: &auth.Admin{Email: "s@ocl.com", Role: authz.RoleSuperAdmin}}
	assigner := &auth.Principal{Admin: &auth.Admin{Email: "x@ocl.com", Role: authz.RoleAdmin, CanAssignPermissions: true}}

	cases := []struct {
		name      string
		principal *auth.Principal
		guard     echo.MiddlewareFunc
		status    int
	}{
		{"granted capability", limited, RequireCapability(authz.AddressForms), http.StatusOK},
		{"missing capability", limited, RequireCapability(authz.PincodeManagement), http.StatusForbidden},
		{"baseline capability", limited, RequireCapability(authz.Dashboard), http.StatusOK},
		{"super admin bypass", super, RequireCapability(authz.UserManagement), http.StatusOK},
		{"assign denied", limited, RequireAssign(), http.StatusForbidden},
		{"assign flag", assigner, RequireAssign(), http.StatusOK},
		{"assign super admin", super, RequireAssign(), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := apitest.NewEcho()
			e.GET("/x", ok, apitest.As(tc.principal), tc.guard)
			rr, body := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/x"})
			apitest.Expect(t, rr, tc.status)
			if tc.status == http.StatusForbidden && body.Code != "forbidden" {
				t.Fatalf("expected forbidden code, got %q", body.Code)
			}
		})
	}
}

func TestRequireCapabilityWithoutPrincipal(t *testing.T) {
	e := apitest.NewEcho()
	e.GET("/x", ok, RequireCapability(authz.Dashboard))
	rr, _ := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/x"})
	apitest.Expect(t, rr, http.StatusUnauthorized)
}

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, &config.Config{CORSOrigins: []string{"http://localhost:5173"}}, zap.NewNop())
	e.GET("/ping", func(c echo.Context) error { return response.OK(c, "pong") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("expected request id header")
	}
	if got := rr.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}

	rr, body := apitest.Do(t, e, apitest.Request{Method: http.MethodGet, Path: "/panic"})
	apitest.Expect(t, rr, http.StatusInternalServerError)
	if body.Success || body.Error == "" {
		t.Fatalf("expected error envelope, got %+v", body)
	}
}
