package middleware

import (
	"fmt"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const roleModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// rolePolicies are matched against the registered route pattern, not the raw
// URL, so path parameters never leak into the decision.
var rolePolicies = [][]string{
	{string(authz.RoleSuperAdmin), "/api/admin/admins", "^(GET|POST)$"},
	{string(authz.RoleSuperAdmin), "/api/admin/admins/*", "^(PUT|DELETE)$"},
	{string(authz.RoleSuperAdmin), "/api/admin/notifications", "^GET$"},
}

// RoleGate restricts admin management routes to the super_admin role.
type RoleGate struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func NewRoleGate(log *zap.Logger) (*RoleGate, error) {
	m, err := model.NewModelFromString(roleModel)
	if err != nil {
		return nil, fmt.Errorf("parsing role model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("creating enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(rolePolicies); err != nil {
		return nil, fmt.Errorf("loading role policies: %w", err)
	}
	return &RoleGate{enforcer: enforcer, log: log}, nil
}

// Allowed reports whether role may call method on the route pattern path.
func (g *RoleGate) Allowed(role authz.Role, path, method string) (bool, error) {
	return g.enforcer.Enforce(string(role), path, method)
}

func (g *RoleGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := auth.PrincipalFrom(c)
			if !ok {
				return auth.TokenFailure(auth.ErrTokenMissing)
			}
			allowed, err := g.Allowed(principal.Admin.Role, c.Path(), c.Request().Method)
			if err != nil {
				return apperr.Unexpected(err, "Authorization error.")
			}
			if !allowed {
				g.log.Debug("role gate denied",
					zap.String("role", string(principal.Admin.Role)),
					zap.String("path", c.Path()),
					zap.String("method", c.Request().Method),
				)
				return apperr.Authorization("Access denied. Super admin privileges required.")
			}
			return next(c)
		}
	}
}
