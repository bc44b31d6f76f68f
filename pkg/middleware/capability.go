package middleware

import (
	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"

	"github.com/labstack/echo/v4"
)

// RequireCapability lets the request through only when the principal may use
// capability. It must run after an Authenticator middleware.
func RequireCapability(capability authz.Capability) echo.MiddlewareFunc {
	return guard(func(s authz.Subject) bool {
		return authz.CanAccess(s, capability)
	}, "Access denied. "+capability.Label()+" permission required.")
}

// RequireAssign guards routes that change someone else's permissions.
func RequireAssign() echo.MiddlewareFunc {
	return guard(authz.CanAssign, "Access denied. You do not have permission to assign permissions.")
}

func guard(allow func(authz.Subject) bool, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := auth.PrincipalFrom(c)
			if !ok {
				return auth.TokenFailure(auth.ErrTokenMissing)
			}
			if !allow(principal.Subject()) {
				return apperr.Authorization(message)
			}
			return next(c)
		}
	}
}
