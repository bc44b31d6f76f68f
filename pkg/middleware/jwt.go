package middleware

import (
	"context"
	"strings"

	"OCLAdmin/internal/auth"

	"github.com/labstack/echo/v4"
)

// Authenticator verifies bearer tokens and attaches the resolved principal.
type Authenticator struct {
	tokens   *auth.TokenIssuer
	resolver *auth.Resolver
}

func NewAuthenticator(tokens *auth.TokenIssuer, resolver *auth.Resolver) *Authenticator {
	return &Authenticator{tokens: tokens, resolver: resolver}
}

type resolveFunc func(ctx context.Context, claims *auth.TokenClaims) (*auth.Principal, error)

// Admin accepts admin tokens only.
func (a *Authenticator) Admin() echo.MiddlewareFunc {
	return a.middleware(a.resolver.Admin, auth.SubjectAdmin)
}

// AdminOrOfficeAdmin also accepts office tokens whose user holds an active
// admin record.
func (a *Authenticator) AdminOrOfficeAdmin() echo.MiddlewareFunc {
	return a.middleware(a.resolver.AdminOrOfficeAdmin, auth.SubjectAdmin, auth.SubjectOffice)
}

func (a *Authenticator) middleware(resolve resolveFunc, accepted ...auth.SubjectType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.tokens.Verify(bearerToken(c), accepted...)
			if err != nil {
				return auth.TokenFailure(err)
			}
			principal, err := resolve(c.Request().Context(), claims)
			if err != nil {
				return err
			}
			auth.WithPrincipal(c, principal)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
