package routes

import (
	"context"
	"errors"
	"net/http"

	"OCLAdmin/internal/addressform"
	"OCLAdmin/internal/admins"
	"OCLAdmin/internal/auth"
	"OCLAdmin/internal/authz"
	"OCLAdmin/internal/config"
	"OCLAdmin/internal/dashboard"
	"OCLAdmin/internal/notification"
	"OCLAdmin/internal/officeusers"
	"OCLAdmin/internal/pincode"
	"OCLAdmin/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(config.Load),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(
		fx.Annotate(config.NewRedisCache, fx.As(new(dashboard.Cache))),
		fx.Annotate(config.NewEmailService, fx.As(new(notification.Mailer))),
	),

	fx.Provide(
		fx.Annotate(auth.NewAdminRepository, fx.As(new(auth.AdminStore))),
		fx.Annotate(auth.NewOfficeUserRepository, fx.As(new(auth.OfficeUserStore))),
		fx.Annotate(notification.NewNotificationRepository, fx.As(new(notification.Store))),
		fx.Annotate(pincode.NewPincodeRepository, fx.As(new(pincode.Store))),
		fx.Annotate(addressform.NewFormRepository, fx.As(new(addressform.Store))),
		fx.Annotate(dashboard.NewStatsRepository, fx.As(new(dashboard.Store))),
	),

	fx.Provide(NewTokenIssuer),
	fx.Provide(auth.NewResolver),
	fx.Provide(middleware.NewAuthenticator),
	fx.Provide(middleware.NewRoleGate),

	fx.Provide(auth.NewAuthService),
	fx.Provide(notification.NewNotificationService),
	fx.Provide(func(s *notification.NotificationService) admins.Notifier { return s }),
	fx.Provide(notification.NewNotificationScheduler),
	fx.Provide(admins.NewAdminService),
	fx.Provide(officeusers.NewOfficeUserService),
	fx.Provide(pincode.NewPincodeService),
	fx.Provide(addressform.NewFormService),
	fx.Provide(dashboard.NewStatsService),

	fx.Provide(auth.NewAuthHandler),
	fx.Provide(admins.NewAdminHandler),
	fx.Provide(officeusers.NewOfficeUserHandler),
	fx.Provide(pincode.NewPincodeHandler),
	fx.Provide(addressform.NewFormHandler),
	fx.Provide(dashboard.NewStatsHandler),
	fx.Provide(notification.NewNotificationHandler),

	fx.Provide(NewEchoServer),
	fx.Invoke(SeedDefaultAdmin),
	fx.Invoke(func(s *notification.NotificationScheduler, lc fx.Lifecycle) { s.StartScheduler(lc) }),
	fx.Invoke(RegisterRoutes))

func NewTokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	return auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
}

func NewEchoServer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *echo.Echo {
	e := echo.New()
	middleware.SetupMiddleware(e, cfg, log)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("server running", zap.String("addr", cfg.Addr()))
			go func() {
				if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// SeedDefaultAdmin creates the configured super admin on start when the admin
// collection is empty.
func SeedDefaultAdmin(lc fx.Lifecycle, cfg *config.Config, service *auth.AuthService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			admin, err := service.EnsureDefaultAdmin(ctx, auth.SeedAdmin{
				Email:    cfg.SeedAdminEmail,
				Name:     cfg.SeedAdminName,
				Password: cfg.SeedAdminPassword,
			})
			if err != nil {
				return err
			}
			if admin != nil {
				log.Info("default super admin created", zap.String("email", admin.Email))
			}
			return nil
		},
	})
}

type Handlers struct {
	fx.In

	Auth          *auth.AuthHandler
	Admins        *admins.AdminHandler
	Users         *officeusers.OfficeUserHandler
	Pincodes      *pincode.PincodeHandler
	Forms         *addressform.FormHandler
	Stats         *dashboard.StatsHandler
	Notifications *notification.NotificationHandler
}

func RegisterRoutes(e *echo.Echo, authn *middleware.Authenticator, gate *middleware.RoleGate, h Handlers) {
	e.POST("/api/office/login", h.Auth.OfficeLogin)

	api := e.Group("/api/admin")
	api.POST("/login", h.Auth.Login)

	admin := authn.Admin()
	api.GET("/profile", h.Auth.Profile, admin)
	api.GET("/stats", h.Stats.Stats, admin)

	forms := []echo.MiddlewareFunc{admin, middleware.RequireCapability(authz.AddressForms)}
	api.GET("/addressforms", h.Forms.List, forms...)
	api.GET("/addressforms/:id", h.Forms.Get, forms...)
	api.PUT("/addressforms/:id", h.Forms.Update, forms...)
	api.DELETE("/addressforms/:id", h.Forms.Delete, forms...)

	pincodes := []echo.MiddlewareFunc{admin, middleware.RequireCapability(authz.PincodeManagement)}
	api.GET("/pincodes", h.Pincodes.List, pincodes...)
	api.GET("/pincodes/export", h.Pincodes.Export, pincodes...)
	api.POST("/pincodes", h.Pincodes.Create, pincodes...)
	api.POST("/pincodes/import", h.Pincodes.Import, pincodes...)
	api.PUT("/pincodes/:id", h.Pincodes.Update, pincodes...)
	api.DELETE("/pincodes/:id", h.Pincodes.Delete, pincodes...)

	super := []echo.MiddlewareFunc{admin, gate.Middleware()}
	api.GET("/admins", h.Admins.List, super...)
	api.POST("/admins", h.Admins.Create, super...)
	api.PUT("/admins/:id/permissions", h.Admins.UpdatePermissions, super...)
	api.DELETE("/admins/:id", h.Admins.Delete, super...)
	api.GET("/notifications", h.Notifications.List, super...)

	users := []echo.MiddlewareFunc{authn.AdminOrOfficeAdmin(), middleware.RequireCapability(authz.UserManagement)}
	api.GET("/users", h.Users.List, users...)
	api.GET("/users/:id", h.Users.Get, users...)
	api.PUT("/users/:id", h.Users.Update, users...)
	api.PUT("/users/:id/permissions", h.Users.UpdatePermissions, append(users, middleware.RequireAssign())...)
	api.PUT("/users/:id/status", h.Users.UpdateStatus, users...)
	api.DELETE("/users/:id", h.Users.Delete, users...)
}
