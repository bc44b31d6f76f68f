package main

import (
	"os"
	"strings"

	"OCLAdmin/internal/bootstrap"
	"OCLAdmin/pkg/routes"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var envFiles []string
	if v := os.Getenv("ENV_FILES"); v != "" {
		envFiles = strings.Split(v, ",")
	}
	bootstrap.Loadenv(envFiles...)

	app := fx.New(
		routes.EchoModules,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}
