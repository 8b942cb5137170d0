package internal

import (
	"context"

	"github.com/capcom6/go-infra-fx/validator"
	"github.com/go-core-fx/fiberfx"
	"github.com/go-core-fx/healthfx"
	"github.com/go-core-fx/logger"
	"github.com/pmtools/vcsbridge/internal/config"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/desktop"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/server"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/pmtools/vcsbridge/pkg/openapifx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "0.1.0"

func Run() {
	fx.New(options()...).Run()
}

func options() []fx.Option {
	return []fx.Option{
		// CORE MODULES
		logger.Module(),
		logger.WithFxDefaultLogger(),
		badgerfx.Module(),
		healthfx.Module(),
		fiberfx.Module(),
		validator.Module,
		openapifx.Module(),
		//
		// APP MODULES
		config.Module(),
		server.Module(),
		process.Module(),
		//
		// BUSINESS MODULES
		fx.Provide(func() healthfx.Version { return healthfx.Version{Version: Version, ReleaseID: 1} }),
		credentials.Module(),
		git.Module(),
		svn.Module(),
		preferences.Module(),
		desktop.Module(),
		history.Module(),
		projects.Module(),
		operations.Module(),
		//
		// LIFECYCLE MANAGEMENT
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("vcsbridge starting up", zap.String("version", Version))
					return nil
				},
				OnStop: func(_ context.Context) error {
					logger.Info("vcsbridge shutting down")
					return nil
				},
			})
		}),
	}
}
