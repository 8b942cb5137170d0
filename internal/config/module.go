package config

import (
	"github.com/go-core-fx/fiberfx"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/desktop"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/pmtools/vcsbridge/pkg/openapifx"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(New),
		fx.Provide(func(cfg Config) fiberfx.Config {
			return fiberfx.Config{
				Address:     cfg.HTTP.Address,
				ProxyHeader: cfg.HTTP.ProxyHeader,
				Proxies:     cfg.HTTP.Proxies,
			}
		}),
		fx.Provide(func(cfg Config) openapifx.Config {
			return openapifx.Config{
				Enabled:    cfg.HTTP.OpenAPI.Enabled,
				PublicHost: cfg.HTTP.OpenAPI.PublicHost,
				PublicPath: cfg.HTTP.OpenAPI.PublicPath,
			}
		}),
		fx.Provide(func(cfg Config) badgerfx.Config {
			return badgerfx.Config{
				Dir:        cfg.Storage.DataDir,
				InMemory:   cfg.Storage.InMemory,
				GCInterval: cfg.Storage.GCInterval,
			}
		}),
		fx.Provide(func(cfg Config) git.Config {
			return git.Config{
				Binary:       cfg.Git.Binary,
				FallbackUser: cfg.Git.FallbackUser,
			}
		}),
		fx.Provide(func(cfg Config) credentials.Config {
			return credentials.Config{
				GitBinary: cfg.Git.Binary,
			}
		}),
		fx.Provide(func(cfg Config) svn.Config {
			return svn.Config{
				Binary: cfg.Svn.Binary,
			}
		}),
		fx.Provide(func(cfg Config) preferences.Config {
			return preferences.Config{
				Path: cfg.Preferences.Path,
			}
		}),
		fx.Provide(func(cfg Config) history.Config {
			return history.Config{
				MaxEntries: cfg.History.MaxEntries,
			}
		}),
		fx.Provide(func() desktop.Config {
			return desktop.Config{}
		}),
	)
}
