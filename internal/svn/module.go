package svn

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"svn",
		logger.WithNamedLogger("svn"),
		fx.Provide(NewService),
	)
}
