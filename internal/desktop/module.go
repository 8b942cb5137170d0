package desktop

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"desktop",
		logger.WithNamedLogger("desktop"),
		fx.Provide(NewService),
	)
}
