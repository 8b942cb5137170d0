package process

import (
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"process",
		logger.WithNamedLogger("process"),
		fx.Provide(fx.Annotate(NewExec, fx.As(new(Runner)))),
	)
}
