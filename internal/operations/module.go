package operations

import (
	"github.com/go-core-fx/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"operations",
		logger.WithNamedLogger("operations"),
		fx.Provide(func() (*Metrics, error) {
			return NewMetrics(prometheus.DefaultRegisterer)
		}, fx.Private),
		fx.Provide(NewService),
	)
}
