package badgerfx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"badgerfx",
		logger.WithNamedLogger("badgerfx"),
		fx.Provide(newLogger, fx.Private),
		fx.Provide(New),
		fx.Invoke(func(db *badger.DB, config Config, logger *zap.Logger, lifecycle fx.Lifecycle) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			lifecycle.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					logger.Info("badger opened",
						zap.String("dir", config.Dir),
						zap.Bool("in_memory", config.InMemory))

					go func() {
						defer close(done)
						runGC(ctx, db, config.gcInterval(), logger)
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					<-done

					logger.Info("closing badger")
					if err := db.Close(); err != nil {
						return fmt.Errorf("failed to close BadgerDB: %w", err)
					}
					return nil
				},
			})
		}),
	)
}

// runGC rewrites value log files until badger reports nothing left to
// collect, once per interval. It returns immediately when interval is zero.
func runGC(ctx context.Context, db *badger.DB, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		collected := 0
		for {
			err := db.RunValueLogGC(DefaultGCDiscardRatio)
			if err == nil {
				collected++
				continue
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				logger.Warn("value log gc failed", zap.Error(err))
			}
			break
		}

		if collected > 0 {
			logger.Debug("value log gc completed", zap.Int("files", collected))
		}
	}
}
