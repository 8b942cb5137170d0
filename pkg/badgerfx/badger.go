package badgerfx

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const SeekEnd = byte(0xFF)

func New(config Config, logger *zapLogger) (*badger.DB, error) {
	opts := config.Build().
		WithLogger(logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	return db, nil
}

// Open opens a database outside of the fx graph, e.g. in tests or CLI
// commands. The caller closes it.
func Open(config Config, logger *zap.Logger) (*badger.DB, error) {
	return New(config, newLogger(logger))
}
