package badgerfx

import (
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	DefaultGCInterval     = 10 * time.Minute
	DefaultGCDiscardRatio = 0.5
)

type Config struct {
	// Path to the BadgerDB data directory
	Dir string
	// InMemory keeps all data in memory; Dir is ignored
	InMemory bool

	// GCInterval is the period of value log garbage collection. Zero uses
	// DefaultGCInterval, a negative value disables it.
	GCInterval time.Duration
}

func (c Config) Build() badger.Options {
	if c.InMemory {
		return badger.DefaultOptions("").WithInMemory(true)
	}

	return badger.DefaultOptions(c.Dir).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true)
}

func (c Config) gcInterval() time.Duration {
	if c.InMemory || c.GCInterval < 0 {
		return 0
	}
	if c.GCInterval == 0 {
		return DefaultGCInterval
	}
	return c.GCInterval
}
