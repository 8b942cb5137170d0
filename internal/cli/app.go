package cli

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pmtools/vcsbridge/internal/config"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/operations"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// app holds the services a command runs against. The same services back the
// HTTP API; here they are wired by hand for a single short-lived process.
type app struct {
	db *badger.DB

	operations *operations.Service
	projects   *projects.Service
	history    *history.Service
	svn        *svn.Service

	logger *zap.Logger
}

func openApp(cfg config.Config, runner process.Runner, logger *zap.Logger) (*app, error) {
	db, err := badgerfx.Open(badgerfx.Config{
		Dir:      cfg.Storage.DataDir,
		InMemory: cfg.Storage.InMemory,
	}, logger.Named("badger"))
	if err != nil {
		return nil, err
	}

	prefs, err := preferences.NewService(preferences.Config{Path: cfg.Preferences.Path}, logger.Named("preferences"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	// The CLI exposes no metrics endpoint; counters go to a private registry.
	metrics, err := operations.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	resolver := credentials.NewResolver(credentials.Config{GitBinary: cfg.Git.Binary}, runner, logger.Named("credentials"))
	gitSvc := git.NewService(git.Config{
		Binary:       cfg.Git.Binary,
		FallbackUser: cfg.Git.FallbackUser,
	}, runner, resolver, logger.Named("git"))
	svnSvc := svn.NewService(svn.Config{Binary: cfg.Svn.Binary}, runner, logger.Named("svn"))

	historySvc := history.NewService(history.Config{MaxEntries: cfg.History.MaxEntries}, history.NewRepository(db), logger.Named("history"))
	projectsSvc := projects.NewService(projects.NewStore(db), logger.Named("projects"))

	return &app{
		db: db,

		operations: operations.NewService(gitSvc, svnSvc, prefs, projectsSvc, historySvc, metrics, logger.Named("operations")),
		projects:   projectsSvc,
		history:    historySvc,
		svn:        svnSvc,

		logger: logger,
	}, nil
}

func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
