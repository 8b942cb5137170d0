// Package cli implements vcsctl, a command line front end to the version
// control operations, project registry and history.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pmtools/vcsbridge/internal/config"
	"github.com/pmtools/vcsbridge/internal/process"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	out        io.Writer
	loadConfig func() (config.Config, error)
	newRunner  func(*zap.Logger) process.Runner
	newLogger  func(debug bool) (*zap.Logger, func(), error)
}

func defaultOptions() options {
	return options{
		out:        os.Stdout,
		loadConfig: config.New,
		newRunner: func(logger *zap.Logger) process.Runner {
			return process.NewExec(logger.Named("process"))
		},
		newLogger: func(debug bool) (*zap.Logger, func(), error) {
			return newFileLogger(logFilePath(), debug)
		},
	}
}

// runtime carries global flags and options to the subcommands.
type runtime struct {
	opts options

	dataDir string
	noColor bool
	debug   bool
	asJSON  bool
}

// NewRootCmd creates the vcsctl command tree.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, defaultOptions())
}

func newRootCmd(version string, opts options) *cobra.Command {
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "vcsctl",
		Short: "Run git and svn operations on local repositories",
		Long: `vcsctl runs the same status, pull, push, commit, diff, clone and
authentication checks for git repositories and svn working copies.

Repositories can be grouped into projects and updated together. Every
operation is recorded in the local history.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.out)

	flags := root.PersistentFlags()
	flags.StringVar(&rt.dataDir, "data-dir", "", "directory of the history and project database")
	flags.BoolVar(&rt.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&rt.debug, "debug", false, "write debug messages to the log file")
	flags.BoolVar(&rt.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newStatusCmd(rt),
		newPullCmd(rt),
		newPushCmd(rt),
		newCommitCmd(rt),
		newDiffCmd(rt),
		newCloneCmd(rt),
		newAuthTestCmd(rt),
		newSvnCmd(rt),
		newHistoryCmd(rt),
		newProjectsCmd(rt),
	)

	return root
}

// run opens the services for the duration of fn.
func (rt *runtime) run(cmd *cobra.Command, fn func(ctx context.Context, a *app, p *printer) error) error {
	cfg, err := rt.opts.loadConfig()
	if err != nil {
		return err
	}
	if rt.dataDir != "" {
		cfg.Storage.DataDir = rt.dataDir
	}

	logger, flush, err := rt.opts.newLogger(rt.debug)
	if err != nil {
		return err
	}
	defer flush()

	a, err := openApp(cfg, rt.opts.newRunner(logger), logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Error("failed to close services", zap.Error(closeErr))
		}
	}()

	logger.Debug("running command", zap.String("command", cmd.CommandPath()))

	return fn(cmd.Context(), a, newPrinter(cmd.OutOrStdout(), rt.noColor))
}

func (rt *runtime) printJSON(p *printer, v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
