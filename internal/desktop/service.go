// Package desktop opens folders, terminals and editors for a path. Every
// launch is detached: the call returns once the process has started.
package desktop

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/fallback"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/process"
	"go.uber.org/zap"
)

type Service struct {
	config Config
	runner process.Runner
	prefs  *preferences.Service

	logger *zap.Logger
}

func NewService(config Config, runner process.Runner, prefs *preferences.Service, logger *zap.Logger) *Service {
	if config.OS == "" {
		config.OS = runtime.GOOS
	}

	return &Service{
		config: config,
		runner: runner,
		prefs:  prefs,
		logger: logger,
	}
}

// OpenFolder shows path in the platform file manager.
func (s *Service) OpenFolder(_ context.Context, path string) error {
	if err := requirePath(opOpenFolder, path); err != nil {
		return err
	}

	var cmd process.Command
	switch s.config.OS {
	case "windows":
		cmd = process.Command{Name: "explorer", Args: []string{path}}
	case "darwin":
		cmd = process.Command{Name: "open", Args: []string{path}}
	default:
		cmd = process.Command{Name: "xdg-open", Args: []string{path}}
	}

	return s.start(opOpenFolder, cmd)
}

// OpenTerminal opens a terminal window whose working directory is path.
func (s *Service) OpenTerminal(_ context.Context, path string) error {
	if err := requirePath(opOpenTerminal, path); err != nil {
		return err
	}

	var cmd process.Command
	switch s.config.OS {
	case "windows":
		cmd = process.Command{Name: "cmd", Args: []string{"/c", "start", "cmd", "/k", "cd /d " + path}}
	case "darwin":
		script := fmt.Sprintf(`tell application "Terminal" to do script "cd %s"`, appleScriptQuote(path))
		cmd = process.Command{Name: "osascript", Args: []string{"-e", script}}
	default:
		cmd = process.Command{Name: "gnome-terminal", Args: []string{"--working-directory", path}}
	}

	return s.start(opOpenTerminal, cmd)
}

// OpenEditor opens path in the preferred editor. The default editor
// command is tried first, then the configured editor path, then the macOS
// application bundle.
func (s *Service) OpenEditor(ctx context.Context, path string) error {
	if err := requirePath(opOpenEditor, path); err != nil {
		return err
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return err
	}

	candidates := []string{prefs.Editor.DefaultEditor}
	if prefs.Editor.VSCodePath != nil && *prefs.Editor.VSCodePath != "" {
		candidates = append(candidates, *prefs.Editor.VSCodePath)
	}
	if s.config.OS == "darwin" {
		candidates = append(candidates, MacOSEditorPath)
	}

	strategies := make([]fallback.Strategy, 0, len(candidates))
	for _, name := range candidates {
		if name == "" {
			continue
		}
		strategies = append(strategies, fallback.Strategy{
			Name: name,
			Run: func(context.Context) (string, error) {
				return "", s.runner.Start(process.Command{Name: name, Args: []string{path}})
			},
		})
	}

	if _, runErr := fallback.Run(ctx, s.logger, opOpenEditor, strategies...); runErr != nil {
		s.logger.Error("failed to open editor", zap.String("path", path), zap.Error(runErr))
		return &failure.Error{
			Category: failure.CategoryOf(runErr),
			Op:       opOpenEditor,
			Message:  "failed to open editor",
			Detail:   runErr.Error() + "\n\n" + editorGuidance,
			Err:      runErr,
		}
	}

	s.logger.Info("editor opened", zap.String("path", path))

	return nil
}

// HomeDir returns the home directory of the current user.
func (s *Service) HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", failure.Wrap(failure.CategoryEnvironment, opHomeDir, err)
	}

	return home, nil
}

func (s *Service) start(op string, cmd process.Command) error {
	s.logger.Info("launching", zap.String("op", op), zap.String("command", cmd.String()))

	if err := s.runner.Start(cmd); err != nil {
		s.logger.Error("launch failed", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

func requirePath(op, path string) error {
	if strings.TrimSpace(path) == "" {
		return failure.Validation(op, "path is required")
	}
	return nil
}

func appleScriptQuote(path string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(path)
}
