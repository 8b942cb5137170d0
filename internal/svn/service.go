package svn

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/process"
	"go.uber.org/zap"
)

// NoChangesMessage is returned by Diff when the working copy is clean.
const NoChangesMessage = "No changes"

// Service implements svn operations on top of the svn CLI.
type Service struct {
	config Config
	runner process.Runner

	logger *zap.Logger
}

// NewService creates a new svn Service.
func NewService(config Config, runner process.Runner, logger *zap.Logger) *Service {
	if config.Binary == "" {
		config.Binary = "svn"
	}

	return &Service{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// CheckInstalled verifies that the svn binary can be run.
func (s *Service) CheckInstalled(ctx context.Context, op string) error {
	res, err := s.runner.Run(ctx, process.Command{
		Name: s.config.Binary,
		Args: []string{"--version", "--quiet"},
	})
	if err != nil {
		s.logger.Error("svn is not available", zap.Error(err))
		return &failure.Error{
			Category: failure.CategoryEnvironment,
			Op:       op,
			Message:  ErrNotInstalled.Error(),
			Detail:   installGuidance,
			Err:      err,
		}
	}
	if !res.Success() {
		return &failure.Error{
			Category: failure.CategoryEnvironment,
			Op:       op,
			Message:  "svn command failed",
			Detail:   strings.TrimSpace(res.Stderr),
		}
	}

	return nil
}

// Status reports revision information and changed paths of the working
// copy containing path. Both queries run against the working copy root.
func (s *Service) Status(ctx context.Context, path string) (*WorkingCopyStatus, error) {
	s.logger.Info("getting working copy status", zap.String("path", path))

	if err := s.CheckInstalled(ctx, opStatus); err != nil {
		return nil, err
	}

	root, err := FindWorkingCopyRoot(path)
	if err != nil {
		return nil, err
	}

	res, err := s.run(ctx, process.Command{Name: s.config.Binary, Args: []string{"info", root}})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		s.logger.Error("svn info failed", zap.String("root", root), zap.String("stderr", res.Stderr))
		return nil, failure.FromText(opStatus, "failed to read working copy info", res.Stderr)
	}
	info := ParseInfo(res.Stdout)

	res, err = s.run(ctx, process.Command{Name: s.config.Binary, Args: []string{"status", root}})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		s.logger.Error("svn status failed", zap.String("root", root), zap.String("stderr", res.Stderr))
		return nil, failure.FromText(opStatus, "failed to read working copy status", res.Stderr)
	}

	status := &WorkingCopyStatus{
		Revision:       optional(info.Revision),
		URL:            optional(info.URL),
		RepositoryRoot: optional(info.RepositoryRoot),
		Author:         optional(info.Author),
		Date:           optional(info.Date),
	}
	status.Modified, status.Untracked = ParseStatus(res.Stdout, root)
	status.IsDirty = len(status.Modified) > 0 || len(status.Untracked) > 0

	s.logger.Info("working copy status retrieved",
		zap.String("root", root),
		zap.Int("modified", len(status.Modified)),
		zap.Int("untracked", len(status.Untracked)))

	return status, nil
}

// Update brings the working copy at path up to date with the repository.
func (s *Service) Update(ctx context.Context, path string, creds Credentials) (string, error) {
	s.logger.Info("updating working copy", zap.String("path", path))

	if path == "" {
		return "", failure.Validation(opUpdate, "path is required")
	}

	if err := s.CheckInstalled(ctx, opUpdate); err != nil {
		return "", err
	}

	out, err := s.mutate(ctx, opUpdate, networked(s.config.Binary, creds, "update", path))
	if err != nil {
		return "", err
	}

	return summaryLine(out, "revision", "Update completed"), nil
}

// Commit sends local changes under path to the repository.
func (s *Service) Commit(ctx context.Context, path, message string, creds Credentials) (string, error) {
	s.logger.Info("committing working copy", zap.String("path", path))

	if strings.TrimSpace(message) == "" {
		return "", failure.Validation(opCommit, "commit message is required")
	}
	if path == "" {
		return "", failure.Validation(opCommit, "path is required")
	}

	if err := s.CheckInstalled(ctx, opCommit); err != nil {
		return "", err
	}

	out, err := s.mutate(ctx, opCommit, networked(s.config.Binary, creds, "commit", path, "-m", message))
	if err != nil {
		return "", err
	}

	return summaryLine(out, "Committed revision", "Commit completed"), nil
}

// Diff returns `svn diff` output for path.
func (s *Service) Diff(ctx context.Context, path string) (string, error) {
	s.logger.Info("computing diff", zap.String("path", path))

	if path == "" {
		return "", failure.Validation(opDiff, "path is required")
	}

	if err := s.CheckInstalled(ctx, opDiff); err != nil {
		return "", err
	}

	out, err := s.mutate(ctx, opDiff, process.Command{Name: s.config.Binary, Args: []string{"diff", path}})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return NoChangesMessage, nil
	}

	return out, nil
}

// Add schedules files, relative to the working copy at path, for addition.
func (s *Service) Add(ctx context.Context, path string, files []string) (string, error) {
	s.logger.Info("adding files", zap.String("path", path), zap.Strings("files", files))

	if path == "" {
		return "", failure.Validation(opAdd, "path is required")
	}
	if len(files) == 0 {
		return "", failure.Validation(opAdd, "no files to add")
	}

	if err := s.CheckInstalled(ctx, opAdd); err != nil {
		return "", err
	}

	_, err := s.mutate(ctx, opAdd, process.Command{
		Dir:  path,
		Name: s.config.Binary,
		Args: append([]string{"add", "--parents"}, files...),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Added %d file(s) to version control", len(files)), nil
}

// Revert discards local changes. A nil files list reverts path recursively;
// an empty non-nil list is rejected.
func (s *Service) Revert(ctx context.Context, path string, files []string) (string, error) {
	s.logger.Info("reverting changes", zap.String("path", path), zap.Strings("files", files))

	cmd := process.Command{Name: s.config.Binary}
	switch {
	case files == nil:
		if path == "" {
			return "", failure.Validation(opRevert, "path is required")
		}
		cmd.Args = []string{"revert", "-R", path}
	case len(files) == 0:
		return "", failure.Validation(opRevert, "no files to revert")
	case path == "":
		return "", failure.Validation(opRevert, "path is required")
	default:
		cmd.Dir = path
		cmd.Args = append([]string{"revert"}, files...)
	}

	if err := s.CheckInstalled(ctx, opRevert); err != nil {
		return "", err
	}

	if _, err := s.mutate(ctx, opRevert, cmd); err != nil {
		return "", err
	}

	return "Revert completed", nil
}

// Checkout creates a working copy of url at target.
func (s *Service) Checkout(ctx context.Context, url, target string, creds Credentials) (string, error) {
	s.logger.Info("checking out", zap.String("url", url), zap.String("target", target))

	if strings.TrimSpace(url) == "" {
		return "", failure.Validation(opCheckout, "repository URL is required")
	}
	if strings.TrimSpace(target) == "" {
		return "", failure.Validation(opCheckout, "target path is required")
	}

	if err := s.CheckInstalled(ctx, opCheckout); err != nil {
		return "", err
	}

	out, err := s.mutate(ctx, opCheckout, networked(s.config.Binary, creds, "checkout", url, target))
	if err != nil {
		return "", err
	}

	return summaryLine(out, "Checked out revision", "Checkout completed"), nil
}

// TestAuth contacts the repository of the working copy at path.
func (s *Service) TestAuth(ctx context.Context, path string, creds Credentials) (*AuthReport, error) {
	s.logger.Info("testing repository authentication", zap.String("path", path))

	if path == "" {
		return nil, failure.Validation(opAuthTest, "path is required")
	}

	if err := s.CheckInstalled(ctx, opAuthTest); err != nil {
		return nil, err
	}

	res, err := s.run(ctx, networked(s.config.Binary, creds, "info", path))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		s.logger.Error("authentication test failed", zap.String("stderr", res.Stderr))

		text := strings.ToLower(res.Stderr)
		if strings.Contains(text, "authorization") || strings.Contains(text, "authentication") {
			return nil, &failure.Error{
				Category: failure.CategoryAuthentication,
				Op:       opAuthTest,
				Message:  "svn authentication failed",
				Detail:   authGuidance + "\n\nDetails: " + strings.TrimSpace(res.Stderr),
			}
		}
		return nil, failure.FromText(opAuthTest, "connection test failed", res.Stderr)
	}

	info := ParseInfo(res.Stdout)
	report := &AuthReport{
		URL:            orUnknown(info.URL),
		Revision:       orUnknown(info.Revision),
		RepositoryRoot: orUnknown(info.RepositoryRoot),
	}

	s.logger.Info("authentication test succeeded", zap.String("url", report.URL))

	return report, nil
}

func (s *Service) run(ctx context.Context, cmd process.Command) (process.Result, error) {
	return s.runner.Run(ctx, cmd)
}

// mutate runs cmd and returns its stdout, or a classified error carrying
// stderr verbatim when it exits non-zero.
func (s *Service) mutate(ctx context.Context, op string, cmd process.Command) (string, error) {
	res, err := s.run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		s.logger.Error("svn command failed",
			zap.String("op", op),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", res.Stderr))
		return "", failure.FromText(op, fmt.Sprintf("%s failed with exit code %d", op, res.ExitCode), res.Stderr)
	}

	return res.Stdout, nil
}

// networked builds a command that talks to the repository. Credentials are
// passed with the password on stdin, and prompts are disabled.
func networked(binary string, creds Credentials, args ...string) process.Command {
	cmd := process.Command{Name: binary, Args: args}
	cmd.Args = append(cmd.Args, "--non-interactive")

	if creds.empty() {
		return cmd
	}
	if creds.Username != "" {
		cmd.Args = append(cmd.Args, "--username", creds.Username)
	}
	if creds.Password != "" {
		cmd.Args = append(cmd.Args, "--password-from-stdin")
		cmd.Stdin = creds.Password + "\n"
	}

	return cmd
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
