package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/process"
	"go.uber.org/zap"
)

// Service implements git operations on top of go-git and the git CLI.
type Service struct {
	config   Config
	runner   process.Runner
	resolver *credentials.Resolver

	logger *zap.Logger
}

// NewService creates a new git Service.
func NewService(config Config, runner process.Runner, resolver *credentials.Resolver, logger *zap.Logger) *Service {
	if config.Binary == "" {
		config.Binary = "git"
	}
	if config.FallbackUser == "" {
		config.FallbackUser = credentials.DefaultUser
	}

	return &Service{
		config:   config,
		runner:   runner,
		resolver: resolver,
		logger:   logger,
	}
}

func (s *Service) open(op, path string) (*git.Repository, error) {
	if err := checkPath(op, path); err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		s.logger.Error("failed to open repository", zap.String("path", path), zap.Error(err))
		return nil, openError(op, path, err)
	}

	return repo, nil
}

// Status reports the branch, head revision and changed paths of the
// repository at path.
func (s *Service) Status(_ context.Context, path string) (*RepositoryStatus, error) {
	s.logger.Info("getting repository status", zap.String("path", path))

	repo, err := s.open(opStatus, path)
	if err != nil {
		return nil, err
	}

	status := &RepositoryStatus{
		Modified:  []string{},
		Untracked: []string{},
	}

	if branch, branchErr := currentBranch(repo); branchErr == nil {
		status.Branch = &branch
	}
	if head, headErr := repo.Head(); headErr == nil {
		rev := head.Hash().String()
		status.HeadRevision = &rev
	}

	wt, err := repo.Worktree()
	if err != nil {
		s.logger.Error("failed to get worktree", zap.Error(err))
		return nil, libraryError(opStatus, "failed to get worktree", err)
	}

	st, err := wt.Status()
	if err != nil {
		s.logger.Error("failed to get worktree status", zap.Error(err))
		return nil, libraryError(opStatus, "failed to get worktree status", err)
	}

	status.Modified, status.Untracked = summarize(st)
	status.IsDirty = len(status.Modified) > 0 || len(status.Untracked) > 0

	s.logger.Info("repository status retrieved",
		zap.String("path", path),
		zap.Int("modified", len(status.Modified)),
		zap.Int("untracked", len(status.Untracked)))

	return status, nil
}

// Commit stages every working tree change and commits it on the current
// branch with the configured identity as author and committer.
func (s *Service) Commit(_ context.Context, path, message string) (string, error) {
	s.logger.Info("committing changes", zap.String("path", path))

	if strings.TrimSpace(message) == "" {
		return "", failure.Validation(opCommit, "commit message is required")
	}

	repo, err := s.open(opCommit, path)
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		s.logger.Error("failed to get worktree", zap.Error(err))
		return "", libraryError(opCommit, "failed to get worktree", err)
	}

	if err = wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		s.logger.Error("failed to stage changes", zap.Error(err))
		return "", libraryError(opCommit, "failed to stage changes", err)
	}

	st, err := wt.Status()
	if err != nil {
		s.logger.Error("failed to get worktree status", zap.Error(err))
		return "", libraryError(opCommit, "failed to get worktree status", err)
	}
	if !hasStagedChanges(st) {
		return "", failure.Wrap(failure.CategoryNoChanges, opCommit, failure.ErrNoChanges)
	}

	signature, err := identity(repo)
	if err != nil {
		return "", failure.Wrap(failure.CategoryValidation, opCommit, err)
	}

	var parents []plumbing.Hash
	if head, headErr := repo.Head(); headErr == nil {
		parents = append(parents, head.Hash())
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:    signature,
		Committer: signature,
		Parents:   parents,
	})
	if err != nil {
		s.logger.Error("failed to commit", zap.Error(err))
		return "", libraryError(opCommit, "failed to commit", err)
	}

	s.logger.Info("changes committed", zap.String("path", path), zap.String("hash", hash.String()))

	return fmt.Sprintf("Committed %s - %s", hash.String()[:8], message), nil
}

// Clone clones url into target using the git CLI.
func (s *Service) Clone(ctx context.Context, url, target string) (string, error) {
	s.logger.Info("cloning repository", zap.String("url", url), zap.String("target", target))

	if strings.TrimSpace(url) == "" {
		return "", failure.Validation(opClone, "repository URL is required")
	}
	if strings.TrimSpace(target) == "" {
		return "", failure.Validation(opClone, "target path is required")
	}

	res, err := s.runner.Run(ctx, process.Command{
		Name: s.config.Binary,
		Args: []string{"clone", url, target},
	})
	if err != nil {
		s.logger.Error("failed to start git", zap.Error(err))
		return "", err
	}
	if !res.Success() {
		s.logger.Error("failed to clone repository", zap.String("stderr", res.Stderr))
		return "", failure.FromText(opClone, fmt.Sprintf("failed to clone %s", url), res.Stderr)
	}

	s.logger.Info("repository cloned", zap.String("url", url), zap.String("target", target))

	return outputOr(res.Stdout, "Clone completed"), nil
}

// currentBranch returns the short name of the branch HEAD points to. It
// works on unborn branches.
func currentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", err
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}

// identity reads user.name and user.email from the merged repository,
// global and system configuration.
func identity(repo *git.Repository) (*object.Signature, error) {
	cfg, err := repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityNotFound, err)
	}

	name, email := cfg.User.Name, cfg.User.Email
	if name == "" {
		name = cfg.Author.Name
	}
	if email == "" {
		email = cfg.Author.Email
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: set user.name and user.email", ErrIdentityNotFound)
	}

	return &object.Signature{Name: name, Email: email, When: time.Now()}, nil
}

// remoteForBranch resolves the remote of branch from its upstream tracking
// reference, falling back to def. The tracking reference is the destination
// of the remote's fetch refspec that matches branch.<b>.merge, which is
// refs/remotes/<remote>/<branch> for the default refspec.
func remoteForBranch(repo *git.Repository, branch, def string) string {
	cfg, err := repo.Config()
	if err != nil {
		return def
	}

	b, ok := cfg.Branches[branch]
	if !ok || b == nil || b.Remote == "" || b.Remote == "." {
		return def
	}
	remote, ok := cfg.Remotes[b.Remote]
	if !ok {
		return def
	}

	merge := b.Merge
	if merge == "" {
		merge = plumbing.NewBranchReferenceName(branch)
	}

	tracking := plumbing.NewRemoteReferenceName(b.Remote, merge.Short())
	for _, spec := range remote.Fetch {
		if spec.Match(merge) {
			tracking = spec.Dst(merge)
			break
		}
	}

	// refs/remotes/<remote>/<branch>
	parts := strings.SplitN(tracking.String(), "/", 4)
	if len(parts) == 4 && parts[0] == "refs" && parts[1] == "remotes" {
		if _, known := cfg.Remotes[parts[2]]; known {
			return parts[2]
		}
	}

	return b.Remote
}

func remoteURL(remote *git.Remote) string {
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func outputOr(out, fallback string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return fallback
	}
	return out
}

var errNoRemoteURL = errors.New("remote has no URL")
