package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/pmtools/vcsbridge/internal/credentials"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/fallback"
	"github.com/pmtools/vcsbridge/internal/process"
	"go.uber.org/zap"
)

const (
	pullUpToDate = "Already up to date."
	pushDone     = "Push completed"
)

// Pull updates the current branch from its remote. The git CLI is tried
// first so that the user's own credential setup applies; go-git with a
// fast-forward-only update is the fallback.
func (s *Service) Pull(ctx context.Context, path string, defaults Defaults) (string, error) {
	s.logger.Info("pulling repository", zap.String("path", path))

	if err := checkPath(opPull, path); err != nil {
		return "", err
	}

	return fallback.Run(ctx, s.logger, opPull,
		fallback.Strategy{
			Name: "git cli",
			Run: func(ctx context.Context) (string, error) {
				return s.cli(ctx, opPull, path, pullUpToDate, "pull")
			},
		},
		fallback.Strategy{
			Name: "go-git",
			Run: func(ctx context.Context) (string, error) {
				return s.pullLibrary(ctx, path, defaults)
			},
		},
	)
}

// Push publishes the current branch to its remote under the same name,
// with the same CLI then go-git order as Pull.
func (s *Service) Push(ctx context.Context, path string, defaults Defaults) (string, error) {
	s.logger.Info("pushing repository", zap.String("path", path))

	if err := checkPath(opPush, path); err != nil {
		return "", err
	}

	return fallback.Run(ctx, s.logger, opPush,
		fallback.Strategy{
			Name: "git cli",
			Run: func(ctx context.Context) (string, error) {
				return s.cli(ctx, opPush, path, pushDone, "push")
			},
		},
		fallback.Strategy{
			Name: "go-git",
			Run: func(ctx context.Context) (string, error) {
				return s.pushLibrary(ctx, path, defaults)
			},
		},
	)
}

// TestAuth checks that the repository's remote accepts the available
// credentials by listing its references.
func (s *Service) TestAuth(ctx context.Context, path string, defaults Defaults) (*AuthReport, error) {
	s.logger.Info("testing remote authentication", zap.String("path", path))

	repo, err := s.open(opAuthTest, path)
	if err != nil {
		return nil, err
	}

	name := DefaultRemote
	remote, err := repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		name = SecondaryRemote
		remote, err = repo.Remote(name)
	}
	if err != nil {
		return nil, &failure.Error{
			Category: failure.CategoryNotFound,
			Op:       opAuthTest,
			Message:  fmt.Sprintf("no remote found (tried %s and %s)", DefaultRemote, SecondaryRemote),
			Err:      fmt.Errorf("%w: %w", ErrNoRemote, err),
		}
	}

	url := remoteURL(remote)
	scheme := credentials.ClassifyScheme(url)
	chain := s.resolver.Chain(url, defaults.credentials(s.config.FallbackUser))

	err = chain.Do(ctx, opAuthTest, func(auth transport.AuthMethod) error {
		_, listErr := remote.ListContext(ctx, &git.ListOptions{Auth: auth})
		if errors.Is(listErr, transport.ErrEmptyRemoteRepository) {
			return nil
		}
		return listErr
	})
	if err != nil {
		s.logger.Error("authentication test failed", zap.String("url", url), zap.Error(err))

		var fe *failure.Error
		if errors.As(err, &fe) {
			return nil, fe.WithDetail(fmt.Sprintf("Method: %s", scheme))
		}
		return nil, &failure.Error{
			Category: failure.Classify(err.Error()),
			Op:       opAuthTest,
			Message:  fmt.Sprintf("connection test failed for %s", url),
			Detail:   fmt.Sprintf("Remote: %s\nMethod: %s\nProblem: %v", url, scheme, err),
			Err:      err,
		}
	}

	s.logger.Info("authentication test succeeded", zap.String("url", url), zap.String("scheme", string(scheme)))

	return &AuthReport{Remote: name, URL: url, Scheme: string(scheme)}, nil
}

// cli runs `git -C path <args>` and returns its trimmed output.
func (s *Service) cli(ctx context.Context, op, path, empty string, args ...string) (string, error) {
	res, err := s.runner.Run(ctx, process.Command{
		Name: s.config.Binary,
		Args: append([]string{"-C", path}, args...),
	})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", failure.FromText(op, fmt.Sprintf("%s failed with exit code %d", op, res.ExitCode), res.Stderr)
	}

	return outputOr(res.Stdout, empty), nil
}

// tracking resolves the current branch and its remote.
func (s *Service) tracking(op string, repo *git.Repository, defaults Defaults) (string, *git.Remote, error) {
	branch, err := currentBranch(repo)
	if err != nil {
		return "", nil, failure.Wrap(failure.CategoryValidation, op, err)
	}

	name := remoteForBranch(repo, branch, defaults.remote())
	remote, err := repo.Remote(name)
	if err != nil {
		return "", nil, &failure.Error{
			Category: failure.CategoryNotFound,
			Op:       op,
			Message:  fmt.Sprintf("remote %q not found", name),
			Err:      err,
		}
	}
	if remoteURL(remote) == "" {
		return "", nil, failure.Wrap(failure.CategoryValidation, op, errNoRemoteURL)
	}

	return branch, remote, nil
}

func (s *Service) pullLibrary(ctx context.Context, path string, defaults Defaults) (string, error) {
	repo, err := s.open(opPull, path)
	if err != nil {
		return "", err
	}

	branch, remote, err := s.tracking(opPull, repo, defaults)
	if err != nil {
		return "", err
	}
	remoteName := remote.Config().Name
	url := remoteURL(remote)

	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remoteName, branch))
	chain := s.resolver.Chain(url, defaults.credentials(s.config.FallbackUser))

	err = chain.Do(ctx, opPull, func(auth transport.AuthMethod) error {
		fetchErr := remote.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   []config.RefSpec{refspec},
			Auth:       auth,
		})
		if errors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fetchErr
	})
	if err != nil {
		s.logger.Error("failed to fetch", zap.String("url", url), zap.Error(err))
		return "", libraryError(opPull, fmt.Sprintf("failed to fetch from %s", url), err)
	}

	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	if err != nil {
		s.logger.Error("failed to resolve fetched branch", zap.Error(err))
		return "", &failure.Error{
			Category: failure.CategoryNotFound,
			Op:       opPull,
			Message:  fmt.Sprintf("branch %s not found on %s", branch, remoteName),
			Err:      err,
		}
	}

	updated, err := s.fastForward(repo, ref.Hash())
	if err != nil {
		return "", err
	}
	if !updated {
		return pullUpToDate, nil
	}

	s.logger.Info("repository fast-forwarded",
		zap.String("path", path),
		zap.String("remote", remoteName),
		zap.String("hash", ref.Hash().String()))

	return fmt.Sprintf("Pulled %s/%s (fast-forward to %s)", remoteName, branch, ref.Hash().String()[:8]), nil
}

// fastForward moves the current branch and working tree to target. It
// refuses to move when HEAD is not an ancestor of target.
func (s *Service) fastForward(repo *git.Repository, target plumbing.Hash) (bool, error) {
	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	case err != nil:
		return false, libraryError(opPull, "failed to resolve HEAD", err)
	case head.Hash() == target:
		return false, nil
	default:
		headCommit, commitErr := repo.CommitObject(head.Hash())
		if commitErr != nil {
			return false, libraryError(opPull, "failed to read HEAD commit", commitErr)
		}
		targetCommit, commitErr := repo.CommitObject(target)
		if commitErr != nil {
			return false, libraryError(opPull, "failed to read fetched commit", commitErr)
		}

		ok, ancestorErr := headCommit.IsAncestor(targetCommit)
		if ancestorErr != nil {
			return false, libraryError(opPull, "failed to compare histories", ancestorErr)
		}
		if !ok {
			s.logger.Warn("histories diverged",
				zap.String("head", head.Hash().String()),
				zap.String("target", target.String()))
			return false, &failure.Error{
				Category: failure.CategoryDivergence,
				Op:       opPull,
				Message:  "local and remote histories have diverged; fast-forward is not possible",
				Detail:   "Merge or rebase manually, then pull again.",
			}
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, libraryError(opPull, "failed to get worktree", err)
	}
	if err = wt.Reset(&git.ResetOptions{Commit: target, Mode: git.MergeReset}); err != nil {
		s.logger.Error("failed to update worktree", zap.Error(err))
		return false, libraryError(opPull, "failed to update worktree", err)
	}

	return true, nil
}

func (s *Service) pushLibrary(ctx context.Context, path string, defaults Defaults) (string, error) {
	repo, err := s.open(opPush, path)
	if err != nil {
		return "", err
	}

	branch, remote, err := s.tracking(opPush, repo, defaults)
	if err != nil {
		return "", err
	}
	remoteName := remote.Config().Name
	url := remoteURL(remote)

	ref := plumbing.NewBranchReferenceName(branch)
	refspec := config.RefSpec(fmt.Sprintf("%s:%s", ref, ref))
	chain := s.resolver.Chain(url, defaults.credentials(s.config.FallbackUser))

	err = chain.Do(ctx, opPush, func(auth transport.AuthMethod) error {
		pushErr := remote.PushContext(ctx, &git.PushOptions{
			RemoteName: remoteName,
			RefSpecs:   []config.RefSpec{refspec},
			Auth:       auth,
		})
		if errors.Is(pushErr, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return pushErr
	})
	if err != nil {
		s.logger.Error("failed to push", zap.String("url", url), zap.Error(err))
		return "", libraryError(opPush, fmt.Sprintf("failed to push to %s", url), err)
	}

	s.logger.Info("branch pushed", zap.String("path", path), zap.String("remote", remoteName))

	return fmt.Sprintf("Pushed to %s/%s", remoteName, branch), nil
}
