// Package operations dispatches version control operations to the git or
// svn backend and records their outcome.
package operations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/internal/failure"
	"github.com/pmtools/vcsbridge/internal/git"
	"github.com/pmtools/vcsbridge/internal/history"
	"github.com/pmtools/vcsbridge/internal/preferences"
	"github.com/pmtools/vcsbridge/internal/projects"
	"github.com/pmtools/vcsbridge/internal/svn"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Service struct {
	git *git.Service
	svn *svn.Service

	prefs    *preferences.Service
	registry *projects.Service
	history  *history.Service
	metrics  *Metrics

	logger *zap.Logger
}

func NewService(
	gitSvc *git.Service,
	svnSvc *svn.Service,
	prefs *preferences.Service,
	registry *projects.Service,
	historySvc *history.Service,
	metrics *Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		git:      gitSvc,
		svn:      svnSvc,
		prefs:    prefs,
		registry: registry,
		history:  historySvc,
		metrics:  metrics,
		logger:   logger,
	}
}

// Pull brings the working copy up to date: git pull or svn update.
func (s *Service) Pull(ctx context.Context, target Target) (string, error) {
	target, err := s.resolve(ctx, opPull, target)
	if err != nil {
		return "", err
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return "", err
	}

	if target.Kind == projects.KindSvn {
		return s.run(ctx, opPull, history.TypeSvnUpdate, target, func(ctx context.Context) (string, error) {
			return s.svn.Update(ctx, target.Path, prefs.SvnCredentials())
		})
	}

	return s.run(ctx, opPull, history.TypeGitPull, target, func(ctx context.Context) (string, error) {
		return s.git.Pull(ctx, target.Path, prefs.GitDefaults())
	})
}

// Push publishes local commits. Only git working copies can be pushed.
func (s *Service) Push(ctx context.Context, target Target) (string, error) {
	target, err := s.resolve(ctx, opPush, target)
	if err != nil {
		return "", err
	}

	if target.Kind == projects.KindSvn {
		return "", failure.Validation(opPush, "svn has no push; commit sends changes to the repository")
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return "", err
	}

	return s.run(ctx, opPush, history.TypeGitPush, target, func(ctx context.Context) (string, error) {
		return s.git.Push(ctx, target.Path, prefs.GitDefaults())
	})
}

func (s *Service) Commit(ctx context.Context, target Target, message string) (string, error) {
	target, err := s.resolve(ctx, opCommit, target)
	if err != nil {
		return "", err
	}

	if target.Kind == projects.KindSvn {
		prefs, prefsErr := s.prefs.Get(ctx)
		if prefsErr != nil {
			return "", prefsErr
		}

		return s.run(ctx, opCommit, history.TypeSvnCommit, target, func(ctx context.Context) (string, error) {
			return s.svn.Commit(ctx, target.Path, message, prefs.SvnCredentials())
		})
	}

	return s.run(ctx, opCommit, history.TypeGitCommit, target, func(ctx context.Context) (string, error) {
		return s.git.Commit(ctx, target.Path, message)
	})
}

func (s *Service) Diff(ctx context.Context, target Target) (string, error) {
	target, err := s.resolve(ctx, opDiff, target)
	if err != nil {
		return "", err
	}

	if target.Kind == projects.KindSvn {
		return s.run(ctx, opDiff, history.TypeSvnDiff, target, func(ctx context.Context) (string, error) {
			return s.svn.Diff(ctx, target.Path)
		})
	}

	return s.run(ctx, opDiff, history.TypeGitDiff, target, func(ctx context.Context) (string, error) {
		return s.git.Diff(ctx, target.Path)
	})
}

// Clone creates a working copy of url at dest: git clone or svn checkout.
// An empty kind is detected from the URL.
func (s *Service) Clone(ctx context.Context, kind projects.Kind, url, dest string) (string, error) {
	if kind == projects.KindNone {
		kind = projects.DetectKind(url)
	}
	if kind == projects.KindNone {
		return "", failure.Validation(opClone, "cannot tell the version control system of %q; choose git or svn", url)
	}

	target := Target{Kind: kind, Path: dest, Name: filepath.Base(dest)}

	if kind == projects.KindSvn {
		prefs, err := s.prefs.Get(ctx)
		if err != nil {
			return "", err
		}

		return s.run(ctx, opClone, history.TypeSvnCheckout, target, func(ctx context.Context) (string, error) {
			return s.svn.Checkout(ctx, url, dest, prefs.SvnCredentials())
		})
	}

	return s.run(ctx, opClone, history.TypeGitClone, target, func(ctx context.Context) (string, error) {
		return s.git.Clone(ctx, url, dest)
	})
}

// Status reports the backend-specific status of the working copy.
func (s *Service) Status(ctx context.Context, target Target) (*Status, error) {
	target, err := s.resolve(ctx, opStatus, target)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	status := &Status{Kind: target.Kind}

	if target.Kind == projects.KindSvn {
		status.Svn, err = s.svn.Status(ctx, target.Path)
	} else {
		status.Git, err = s.git.Status(ctx, target.Path)
	}
	s.metrics.observe(string(target.Kind), opStatus, err, time.Since(start))

	if err != nil {
		return nil, err
	}

	return status, nil
}

// TestAuth checks that the repository behind the working copy can be
// reached with the available credentials and returns a readable report.
func (s *Service) TestAuth(ctx context.Context, target Target) (string, error) {
	target, err := s.resolve(ctx, opAuthTest, target)
	if err != nil {
		return "", err
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var report fmt.Stringer
	if target.Kind == projects.KindSvn {
		report, err = s.svn.TestAuth(ctx, target.Path, prefs.SvnCredentials())
	} else {
		report, err = s.git.TestAuth(ctx, target.Path, prefs.GitDefaults())
	}
	s.metrics.observe(string(target.Kind), opAuthTest, err, time.Since(start))

	if err != nil {
		return "", err
	}

	return report.String(), nil
}

// BatchPull pulls every repository of a project, one after another.
func (s *Service) BatchPull(ctx context.Context, projectID uuid.UUID) (*BatchReport, error) {
	return s.batch(ctx, projectID, history.TypeBatchPull, func(projects.Repository) bool { return true }, s.Pull)
}

// BatchPush pushes every git repository of a project, one after another.
func (s *Service) BatchPush(ctx context.Context, projectID uuid.UUID) (*BatchReport, error) {
	return s.batch(ctx, projectID, history.TypeBatchPush, func(r projects.Repository) bool {
		return r.Kind == projects.KindGit
	}, s.Push)
}

func (s *Service) batch(
	ctx context.Context,
	projectID uuid.UUID,
	typ history.Type,
	include func(projects.Repository) bool,
	op func(context.Context, Target) (string, error),
) (*BatchReport, error) {
	project, err := s.registry.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	repos, err := s.registry.ListRepositories(ctx, projectID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting batch operation",
		zap.String("type", string(typ)),
		zap.String("project", project.Name),
		zap.Int("repositories", len(repos)))

	start := time.Now()
	report := &BatchReport{ProjectID: projectID}

	for _, repo := range lo.Filter(repos, func(r projects.Repository, _ int) bool { return include(r) }) {
		outcome := Outcome{
			RepositoryID: repo.ID,
			Name:         repo.Name,
			Path:         repo.Path,
			Kind:         repo.Kind,
		}

		outcome.Message, outcome.Err = op(ctx, Target{Kind: repo.Kind, Path: repo.Path, Name: repo.Name})
		report.Outcomes = append(report.Outcomes, outcome)
	}

	status := history.StatusSuccess
	if report.Failed() > 0 {
		status = history.StatusError
	}
	s.record(ctx, history.EntryDraft{
		Type:           typ,
		Status:         status,
		RepositoryName: project.Name,
		Message:        fmt.Sprintf("%d succeeded, %d failed", report.Succeeded(), report.Failed()),
		Duration:       time.Since(start),
	})

	return report, nil
}

// resolve validates the target and fills its kind and name from the
// registry.
func (s *Service) resolve(ctx context.Context, op string, target Target) (Target, error) {
	if strings.TrimSpace(target.Path) == "" {
		return target, failure.Validation(op, "path is required")
	}
	if !target.Kind.Valid() {
		return target, failure.Validation(op, "unsupported vcs %q", target.Kind)
	}

	if target.Kind == projects.KindNone || target.Name == "" {
		repo, err := s.registry.FindRepository(ctx, target.Path)
		switch {
		case err == nil:
			if target.Kind == projects.KindNone {
				target.Kind = repo.Kind
			}
			if target.Name == "" {
				target.Name = repo.Name
			}
		case errors.Is(err, projects.ErrNotFound):
		default:
			return target, err
		}
	}

	if target.Kind == projects.KindNone {
		return target, failure.Validation(op, "version control system of %s is unknown; choose git or svn", target.Path)
	}
	if target.Name == "" {
		target.Name = filepath.Base(target.Path)
	}

	return target, nil
}

// run executes fn and records its outcome in the metrics and the history.
func (s *Service) run(
	ctx context.Context,
	op string,
	typ history.Type,
	target Target,
	fn func(context.Context) (string, error),
) (string, error) {
	s.logger.Info("running operation",
		zap.String("operation", op),
		zap.String("vcs", string(target.Kind)),
		zap.String("path", target.Path))

	start := time.Now()
	out, err := fn(ctx)
	elapsed := time.Since(start)

	s.metrics.observe(string(target.Kind), op, err, elapsed)

	entry := history.EntryDraft{
		Type:           typ,
		Status:         history.StatusSuccess,
		RepositoryName: target.Name,
		RepositoryPath: target.Path,
		Message:        firstLine(out),
		Duration:       elapsed,
	}
	if err != nil {
		entry.Status = history.StatusError
		entry.Message = firstLine(err.Error())

		s.logger.Error("operation failed",
			zap.String("operation", op),
			zap.String("path", target.Path),
			zap.String("category", string(failure.CategoryOf(err))),
			zap.Error(err))
	}
	s.record(ctx, entry)

	return out, err
}

func (s *Service) record(ctx context.Context, entry history.EntryDraft) {
	if _, err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record operation history", zap.Error(err))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	line, _, _ := strings.Cut(s, "\n")
	return line
}
