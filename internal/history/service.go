package history

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Service keeps a bounded log of operation outcomes.
type Service struct {
	config  Config
	entries *Repository

	logger *zap.Logger
}

func NewService(config Config, entries *Repository, logger *zap.Logger) *Service {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultMaxEntries
	}

	return &Service{
		config:  config,
		entries: entries,
		logger:  logger,
	}
}

// Record appends an entry to the log.
func (s *Service) Record(ctx context.Context, draft EntryDraft) (*Entry, error) {
	if draft.Status == "" {
		draft.Status = StatusPending
	}

	model := newEntryModel(draft)
	if err := s.entries.Append(ctx, model, s.config.MaxEntries); err != nil {
		s.logger.Error("failed to record operation", zap.String("type", string(draft.Type)), zap.Error(err))
		return nil, err
	}

	s.logger.Debug("operation recorded",
		zap.Stringer("id", model.ID),
		zap.String("type", string(draft.Type)),
		zap.String("status", string(draft.Status)))

	entry := newEntry(model)
	return &entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	entries, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// ByRepository returns the entries recorded for the repository at path,
// newest first.
func (s *Service) ByRepository(ctx context.Context, path string) ([]Entry, error) {
	entries, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return e.RepositoryPath != "" && filepath.Clean(e.RepositoryPath) == path
	}), nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		s.logger.Error("failed to remove history entry", zap.Stringer("id", id), zap.Error(err))
		return err
	}

	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	removed, err := s.entries.Clear(ctx)
	if err != nil {
		s.logger.Error("failed to clear history", zap.Error(err))
		return err
	}

	s.logger.Info("history cleared", zap.Int("removed", removed))

	return nil
}

func (s *Service) list(ctx context.Context) ([]Entry, error) {
	models, err := s.entries.List(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(models, func(m *entryModel, _ int) Entry {
		return newEntry(m)
	}), nil
}
