package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pmtools/vcsbridge/pkg/badgerfx"
)

const (
	prefix = "history:"

	prefixByID = prefix + "id:"
)

type Repository struct {
	db      *badger.DB
	entries *badgerfx.Repository[*entryModel]
}

func NewRepository(db *badger.DB) *Repository {
	return &Repository{
		db: db,
		entries: badgerfx.NewRepository(prefixByID, func() *entryModel {
			return new(entryModel)
		}),
	}
}

// Append stores model and evicts the oldest entries beyond limit in the
// same transaction.
func (r *Repository) Append(_ context.Context, model *entryModel, limit int) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := r.entries.Write(txn, model); err != nil {
			return err
		}

		ids, err := r.entries.ListIDs(txn)
		if err != nil {
			return err
		}

		for len(ids) > limit {
			if delErr := r.entries.Delete(txn, ids[0]); delErr != nil {
				return delErr
			}
			ids = ids[1:]
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// List returns all entries, newest first.
func (r *Repository) List(_ context.Context) ([]*entryModel, error) {
	var entries []*entryModel

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true

		found, err := r.entries.List(txn, options)
		if err == nil {
			entries = found
		}

		return err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	return entries, nil
}

func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return r.entries.Delete(txn, id.String())
	})

	if errors.Is(err, badgerfx.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	return nil
}

// Clear removes every entry and returns how many were removed.
func (r *Repository) Clear(_ context.Context) (int, error) {
	removed := 0

	err := r.db.Update(func(txn *badger.Txn) error {
		ids, err := r.entries.ListIDs(txn)
		if err != nil {
			return err
		}

		for _, id := range ids {
			if delErr := r.entries.Delete(txn, id); delErr != nil {
				return delErr
			}
		}
		removed = len(ids)

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	return removed, nil
}
