package badgerfx

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type EntityFactory[T Entity] func() T

// Repository stores entities of one kind under a common key prefix.
type Repository[T Entity] struct {
	prefix  string
	zero    T
	factory EntityFactory[T]
}

func NewRepository[T Entity](prefix string, factory EntityFactory[T]) *Repository[T] {
	var zero T
	return &Repository[T]{
		prefix:  prefix,
		zero:    zero,
		factory: factory,
	}
}

// Key returns the primary key of the entity with the given id.
func (r *Repository[T]) Key(id string) []byte {
	return []byte(r.prefix + id)
}

// List returns all entities in key order, or reverse key order when
// options.Reverse is set.
func (r *Repository[T]) List(txn *badger.Txn, options badger.IteratorOptions) ([]T, error) {
	validPrefix := []byte(r.prefix)
	seekPrefix := []byte(r.prefix)
	if options.Reverse {
		seekPrefix = append(seekPrefix, SeekEnd)
	}
	options.Prefix = validPrefix

	it := txn.NewIterator(options)
	defer it.Close()

	var entities []T
	for it.Seek(seekPrefix); it.ValidForPrefix(validPrefix); it.Next() {
		entity, err := r.decode(it.Item())
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, nil
}

// ListIDs returns the ids of all entities in key order without decoding
// their values.
func (r *Repository[T]) ListIDs(txn *badger.Txn) ([]string, error) {
	validPrefix := []byte(r.prefix)

	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	options.Prefix = validPrefix

	it := txn.NewIterator(options)
	defer it.Close()

	var ids []string
	for it.Seek(validPrefix); it.ValidForPrefix(validPrefix); it.Next() {
		ids = append(ids, string(it.Item().Key()[len(validPrefix):]))
	}

	return ids, nil
}

func (r *Repository[T]) Read(txn *badger.Txn, id string) (T, error) {
	item, err := txn.Get(r.Key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return r.zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return r.zero, fmt.Errorf("failed to get entity: %w", err)
	}

	return r.decode(item)
}

// ReadByIndex resolves a secondary index key to its entity.
func (r *Repository[T]) ReadByIndex(txn *badger.Txn, index string) (T, error) {
	item, err := txn.Get([]byte(index))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return r.zero, fmt.Errorf("%w: %s", ErrNotFound, index)
	}
	if err != nil {
		return r.zero, fmt.Errorf("failed to get entity: %w", err)
	}

	key, err := item.ValueCopy(nil)
	if err != nil {
		return r.zero, fmt.Errorf("failed to get entity key: %w", err)
	}

	item, err = txn.Get(key)
	if err != nil {
		return r.zero, fmt.Errorf("failed to get entity: %w", err)
	}

	return r.decode(item)
}

// ListByIndex returns the entities referenced by every index key that
// starts with indexPrefix, in index key order.
func (r *Repository[T]) ListByIndex(txn *badger.Txn, indexPrefix string) ([]T, error) {
	validPrefix := []byte(indexPrefix)

	options := badger.DefaultIteratorOptions
	options.Prefix = validPrefix

	it := txn.NewIterator(options)
	defer it.Close()

	var keys [][]byte
	for it.Seek(validPrefix); it.ValidForPrefix(validPrefix); it.Next() {
		key, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get entity key: %w", err)
		}
		keys = append(keys, key)
	}

	entities := make([]T, 0, len(keys))
	for _, key := range keys {
		item, err := txn.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to get entity: %w", err)
		}

		entity, err := r.decode(item)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// Exists reports whether key (primary or index) is present.
func (r *Repository[T]) Exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return true, nil
}

func (r *Repository[T]) Write(txn *badger.Txn, entity T) error {
	data, err := entity.MarshalStorage()
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	if indexErr := r.CreateIndexes(txn, entity); indexErr != nil {
		return indexErr
	}

	if setErr := txn.Set(r.Key(entity.StorageID()), data); setErr != nil {
		return fmt.Errorf("failed to update entity: %w", setErr)
	}

	return nil
}

func (r *Repository[T]) Delete(txn *badger.Txn, id string) error {
	entity, err := r.Read(txn, id)
	if err != nil {
		return err
	}

	if indexErr := r.DeleteIndexes(txn, entity); indexErr != nil {
		return indexErr
	}

	if delErr := txn.Delete(r.Key(id)); delErr != nil {
		return fmt.Errorf("failed to delete entity: %w", delErr)
	}

	return nil
}

func (r *Repository[T]) CreateIndexes(txn *badger.Txn, entity T) error {
	key := r.Key(entity.StorageID())
	for _, index := range entity.StorageIndexes() {
		if err := txn.Set([]byte(index), key); err != nil {
			return fmt.Errorf("failed to set entity index: %w", err)
		}
	}

	return nil
}

func (r *Repository[T]) DeleteIndexes(txn *badger.Txn, entity T) error {
	for _, index := range entity.StorageIndexes() {
		if err := txn.Delete([]byte(index)); err != nil {
			return fmt.Errorf("failed to delete entity index: %w", err)
		}
	}

	return nil
}

func (r *Repository[T]) decode(item *badger.Item) (T, error) {
	entity := r.factory()
	if err := item.Value(func(val []byte) error {
		return entity.UnmarshalStorage(val)
	}); err != nil {
		return r.zero, fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	return entity, nil
}
