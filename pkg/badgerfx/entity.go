package badgerfx

import "errors"

var ErrNotFound = errors.New("entity not found")

// Entity is a value stored under a repository prefix.
type Entity interface {
	// StorageID is the key suffix of the entity within its repository.
	StorageID() string
	// StorageIndexes are secondary keys that point at the entity key.
	StorageIndexes() []string

	MarshalStorage() ([]byte, error)
	UnmarshalStorage(data []byte) error
}
