package storage

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides common fields for all storage entities.
type BaseEntity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBaseEntity returns an entity with a time-ordered id, so that keys
// built from it sort by creation time.
func NewBaseEntity() BaseEntity {
	now := time.Now()

	return BaseEntity{
		ID:        uuid.Must(uuid.NewV7()),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a modification.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// StorageID implements badgerfx.Entity.
func (e *BaseEntity) StorageID() string {
	return e.ID.String()
}
